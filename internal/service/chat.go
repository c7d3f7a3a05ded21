package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/logging"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

const (
	maxMessageLength    = 2000
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// ChatService persists event messages and hands them to the live relay.
// Persistence always comes first; delivery is best effort.
type ChatService struct {
	events   EventStore
	bookings BookingStore
	messages MessageStore
	notifier Notifier
}

func NewChatService(events EventStore, bookings BookingStore, messages MessageStore, notifier Notifier) *ChatService {
	return &ChatService{events: events, bookings: bookings, messages: messages, notifier: notifier}
}

// Send resolves the recipient, stores the message with the sender already
// in its read set, and pushes it to the recipient if they are connected.
// The returned message is the sender's acknowledgement; it reflects
// persistence, not delivery.
//
// Conversations are threads between the host and one other user. A
// participant always writes to the host. The host must name the receiver.
func (s *ChatService) Send(ctx context.Context, senderID, eventID string, req model.SendMessageRequest) (*model.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, apperr.Validation("content cannot exceed %d characters", maxMessageLength)
	}
	kind := req.Kind
	if kind == "" {
		kind = model.MessageText
	}
	if !kind.Valid() {
		return nil, apperr.Validation("unknown message kind %q", kind)
	}

	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	receiverID, err := s.resolveReceiver(ctx, ev, senderID, strings.TrimSpace(req.ReceiverID))
	if err != nil {
		return nil, err
	}

	m := &model.Message{
		EventID:    ev.ID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Kind:       kind,
		ReadBy:     []string{senderID},
	}
	if err := s.messages.Append(ctx, m); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	delivered := s.notifier.NotifyMessage(receiverID, m)
	logging.FromCtx(ctx).DebugContext(ctx, "Chat message stored",
		slog.String("event_id", ev.ID),
		slog.String("message_id", m.ID),
		slog.Bool("pushed", delivered),
	)
	return m, nil
}

func (s *ChatService) resolveReceiver(ctx context.Context, ev *model.Event, senderID, requested string) (string, error) {
	if senderID != ev.HostID {
		if ev.Status == model.EventDraft {
			return "", apperr.NotFound("event not found")
		}
		if requested != "" && requested != ev.HostID {
			return "", apperr.Validation("participants can only message the host")
		}
		return ev.HostID, nil
	}

	if requested == "" {
		return "", apperr.Validation("receiverId is required when the host sends a message")
	}
	if requested == ev.HostID {
		return "", apperr.Validation("the host cannot message themselves")
	}
	ok, err := s.isConversationPartner(ctx, ev.ID, requested)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.Forbidden("receiver is not part of this event")
	}
	return requested, nil
}

// isConversationPartner reports whether userID has a booking on the event
// or has written to the host about it.
func (s *ChatService) isConversationPartner(ctx context.Context, eventID, userID string) (bool, error) {
	ok, err := s.bookings.HasBooking(ctx, eventID, userID)
	if err != nil || ok {
		return ok, err
	}
	return s.messages.HasSent(ctx, eventID, userID)
}

// History returns the caller's conversations in an event, oldest first.
// with narrows the result to the thread with one other user.
func (s *ChatService) History(ctx context.Context, userID, eventID, with string, limit int, before *time.Time) ([]model.Message, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status == model.EventDraft && ev.HostID != userID {
		return nil, apperr.NotFound("event not found")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.messages.List(ctx, model.MessageQuery{
		EventID: ev.ID,
		UserID:  userID,
		With:    strings.TrimSpace(with),
		Before:  before,
		Limit:   limit,
	})
}

// MarkAllRead adds userID to the read set of every message in the event
// they did not author and returns how many messages changed.
func (s *ChatService) MarkAllRead(ctx context.Context, userID, eventID string) (int64, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return 0, err
	}
	return s.messages.MarkAllRead(ctx, eventID, userID)
}

func (s *ChatService) UnreadCount(ctx context.Context, userID, eventID string) (int, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return 0, err
	}
	return s.messages.CountUnread(ctx, eventID, userID)
}
