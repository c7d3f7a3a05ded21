package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/domain"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

func TestChat_OfflineRecipientIsPersistedWithoutPush(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.RerequestAfterCancel)
	ev := f.createEvent(t, "host", 6)

	m, err := f.chat.Send(ctx, "alice", ev.ID, model.SendMessageRequest{Content: "  Is there parking?  "})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if m.ReceiverID != "host" || m.Content != "Is there parking?" || m.Kind != model.MessageText {
		t.Fatalf("unexpected message %+v", m)
	}
	if !m.ReadByUser("alice") || m.ReadByUser("host") {
		t.Fatalf("expected read set to hold only the sender, got %v", m.ReadBy)
	}
	if len(f.notifier.pushes) != 0 {
		t.Fatalf("expected no push to an offline host, got %d", len(f.notifier.pushes))
	}

	history, err := f.chat.History(ctx, "host", ev.ID, "", 0, nil)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != m.ID {
		t.Fatalf("expected the stored message in host history, got %+v", history)
	}
}

func TestChat_OnlineRecipientReceivesPush(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.RerequestAfterCancel)
	ev := f.createEvent(t, "host", 6)
	f.notifier.online["host"] = true

	m, err := f.chat.Send(ctx, "alice", ev.ID, model.SendMessageRequest{Content: "On my way"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(f.notifier.pushes) != 1 {
		t.Fatalf("expected one push, got %d", len(f.notifier.pushes))
	}
	got := f.notifier.pushes[0]
	if got.userID != "host" || got.message.ID != m.ID {
		t.Fatalf("unexpected push %+v", got)
	}
}

func TestChat_HostMustNameConversationPartner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.RerequestAfterCancel)
	ev := f.createEvent(t, "host", 6)

	_, err := f.chat.Send(ctx, "host", ev.ID, model.SendMessageRequest{Content: "hello"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error without receiver, got %v", err)
	}
	_, err = f.chat.Send(ctx, "host", ev.ID, model.SendMessageRequest{Content: "hello", ReceiverID: "stranger"})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for unrelated receiver, got %v", err)
	}

	f.join(t, ev.ID, "bob")
	m, err := f.chat.Send(ctx, "host", ev.ID, model.SendMessageRequest{Content: "welcome", ReceiverID: "bob"})
	if err != nil {
		t.Fatalf("send to requester failed: %v", err)
	}
	if m.ReceiverID != "bob" {
		t.Fatalf("expected bob as receiver, got %s", m.ReceiverID)
	}

	if _, err := f.chat.Send(ctx, "carol", ev.ID, model.SendMessageRequest{Content: "question"}); err != nil {
		t.Fatalf("send from carol failed: %v", err)
	}
	if _, err := f.chat.Send(ctx, "host", ev.ID, model.SendMessageRequest{Content: "answer", ReceiverID: "carol"}); err != nil {
		t.Fatalf("expected host to reply to a prior sender, got %v", err)
	}
}

func TestChat_ParticipantCannotAddressOthers(t *testing.T) {
	f := newFixture(t, domain.RerequestAfterCancel)
	ev := f.createEvent(t, "host", 6)

	_, err := f.chat.Send(context.Background(), "alice", ev.ID, model.SendMessageRequest{Content: "hi", ReceiverID: "bob"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChat_ContentValidation(t *testing.T) {
	f := newFixture(t, domain.RerequestAfterCancel)
	ev := f.createEvent(t, "host", 6)

	cases := map[string]model.SendMessageRequest{
		"empty":        {Content: "   "},
		"too long":     {Content: strings.Repeat("x", 2001)},
		"unknown kind": {Content: "hi", Kind: "video"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.chat.Send(context.Background(), "alice", ev.ID, req); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := f.chat.Send(context.Background(), "alice", "missing", model.SendMessageRequest{Content: "hi"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown event, got %v", err)
	}
}

func TestChat_MarkAllReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.RerequestAfterCancel)
	ev := f.createEvent(t, "host", 6)

	for _, sender := range []string{"alice", "alice", "bob"} {
		if _, err := f.chat.Send(ctx, sender, ev.ID, model.SendMessageRequest{Content: "hi"}); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}
	if _, err := f.chat.Send(ctx, "host", ev.ID, model.SendMessageRequest{Content: "hey", ReceiverID: "alice"}); err != nil {
		t.Fatalf("host send failed: %v", err)
	}

	unread, err := f.chat.UnreadCount(ctx, "host", ev.ID)
	if err != nil || unread != 3 {
		t.Fatalf("expected 3 unread for host, got %d (%v)", unread, err)
	}

	n, err := f.chat.MarkAllRead(ctx, "host", ev.ID)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 messages marked, got %d (%v)", n, err)
	}
	n, err = f.chat.MarkAllRead(ctx, "host", ev.ID)
	if err != nil || n != 0 {
		t.Fatalf("expected second mark to change nothing, got %d (%v)", n, err)
	}

	if unread, _ := f.chat.UnreadCount(ctx, "host", ev.ID); unread != 0 {
		t.Fatalf("expected no unread after marking, got %d", unread)
	}
	if unread, _ := f.chat.UnreadCount(ctx, "alice", ev.ID); unread != 1 {
		t.Fatalf("expected alice to keep 1 unread, got %d", unread)
	}
}

func TestChat_HistoryThreadFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.RerequestAfterCancel)
	ev := f.createEvent(t, "host", 6)

	for _, sender := range []string{"alice", "bob", "alice"} {
		if _, err := f.chat.Send(ctx, sender, ev.ID, model.SendMessageRequest{Content: "from " + sender}); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}

	withAlice, err := f.chat.History(ctx, "host", ev.ID, "alice", 0, nil)
	if err != nil || len(withAlice) != 2 {
		t.Fatalf("expected 2 messages with alice, got %d (%v)", len(withAlice), err)
	}
	bobs, err := f.chat.History(ctx, "bob", ev.ID, "", 0, nil)
	if err != nil || len(bobs) != 1 {
		t.Fatalf("expected bob to see only his thread, got %d (%v)", len(bobs), err)
	}
	latest, err := f.chat.History(ctx, "host", ev.ID, "", 1, nil)
	if err != nil || len(latest) != 1 || latest[0].SenderID != "alice" {
		t.Fatalf("expected newest message only, got %+v (%v)", latest, err)
	}
}
