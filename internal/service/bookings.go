package service

import (
	"context"
	"strings"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/domain"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

const maxBookingNote = 500

// BookingService drives the participant state machine.
type BookingService struct {
	events   EventStore
	bookings BookingStore
	policy   domain.RerequestPolicy
}

func NewBookingService(events EventStore, bookings BookingStore, policy domain.RerequestPolicy) *BookingService {
	return &BookingService{events: events, bookings: bookings, policy: policy}
}

// Request files a join request for userID.
func (s *BookingService) Request(ctx context.Context, userID string, req model.BookingRequest) (*model.Booking, error) {
	req.EventID = strings.TrimSpace(req.EventID)
	req.Message = strings.TrimSpace(req.Message)
	if req.EventID == "" {
		return nil, apperr.Validation("eventId is required")
	}
	if len(req.Message) > maxBookingNote {
		return nil, apperr.Validation("message cannot exceed %d characters", maxBookingNote)
	}
	return s.bookings.Request(ctx, req.EventID, userID, req.Message, s.policy)
}

// Decide applies the host's accept or reject decision.
func (s *BookingService) Decide(ctx context.Context, actorID, bookingID string, to model.BookingStatus) (*model.Booking, error) {
	if to != model.BookingAccepted && to != model.BookingRejected {
		return nil, apperr.Validation("status must be accepted or rejected")
	}
	return s.bookings.Transition(ctx, bookingID, actorID, to)
}

// Cancel withdraws the caller's accepted booking.
func (s *BookingService) Cancel(ctx context.Context, actorID, bookingID string) (*model.Booking, error) {
	return s.bookings.Transition(ctx, bookingID, actorID, model.BookingCancelled)
}

// Get returns a booking visible to its owner and to the event's host.
func (s *BookingService) Get(ctx context.Context, viewerID, bookingID string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID == viewerID {
		return b, nil
	}
	ev, err := s.events.GetByID(ctx, b.EventID)
	if err != nil {
		return nil, err
	}
	if ev.HostID != viewerID {
		return nil, apperr.Forbidden("you cannot view this booking")
	}
	return b, nil
}

// ListForEvent returns every record to the host and accepted ones (plus
// the viewer's own) to everyone else.
func (s *BookingService) ListForEvent(ctx context.Context, viewerID, eventID string) ([]model.Booking, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status == model.EventDraft && ev.HostID != viewerID {
		return nil, apperr.NotFound("event not found")
	}

	all, err := s.bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.HostID == viewerID {
		return all, nil
	}

	visible := make([]model.Booking, 0, len(all))
	for _, b := range all {
		if b.Status == model.BookingAccepted || b.UserID == viewerID {
			visible = append(visible, b)
		}
	}
	return visible, nil
}

func (s *BookingService) ListMine(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}
