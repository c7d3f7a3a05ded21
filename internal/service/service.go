// Package service implements business logic, validation, and orchestration
// between HTTP/WebSocket handlers and the storage layer.
package service

import (
	"context"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/domain"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

// EventStore persists events. Update must hold the event's write lock for
// the duration of apply, and the event passed to apply carries the current
// derived player count.
type EventStore interface {
	Create(ctx context.Context, ev *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, id string, apply func(ev *model.Event) error) (*model.Event, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	ListByHost(ctx context.Context, hostID string) ([]model.Event, error)
}

// BookingStore persists participant records. Request and Transition run
// the domain checks atomically with their writes.
type BookingStore interface {
	Request(ctx context.Context, eventID, userID, note string, policy domain.RerequestPolicy) (*model.Booking, error)
	Transition(ctx context.Context, bookingID, actorID string, to model.BookingStatus) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	HasBooking(ctx context.Context, eventID, userID string) (bool, error)
}

type MessageStore interface {
	Append(ctx context.Context, m *model.Message) error
	List(ctx context.Context, q model.MessageQuery) ([]model.Message, error)
	MarkAllRead(ctx context.Context, eventID, userID string) (int64, error)
	CountUnread(ctx context.Context, eventID, userID string) (int, error)
	HasSent(ctx context.Context, eventID, userID string) (bool, error)
}

type UserStore interface {
	Upsert(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Notifier pushes a persisted message to a live recipient, if there is one.
// It must not block and reports whether a connection took the message.
type Notifier interface {
	NotifyMessage(userID string, m *model.Message) bool
}
