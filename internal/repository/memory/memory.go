// Package memory is an in-process implementation of the storage
// interfaces. A single mutex plays the role of the database row locks, so
// capacity-gated transitions stay atomic. Used for STORE=memory and tests.
package memory

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/domain"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

type state struct {
	mu       sync.Mutex
	events   map[string]*model.Event
	bookings map[string]*model.Booking
	messages []*model.Message
	users    map[string]*model.User
}

// Store bundles the per-entity stores over one shared state.
type Store struct {
	Events   *EventStore
	Bookings *BookingStore
	Messages *MessageStore
	Users    *UserStore
}

func New() *Store {
	s := &state{
		events:   make(map[string]*model.Event),
		bookings: make(map[string]*model.Booking),
		users:    make(map[string]*model.User),
	}
	return &Store{
		Events:   &EventStore{s},
		Bookings: &BookingStore{s},
		Messages: &MessageStore{s},
		Users:    &UserStore{s},
	}
}

func now() time.Time {
	return time.Now().UTC()
}

// accepted counts accepted bookings for eventID. Caller holds mu.
func (s *state) accepted(eventID string) int {
	n := 0
	for _, b := range s.bookings {
		if b.EventID == eventID && b.Status == model.BookingAccepted {
			n++
		}
	}
	return n
}

// snapshot copies an event with its derived player count. Caller holds mu.
func (s *state) snapshot(ev *model.Event) model.Event {
	out := cloneEvent(*ev)
	out.PlayerCount = domain.PlayerCount(s.accepted(ev.ID))
	return out
}

// cloneEvent copies ev without sharing its coordinates or sport config.
func cloneEvent(ev model.Event) model.Event {
	ev.SportConfig = maps.Clone(ev.SportConfig)
	ev.Latitude = clonePtr(ev.Latitude)
	ev.Longitude = clonePtr(ev.Longitude)
	ev.DistanceKm = clonePtr(ev.DistanceKm)
	return ev
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ─── Events ──────────────────────────────────────────────────────────────────

type EventStore struct{ s *state }

func (r *EventStore) Create(_ context.Context, ev *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev.ID = uuid.New().String()
	ev.CreatedAt = now()
	ev.UpdatedAt = ev.CreatedAt
	ev.PlayerCount = domain.PlayerCount(0)
	stored := cloneEvent(*ev)
	r.s.events[ev.ID] = &stored
	return nil
}

func (r *EventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev, ok := r.s.events[id]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}
	out := r.s.snapshot(ev)
	return &out, nil
}

func (r *EventStore) Update(_ context.Context, id string, apply func(ev *model.Event) error) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.events[id]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}
	ev := r.s.snapshot(stored)
	if err := apply(&ev); err != nil {
		return nil, err
	}
	ev.ID, ev.HostID, ev.CreatedAt = stored.ID, stored.HostID, stored.CreatedAt
	ev.UpdatedAt = now()
	*stored = cloneEvent(ev)
	return &ev, nil
}

func (r *EventStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return apperr.NotFound("event not found")
	}
	delete(r.s.events, id)
	for bid, b := range r.s.bookings {
		if b.EventID == id {
			delete(r.s.bookings, bid)
		}
	}
	kept := r.s.messages[:0]
	for _, m := range r.s.messages {
		if m.EventID != id {
			kept = append(kept, m)
		}
	}
	r.s.messages = kept
	return nil
}

func (r *EventStore) Search(_ context.Context, f model.EventFilter) ([]model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.Event
	for _, ev := range r.s.events {
		if ev.Status != model.EventPublished && ev.Status != model.EventFull {
			continue
		}
		if !ev.StartsAt.After(f.After) {
			continue
		}
		if f.Sport != "" && ev.Sport != f.Sport {
			continue
		}
		if f.SkillLevel != "" && ev.SkillLevel != f.SkillLevel && ev.SkillLevel != model.SkillAny {
			continue
		}
		if f.Gender != "" && ev.GenderPolicy != f.Gender {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(ev.Location), strings.ToLower(f.Location)) {
			continue
		}
		if f.MaxPrice != nil && ev.PriceCents > *f.MaxPrice {
			continue
		}
		if f.Date != nil {
			day := f.Date.UTC().Truncate(24 * time.Hour)
			if ev.StartsAt.Before(day) || !ev.StartsAt.Before(day.Add(24*time.Hour)) {
				continue
			}
		}
		out = append(out, r.s.snapshot(ev))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *EventStore) ListByHost(_ context.Context, hostID string) ([]model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.Event
	for _, ev := range r.s.events {
		if ev.HostID == hostID {
			out = append(out, r.s.snapshot(ev))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

// ─── Bookings ────────────────────────────────────────────────────────────────

type BookingStore struct{ s *state }

func (r *BookingStore) Request(_ context.Context, eventID, userID, note string, policy domain.RerequestPolicy) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev, ok := r.s.events[eventID]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}

	var history []model.Booking
	for _, b := range r.s.bookings {
		if b.EventID == eventID && b.UserID == userID {
			history = append(history, *b)
		}
	}
	if err := domain.CheckJoinRequest(ev, userID, r.s.accepted(eventID), history, policy); err != nil {
		return nil, err
	}

	b := &model.Booking{
		ID:        uuid.New().String(),
		EventID:   eventID,
		UserID:    userID,
		Status:    model.BookingRequested,
		Message:   note,
		CreatedAt: now(),
	}
	b.UpdatedAt = b.CreatedAt
	r.s.bookings[b.ID] = b
	out := *b
	return &out, nil
}

func (r *BookingStore) Transition(_ context.Context, bookingID, actorID string, to model.BookingStatus) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[bookingID]
	if !ok {
		return nil, apperr.NotFound("booking not found")
	}
	ev, ok := r.s.events[b.EventID]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}

	accepted := r.s.accepted(ev.ID)
	delta, err := domain.ApplyDecision(ev, b, actorID, to, accepted)
	if err != nil {
		return nil, err
	}

	b.Status = to
	b.UpdatedAt = now()
	if next := domain.CapacityStatus(ev.Status, domain.PlayerCount(accepted+delta), ev.MaxPlayers); next != ev.Status {
		ev.Status = next
		ev.UpdatedAt = b.UpdatedAt
	}
	out := *b
	return &out, nil
}

func (r *BookingStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, apperr.NotFound("booking not found")
	}
	out := *b
	return &out, nil
}

func (r *BookingStore) ListByEvent(_ context.Context, eventID string) ([]model.Booking, error) {
	return r.list(func(b *model.Booking) bool { return b.EventID == eventID }), nil
}

func (r *BookingStore) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	return r.list(func(b *model.Booking) bool { return b.UserID == userID }), nil
}

func (r *BookingStore) HasBooking(_ context.Context, eventID, userID string) (bool, error) {
	return len(r.list(func(b *model.Booking) bool { return b.EventID == eventID && b.UserID == userID })) > 0, nil
}

func (r *BookingStore) list(keep func(*model.Booking) bool) []model.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.Booking
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ─── Messages ────────────────────────────────────────────────────────────────

type MessageStore struct{ s *state }

func (r *MessageStore) Append(_ context.Context, m *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[m.EventID]; !ok {
		return apperr.NotFound("event not found")
	}
	m.ID = uuid.New().String()
	m.CreatedAt = now()
	stored := *m
	stored.ReadBy = append([]string(nil), m.ReadBy...)
	r.s.messages = append(r.s.messages, &stored)
	return nil
}

// List returns the caller's side of the conversation, oldest first,
// capped to the newest q.Limit messages.
func (r *MessageStore) List(_ context.Context, q model.MessageQuery) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.Message
	for _, m := range r.s.messages {
		if m.EventID != q.EventID {
			continue
		}
		if m.SenderID != q.UserID && m.ReceiverID != q.UserID {
			continue
		}
		if q.With != "" && m.SenderID != q.With && m.ReceiverID != q.With {
			continue
		}
		if q.Before != nil && !m.CreatedAt.Before(*q.Before) {
			continue
		}
		c := *m
		c.ReadBy = append([]string(nil), m.ReadBy...)
		out = append(out, c)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

func (r *MessageStore) MarkAllRead(_ context.Context, eventID, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, m := range r.s.messages {
		if m.EventID != eventID || m.SenderID == userID || m.ReadByUser(userID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, userID)
		n++
	}
	return n, nil
}

func (r *MessageStore) CountUnread(_ context.Context, eventID, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, m := range r.s.messages {
		if m.EventID == eventID && m.ReceiverID == userID && !m.ReadByUser(userID) {
			n++
		}
	}
	return n, nil
}

func (r *MessageStore) HasSent(_ context.Context, eventID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range r.s.messages {
		if m.EventID == eventID && m.SenderID == userID {
			return true, nil
		}
	}
	return false, nil
}

// ─── Users ───────────────────────────────────────────────────────────────────

type UserStore struct{ s *state }

func (r *UserStore) Upsert(_ context.Context, u *model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ts := now()
	if existing, ok := r.s.users[u.ID]; ok {
		u.CreatedAt = existing.CreatedAt
		u.EmailVerified = existing.EmailVerified && existing.Email == u.Email
		u.PhoneVerified = existing.PhoneVerified && existing.Phone == u.Phone
	} else {
		u.CreatedAt = ts
	}
	u.UpdatedAt = ts
	stored := *u
	r.s.users[u.ID] = &stored
	out := stored
	return &out, nil
}

func (r *UserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	out := *u
	return &out, nil
}
