package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/domain"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

func seedEvent(t *testing.T, s *Store, maxPlayers int) *model.Event {
	t.Helper()
	ev := &model.Event{
		HostID:     "host",
		Title:      "Pickup volleyball",
		Sport:      "volleyball",
		Location:   "Beach court 3",
		StartsAt:   time.Now().Add(24 * time.Hour),
		EndsAt:     time.Now().Add(26 * time.Hour),
		MaxPlayers: maxPlayers,
		Status:     model.EventPublished,
	}
	if err := s.Events.Create(context.Background(), ev); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}

func TestRequest_ConcurrentDuplicatesKeepOneRecord(t *testing.T) {
	s := New()
	ev := seedEvent(t, s, 10)

	const attempts = 25
	var created, duplicate int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Bookings.Request(context.Background(), ev.ID, "alice", "", domain.RerequestAfterCancel)
			switch {
			case err == nil:
				atomic.AddInt32(&created, 1)
			case errors.Is(err, apperr.ErrDuplicateRequest):
				atomic.AddInt32(&duplicate, 1)
			}
		}()
	}
	wg.Wait()

	if created != 1 || duplicate != attempts-1 {
		t.Fatalf("expected 1 created and %d duplicates, got %d / %d", attempts-1, created, duplicate)
	}
	list, _ := s.Bookings.ListByEvent(context.Background(), ev.ID)
	if len(list) != 1 {
		t.Fatalf("expected one stored record, got %d", len(list))
	}
}

func TestDelete_CascadesToBookingsAndMessages(t *testing.T) {
	ctx := context.Background()
	s := New()
	ev := seedEvent(t, s, 10)
	other := seedEvent(t, s, 10)

	if _, err := s.Bookings.Request(ctx, ev.ID, "alice", "", domain.RerequestAfterCancel); err != nil {
		t.Fatalf("request: %v", err)
	}
	for _, id := range []string{ev.ID, other.ID} {
		if err := s.Messages.Append(ctx, &model.Message{EventID: id, SenderID: "alice", ReceiverID: "host", Content: "hi", Kind: model.MessageText}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := s.Events.Delete(ctx, ev.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := s.Bookings.HasBooking(ctx, ev.ID, "alice"); ok {
		t.Fatal("expected bookings to be removed with the event")
	}
	if sent, _ := s.Messages.HasSent(ctx, ev.ID, "alice"); sent {
		t.Fatal("expected messages to be removed with the event")
	}
	if sent, _ := s.Messages.HasSent(ctx, other.ID, "alice"); !sent {
		t.Fatal("expected messages of other events to survive")
	}
	if err := s.Events.Delete(ctx, ev.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMessages_ListKeepsNewestWithinLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	ev := seedEvent(t, s, 10)

	for _, content := range []string{"one", "two", "three"} {
		if err := s.Messages.Append(ctx, &model.Message{EventID: ev.ID, SenderID: "alice", ReceiverID: "host", Content: content, Kind: model.MessageText}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Messages.List(ctx, model.MessageQuery{EventID: ev.ID, UserID: "host", Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Content != "two" || got[1].Content != "three" {
		t.Fatalf("expected the two newest oldest-first, got %+v", got)
	}

	if err := s.Messages.Append(ctx, &model.Message{EventID: "missing", SenderID: "a", ReceiverID: "b", Content: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown event, got %v", err)
	}
}

func TestUsers_UpsertKeepsVerificationForUnchangedContact(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Users.Upsert(ctx, &model.User{ID: "u1", DisplayName: "U", Email: "u@example.com"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s.Users.s.users["u1"].EmailVerified = true

	kept, _ := s.Users.Upsert(ctx, &model.User{ID: "u1", DisplayName: "U2", Email: "u@example.com"})
	if !kept.EmailVerified {
		t.Fatal("expected verification to survive an unchanged email")
	}
	changed, _ := s.Users.Upsert(ctx, &model.User{ID: "u1", DisplayName: "U2", Email: "new@example.com"})
	if changed.EmailVerified {
		t.Fatal("expected verification to reset when the email changes")
	}
}

func TestEvents_StoredCopiesDoNotShareState(t *testing.T) {
	ctx := context.Background()
	s := New()

	lat, lng := 40.7128, -74.006
	ev := &model.Event{
		HostID:      "host",
		Title:       "Pickup soccer",
		Sport:       "soccer",
		StartsAt:    time.Now().Add(24 * time.Hour),
		EndsAt:      time.Now().Add(26 * time.Hour),
		Latitude:    &lat,
		Longitude:   &lng,
		MaxPlayers:  10,
		SportConfig: map[string]any{"format": "5v5"},
		Status:      model.EventPublished,
	}
	if err := s.Events.Create(ctx, ev); err != nil {
		t.Fatalf("create: %v", err)
	}
	ev.SportConfig["format"] = "11v11"
	*ev.Latitude = 0

	first, err := s.Events.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first.SportConfig["format"] != "5v5" || *first.Latitude != 40.7128 {
		t.Fatalf("expected stored event to ignore caller mutations, got %v / %v", first.SportConfig, *first.Latitude)
	}

	first.SportConfig["format"] = "7v7"
	*first.Longitude = 0
	second, _ := s.Events.GetByID(ctx, ev.ID)
	if second.SportConfig["format"] != "5v5" || *second.Longitude != -74.006 {
		t.Fatalf("expected snapshots to be independent, got %v / %v", second.SportConfig, *second.Longitude)
	}

	updated, err := s.Events.Update(ctx, ev.ID, func(e *model.Event) error {
		e.SportConfig["format"] = "6v6"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	updated.SportConfig["format"] = "3v3"
	third, _ := s.Events.GetByID(ctx, ev.ID)
	if third.SportConfig["format"] != "6v6" {
		t.Fatalf("expected the update to persist on its own copy, got %v", third.SportConfig)
	}
}
