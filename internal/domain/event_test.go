package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

func TestCapacityStatus(t *testing.T) {
	cases := []struct {
		current model.EventStatus
		players int
		max     int
		want    model.EventStatus
	}{
		{model.EventPublished, 3, 4, model.EventPublished},
		{model.EventPublished, 4, 4, model.EventFull},
		{model.EventFull, 3, 4, model.EventPublished},
		{model.EventFull, 4, 4, model.EventFull},
		{model.EventConfirmed, 4, 4, model.EventConfirmed},
		{model.EventDraft, 4, 4, model.EventDraft},
	}
	for _, tc := range cases {
		if got := CapacityStatus(tc.current, tc.players, tc.max); got != tc.want {
			t.Errorf("CapacityStatus(%s, %d, %d) = %s, want %s", tc.current, tc.players, tc.max, got, tc.want)
		}
	}
}

func TestCheckEventTransition(t *testing.T) {
	allowed := [][2]model.EventStatus{
		{model.EventDraft, model.EventPublished},
		{model.EventPublished, model.EventConfirmed},
		{model.EventFull, model.EventConfirmed},
		{model.EventConfirmed, model.EventCompleted},
		{model.EventFull, model.EventCancelled},
	}
	for _, tr := range allowed {
		if err := CheckEventTransition(tr[0], tr[1]); err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tr[0], tr[1], err)
		}
	}

	if err := CheckEventTransition(model.EventPublished, model.EventFull); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for manual full, got %v", err)
	}
	if err := CheckEventTransition(model.EventCancelled, model.EventPublished); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("expected invalid transition from cancelled, got %v", err)
	}
	if err := CheckEventTransition(model.EventDraft, model.EventCompleted); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("expected invalid transition draft -> completed, got %v", err)
	}
}

func TestNormalizeEventRequest(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	lat, lng := 52.52, 13.40

	valid := func() model.EventRequest {
		return model.EventRequest{
			Title:      "  Sunday football ",
			Sport:      " Football",
			Location:   "Tempelhofer Feld",
			StartsAt:   now.Add(24 * time.Hour),
			EndsAt:     now.Add(26 * time.Hour),
			MaxPlayers: 10,
		}
	}

	req := valid()
	if err := NormalizeEventRequest(&req, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Title != "Sunday football" || req.Sport != "football" {
		t.Fatalf("expected trimmed fields, got %q / %q", req.Title, req.Sport)
	}
	if req.SkillLevel != model.SkillAny || req.GenderPolicy != model.GenderMixed {
		t.Fatalf("expected defaults, got %q / %q", req.SkillLevel, req.GenderPolicy)
	}

	invalid := map[string]func(r *model.EventRequest){
		"missing title":   func(r *model.EventRequest) { r.Title = "" },
		"past start":      func(r *model.EventRequest) { r.StartsAt = now.Add(-time.Hour) },
		"end before":      func(r *model.EventRequest) { r.EndsAt = r.StartsAt },
		"one player":      func(r *model.EventRequest) { r.MaxPlayers = 1 },
		"negative price":  func(r *model.EventRequest) { r.PriceCents = -1 },
		"lat without lng": func(r *model.EventRequest) { r.Latitude = &lat },
		"bad skill":       func(r *model.EventRequest) { r.SkillLevel = "pro" },
		"bad latitude": func(r *model.EventRequest) {
			bad := 91.0
			r.Latitude, r.Longitude = &bad, &lng
		},
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			r := valid()
			mutate(&r)
			if err := NormalizeEventRequest(&r, now); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
