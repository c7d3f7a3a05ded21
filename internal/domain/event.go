package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

const (
	MinPlayers     = 2
	MaxPlayers     = 1000
	maxTitleLength = 120
)

// CapacityStatus keeps published and full in step with the player count.
// Every other status is left alone.
func CapacityStatus(current model.EventStatus, players, max int) model.EventStatus {
	switch current {
	case model.EventPublished:
		if players >= max {
			return model.EventFull
		}
	case model.EventFull:
		if players < max {
			return model.EventPublished
		}
	}
	return current
}

var lifecycle = map[model.EventStatus][]model.EventStatus{
	model.EventDraft:     {model.EventPublished, model.EventCancelled},
	model.EventPublished: {model.EventConfirmed, model.EventCancelled},
	model.EventFull:      {model.EventConfirmed, model.EventCancelled},
	model.EventConfirmed: {model.EventCompleted, model.EventCancelled},
}

// CheckEventTransition validates a host-driven lifecycle change. Full is
// derived from capacity and can never be requested directly.
func CheckEventTransition(from, to model.EventStatus) error {
	if !to.Valid() {
		return apperr.Validation("unknown event status %q", to)
	}
	if to == model.EventFull {
		return apperr.Validation("status full is derived from capacity")
	}
	for _, allowed := range lifecycle[from] {
		if allowed == to {
			return nil
		}
	}
	return &apperr.Error{
		Kind:    apperr.KindConflict,
		Code:    apperr.ErrInvalidTransition.Code,
		Message: fmt.Sprintf("cannot move event from %s to %s", from, to),
	}
}

// PublishedStatus resolves the status an event lands in when it is
// published with players already accepted.
func PublishedStatus(players, max int) model.EventStatus {
	return CapacityStatus(model.EventPublished, players, max)
}

// NormalizeEventRequest trims and defaults req in place and validates it.
func NormalizeEventRequest(req *model.EventRequest, now time.Time) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Sport = strings.ToLower(strings.TrimSpace(req.Sport))
	req.Location = strings.TrimSpace(req.Location)
	if req.SkillLevel == "" {
		req.SkillLevel = model.SkillAny
	}
	if req.GenderPolicy == "" {
		req.GenderPolicy = model.GenderMixed
	}

	switch {
	case req.Title == "":
		return apperr.Validation("title is required")
	case len(req.Title) > maxTitleLength:
		return apperr.Validation("title cannot exceed %d characters", maxTitleLength)
	case req.Sport == "":
		return apperr.Validation("sport is required")
	case req.Location == "":
		return apperr.Validation("location is required")
	case !req.SkillLevel.Valid():
		return apperr.Validation("unknown skill level %q", req.SkillLevel)
	case !req.GenderPolicy.Valid():
		return apperr.Validation("unknown gender policy %q", req.GenderPolicy)
	case req.StartsAt.IsZero():
		return apperr.Validation("starts_at is required")
	case !req.StartsAt.After(now):
		return apperr.Validation("starts_at must be in the future")
	case !req.EndsAt.After(req.StartsAt):
		return apperr.Validation("ends_at must be after starts_at")
	case req.MaxPlayers < MinPlayers:
		return apperr.Validation("max_players must be at least %d", MinPlayers)
	case req.MaxPlayers > MaxPlayers:
		return apperr.Validation("max_players cannot exceed %d", MaxPlayers)
	case req.PriceCents < 0:
		return apperr.Validation("price_cents cannot be negative")
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		return apperr.Validation("latitude and longitude must be provided together")
	}
	if req.Latitude != nil {
		if !(*req.Latitude >= -90 && *req.Latitude <= 90) {
			return apperr.Validation("latitude must be between -90 and 90")
		}
		if !(*req.Longitude >= -180 && *req.Longitude <= 180) {
			return apperr.Validation("longitude must be between -180 and 180")
		}
	}
	return nil
}
