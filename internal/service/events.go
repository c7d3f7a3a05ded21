package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/clock"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/domain"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/geo"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

// EventService orchestrates event-related business operations.
type EventService struct {
	events EventStore
	clock  clock.Clock
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, clk clock.Clock) *EventService {
	return &EventService{events: events, clock: clk}
}

// CreateEvent validates the request and stores a new event hosted by hostID.
func (s *EventService) CreateEvent(ctx context.Context, hostID string, req model.EventRequest) (*model.Event, error) {
	if err := domain.NormalizeEventRequest(&req, s.clock.Now()); err != nil {
		return nil, err
	}

	ev := &model.Event{HostID: hostID, Status: model.EventDraft}
	applyRequest(ev, req)
	if req.Publish {
		ev.Status = model.EventPublished
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return ev, nil
}

// GetEvent returns an event. Drafts are only visible to their host.
func (s *EventService) GetEvent(ctx context.Context, viewerID, id string) (*model.Event, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.Status == model.EventDraft && ev.HostID != viewerID {
		return nil, apperr.NotFound("event not found")
	}
	return ev, nil
}

// UpdateEvent replaces the editable fields of an event. The player count
// already reached caps how low max_players may go.
func (s *EventService) UpdateEvent(ctx context.Context, actorID, id string, req model.EventRequest) (*model.Event, error) {
	if err := domain.NormalizeEventRequest(&req, s.clock.Now()); err != nil {
		return nil, err
	}

	return s.events.Update(ctx, id, func(ev *model.Event) error {
		if ev.HostID != actorID {
			return apperr.Forbidden("only the host can edit this event")
		}
		if ev.Status.Terminal() {
			return apperr.Conflict("a %s event cannot be edited", ev.Status)
		}
		if req.MaxPlayers < ev.PlayerCount {
			return apperr.Conflict("max_players cannot be lower than the current %d players", ev.PlayerCount)
		}
		applyRequest(ev, req)
		ev.Status = domain.CapacityStatus(ev.Status, ev.PlayerCount, ev.MaxPlayers)
		return nil
	})
}

// SetStatus performs a host-driven lifecycle transition.
func (s *EventService) SetStatus(ctx context.Context, actorID, id string, to model.EventStatus) (*model.Event, error) {
	return s.events.Update(ctx, id, func(ev *model.Event) error {
		if ev.HostID != actorID {
			return apperr.Forbidden("only the host can change the event status")
		}
		if err := domain.CheckEventTransition(ev.Status, to); err != nil {
			return err
		}
		if to == model.EventPublished {
			to = domain.PublishedStatus(ev.PlayerCount, ev.MaxPlayers)
		}
		ev.Status = to
		return nil
	})
}

// DeleteEvent removes an event and everything attached to it.
func (s *EventService) DeleteEvent(ctx context.Context, actorID, id string) error {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ev.HostID != actorID {
		return apperr.Forbidden("only the host can delete this event")
	}
	return s.events.Delete(ctx, id)
}

// SearchEvents returns upcoming published events matching f.
func (s *EventService) SearchEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	if (f.Lat == nil) != (f.Lng == nil) {
		return nil, apperr.Validation("lat and lng must be provided together")
	}
	if f.Lat != nil && !(geo.Point{Lat: *f.Lat, Lng: *f.Lng}).Valid() {
		return nil, apperr.Validation("lat must be between -90 and 90 and lng between -180 and 180")
	}
	if !(f.RadiusKm >= 0) || math.IsInf(f.RadiusKm, 1) {
		return nil, apperr.Validation("radius_km must be a non-negative number")
	}
	if f.RadiusKm > 0 && f.Lat == nil {
		return nil, apperr.Validation("radius_km requires lat and lng")
	}
	switch f.Sort {
	case "":
		f.Sort = geo.SortTime
		if f.Lat != nil {
			f.Sort = geo.SortDistance
		}
	case geo.SortTime, geo.SortDistance:
	default:
		return nil, apperr.Validation("sort must be time or distance")
	}
	if f.Limit <= 0 {
		f.Limit = defaultSearchLimit
	}
	if f.Limit > maxSearchLimit {
		f.Limit = maxSearchLimit
	}
	f.After = s.clock.Now()

	events, err := s.events.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}

	if f.Lat != nil {
		events = geo.Annotate(events, geo.Point{Lat: *f.Lat, Lng: *f.Lng}, f.RadiusKm)
	}
	geo.Sort(events, f.Sort)

	if len(events) > f.Limit {
		events = events[:f.Limit]
	}
	return events, nil
}

// ListHosted returns every event the user hosts, drafts included.
func (s *EventService) ListHosted(ctx context.Context, hostID string) ([]model.Event, error) {
	return s.events.ListByHost(ctx, hostID)
}

func applyRequest(ev *model.Event, req model.EventRequest) {
	ev.Title = req.Title
	ev.Description = req.Description
	ev.Sport = req.Sport
	ev.SkillLevel = req.SkillLevel
	ev.GenderPolicy = req.GenderPolicy
	ev.StartsAt = req.StartsAt.UTC()
	ev.EndsAt = req.EndsAt.UTC()
	ev.Location = req.Location
	ev.Latitude = req.Latitude
	ev.Longitude = req.Longitude
	ev.MaxPlayers = req.MaxPlayers
	ev.PriceCents = req.PriceCents
	ev.SportConfig = req.SportConfig
}
