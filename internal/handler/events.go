package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/service"
)

// EventHandler holds the HTTP handlers for events.
type EventHandler struct {
	svc      *service.EventService
	bookings *service.BookingService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, bookings *service.BookingService) *EventHandler {
	return &EventHandler{svc: svc, bookings: bookings}
}

// CreateEvent handles POST /events
// The caller becomes the host.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), uid, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// SearchEvents handles GET /events
// Query: sport, date (YYYY-MM-DD), skill_level, gender, location, lat, lng,
// radius_km, max_price, sort (time|distance), limit.
func (h *EventHandler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.EventFilter{
		Sport:      strings.ToLower(strings.TrimSpace(q.Get("sport"))),
		SkillLevel: model.SkillLevel(q.Get("skill_level")),
		Gender:     model.GenderPolicy(q.Get("gender")),
		Location:   strings.TrimSpace(q.Get("location")),
		Sort:       q.Get("sort"),
	}

	var err error
	if f.Lat, err = queryFloat(r, "lat"); err != nil {
		badRequest(w, "lat must be a number")
		return
	}
	if f.Lng, err = queryFloat(r, "lng"); err != nil {
		badRequest(w, "lng must be a number")
		return
	}
	radius, err := queryFloat(r, "radius_km")
	if err != nil {
		badRequest(w, "radius_km must be a number")
		return
	}
	if radius != nil {
		f.RadiusKm = *radius
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		badRequest(w, "limit must be an integer")
		return
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(w, "max_price must be an integer number of cents")
			return
		}
		f.MaxPrice = &v
	}
	if raw := q.Get("date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			badRequest(w, "date must be formatted as YYYY-MM-DD")
			return
		}
		f.Date = &d
	}
	if f.SkillLevel != "" && !f.SkillLevel.Valid() {
		badRequest(w, "unknown skill_level")
		return
	}
	if f.Gender != "" && !f.Gender.Valid() {
		badRequest(w, "unknown gender")
		return
	}

	events, err := h.svc.SearchEvents(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyIfNil(events))
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	event, err := h.svc.GetEvent(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PUT /events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), uid, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// SetStatus handles PATCH /events/{id}/status
func (h *EventHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.EventStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.SetStatus(r.Context(), uid, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteEvent(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListBookings handles GET /events/{id}/bookings
// The host sees every record; everyone else sees accepted players and
// their own request.
func (h *EventHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListForEvent(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyIfNil(bookings))
}
