package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/service"
)

// MeHandler serves the caller's own profile, bookings and hosted events.
type MeHandler struct {
	users    *service.UserService
	events   *service.EventService
	bookings *service.BookingService
}

func NewMeHandler(users *service.UserService, events *service.EventService, bookings *service.BookingService) *MeHandler {
	return &MeHandler{users: users, events: events, bookings: bookings}
}

// Profile handles GET /me
func (h *MeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	u, err := h.users.Profile(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// SaveProfile handles PUT /me
func (h *MeHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	u, err := h.users.SaveProfile(r.Context(), uid, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// Bookings handles GET /me/bookings
func (h *MeHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListMine(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyIfNil(bookings))
}

// Events handles GET /me/events
func (h *MeHandler) Events(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	events, err := h.events.ListHosted(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyIfNil(events))
}
