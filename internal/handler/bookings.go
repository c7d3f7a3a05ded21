package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/service"
)

// BookingHandler holds the HTTP handlers for join requests.
type BookingHandler struct {
	svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// Request handles POST /bookings
// Files a join request; the host decides later.
func (h *BookingHandler) Request(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.Request(r.Context(), uid, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

// Get handles GET /bookings/{id}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	booking, err := h.svc.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// Decide handles PATCH /bookings/{id}
// Body: {"status": "accepted" | "rejected"}. Host only.
func (h *BookingHandler) Decide(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.BookingDecisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.Decide(r.Context(), uid, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// Cancel handles DELETE /bookings/{id}
// Withdraws the caller's accepted booking and frees the slot.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	booking, err := h.svc.Cancel(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}
