package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/service"
)

// MessageHandler exposes event chat over plain HTTP. Live delivery happens
// on the socket; these routes cover history, sending without a socket and
// read state.
type MessageHandler struct {
	svc *service.ChatService
}

func NewMessageHandler(svc *service.ChatService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// History handles GET /events/{id}/messages
// Query: with (other user id), limit, before (RFC 3339).
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, "limit must be an integer")
		return
	}
	before, err := queryTime(r, "before")
	if err != nil {
		badRequest(w, "before must be an RFC 3339 timestamp")
		return
	}

	msgs, err := h.svc.History(r.Context(), uid, chi.URLParam(r, "id"), r.URL.Query().Get("with"), limit, before)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyIfNil(msgs))
}

// Send handles POST /events/{id}/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	msg, err := h.svc.Send(r.Context(), uid, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// MarkAllRead handles POST /events/{id}/messages/read
func (h *MessageHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	n, err := h.svc.MarkAllRead(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// Unread handles GET /events/{id}/messages/unread
func (h *MessageHandler) Unread(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	n, err := h.svc.UnreadCount(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}
