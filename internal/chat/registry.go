// Package chat relays event messages to connected users over WebSocket.
//
// The Registry maps a user id to that user's single live connection and
// lives in process memory. Deployments running more than one instance only
// push to users connected to the instance that handled the send; delivery
// across instances needs an external pub/sub in front of Registry.Push.
// Messages are always persisted before they are pushed, so a missed push
// only delays delivery until the next history fetch.
package chat

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

// Frame types exchanged over the socket.
const (
	FrameAuth        = "auth"
	FrameChat        = "chat"
	FrameRead        = "read"
	FrameAuthOK      = "auth_ok"
	FrameMessageSent = "message_sent"
	FrameNewMessage  = "new_message"
	FrameReadOK      = "read_ok"
	FrameError       = "error"
)

// Frame is an outbound message.
type Frame struct {
	Type    string         `json:"type"`
	EventID string         `json:"eventId,omitempty"`
	Message *model.Message `json:"message,omitempty"`
	Count   *int64         `json:"count,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
}

// Registry tracks the live connection of each user. Registering a second
// connection for the same user replaces the first.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*Client
	// open holds every live connection, authenticated or not.
	open   map[*Client]struct{}
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		open:    make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (r *Registry) track(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open[c] = struct{}{}
}

func (r *Registry) untrack(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.open, c)
}

func (r *Registry) Register(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[userID] = c
}

// Unregister removes userID only while it still points at c, so a stale
// connection closing late cannot evict its replacement.
func (r *Registry) Unregister(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clients[userID] == c {
		delete(r.clients, userID)
	}
}

func (r *Registry) Online(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.clients[userID]
	return ok
}

// Push queues frame for userID without blocking. It reports whether the
// frame was queued; an offline user or a full queue drops it.
func (r *Registry) Push(userID string, frame Frame) bool {
	r.mu.Lock()
	c, ok := r.clients[userID]
	r.mu.Unlock()
	if !ok {
		return false
	}

	b, err := json.Marshal(frame)
	if err != nil {
		r.logger.Error("Failed to encode frame", slog.String("type", frame.Type), slog.String("error", err.Error()))
		return false
	}
	if !c.enqueue(b) {
		r.logger.Warn("Dropped frame for slow client", slog.String("user_id", userID), slog.String("type", frame.Type))
		return false
	}
	return true
}

// NotifyMessage pushes a new_message frame to the recipient.
func (r *Registry) NotifyMessage(userID string, m *model.Message) bool {
	return r.Push(userID, Frame{Type: FrameNewMessage, EventID: m.EventID, Message: m})
}

// CloseAll closes every open connection. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.open))
	for c := range r.open {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
