package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/auth"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/logging"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

const frameTimeout = 10 * time.Second

// Messenger is the part of the chat service the socket drives.
type Messenger interface {
	Send(ctx context.Context, senderID, eventID string, req model.SendMessageRequest) (*model.Message, error)
	MarkAllRead(ctx context.Context, userID, eventID string) (int64, error)
}

// inbound is any frame a client may send.
type inbound struct {
	Type       string            `json:"type"`
	UserID     string            `json:"userId"`
	EventID    string            `json:"eventId"`
	Content    string            `json:"content"`
	Kind       model.MessageKind `json:"kind"`
	ReceiverID string            `json:"receiverId"`
}

// Handler serves GET /ws. It must sit behind auth.Middleware.
type Handler struct {
	registry  *Registry
	messenger Messenger
	upgrader  websocket.Upgrader
}

// NewHandler builds the socket endpoint. origins lists the browser origins
// allowed to connect; "*" or an empty list allows any.
func NewHandler(registry *Registry, messenger Messenger, origins []string) *Handler {
	return &Handler{
		registry:  registry,
		messenger: messenger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(origins),
		},
	}
}

func checkOrigin(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromCtx(ctx)

	id, ok := auth.FromCtx(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.InfoContext(ctx, "WebSocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := newClient(conn)
	h.registry.track(c)
	go c.writePump()

	s := &session{handler: h, client: c, identity: id, logger: logger.With(slog.String("user_id", id.UserID))}
	defer s.close()

	s.readLoop(context.WithoutCancel(ctx))
}

// session is the reader side of one connection.
type session struct {
	handler  *Handler
	client   *Client
	identity auth.Identity
	logger   *slog.Logger
	authed   bool
}

func (s *session) close() {
	s.handler.registry.Unregister(s.identity.UserID, s.client)
	s.handler.registry.untrack(s.client)
	s.client.Close()
}

func (s *session) readLoop(ctx context.Context) {
	conn := s.client.conn
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.DebugContext(ctx, "WebSocket closed", slog.String("error", err.Error()))
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			s.reply(Frame{Type: FrameError, Error: "malformed frame", Code: "BAD_FRAME"})
			continue
		}
		s.dispatch(ctx, in)
	}
}

func (s *session) dispatch(ctx context.Context, in inbound) {
	if in.Type != FrameAuth && !s.authed {
		s.reply(Frame{Type: FrameError, Error: "send an auth frame first", Code: "UNAUTHENTICATED"})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, frameTimeout)
	defer cancel()

	switch in.Type {
	case FrameAuth:
		if in.UserID != s.identity.UserID {
			s.reply(Frame{Type: FrameError, Error: "userId does not match the token", Code: "FORBIDDEN"})
			return
		}
		s.authed = true
		s.handler.registry.Register(s.identity.UserID, s.client)
		s.reply(Frame{Type: FrameAuthOK})

	case FrameChat:
		m, err := s.handler.messenger.Send(ctx, s.identity.UserID, in.EventID, model.SendMessageRequest{
			Content:    in.Content,
			Kind:       in.Kind,
			ReceiverID: in.ReceiverID,
		})
		if err != nil {
			s.replyError(ctx, in, err)
			return
		}
		s.reply(Frame{Type: FrameMessageSent, EventID: m.EventID, Message: m})

	case FrameRead:
		n, err := s.handler.messenger.MarkAllRead(ctx, s.identity.UserID, in.EventID)
		if err != nil {
			s.replyError(ctx, in, err)
			return
		}
		s.reply(Frame{Type: FrameReadOK, EventID: in.EventID, Count: &n})

	default:
		s.reply(Frame{Type: FrameError, Error: "unknown frame type", Code: "BAD_FRAME"})
	}
}

func (s *session) replyError(ctx context.Context, in inbound, err error) {
	msg, code := apperr.Describe(err)
	if apperr.KindOf(err) == apperr.KindInternal {
		s.logger.ErrorContext(ctx, "Chat frame failed",
			slog.String("type", in.Type),
			slog.String("event_id", in.EventID),
			slog.String("error", err.Error()),
		)
	}
	s.reply(Frame{Type: FrameError, EventID: in.EventID, Error: msg, Code: code})
}

func (s *session) reply(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		s.logger.Error("Failed to encode frame", slog.String("error", err.Error()))
		return
	}
	if !s.client.enqueue(b) {
		s.logger.Warn("Dropped reply for slow client", slog.String("type", f.Type))
	}
}
