package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/auth"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/logging"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/service"
)

// Deps is everything the router needs.
type Deps struct {
	Logger      *slog.Logger
	Tokens      *auth.Tokens
	CORSOrigins []string

	Events   *service.EventService
	Bookings *service.BookingService
	Chat     *service.ChatService
	Users    *service.UserService

	// Socket serves GET /ws.
	Socket http.Handler
}

// NewRouter builds the full HTTP surface. Everything except /health
// requires a bearer token.
func NewRouter(d Deps) http.Handler {
	events := NewEventHandler(d.Events, d.Bookings)
	bookings := NewBookingHandler(d.Bookings)
	messages := NewMessageHandler(d.Chat)
	me := NewMeHandler(d.Users, d.Events, d.Bookings)

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.RequestID)      // attach request IDs
	r.Use(chimiddleware.RealIP)         // trust X-Forwarded-For
	r.Use(logging.Middleware(d.Logger)) // structured access log
	r.Use(chimiddleware.Recoverer)      // recover from panics, return 500
	r.Use(CORS(d.CORSOrigins))

	r.Get("/health", HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(d.Tokens))

		r.Route("/events", func(r chi.Router) {
			r.Get("/", events.SearchEvents)
			r.Post("/", events.CreateEvent)
			r.Get("/{id}", events.GetEvent)
			r.Put("/{id}", events.UpdateEvent)
			r.Delete("/{id}", events.DeleteEvent)
			r.Patch("/{id}/status", events.SetStatus)
			r.Get("/{id}/bookings", events.ListBookings)
			r.Get("/{id}/messages", messages.History)
			r.Post("/{id}/messages", messages.Send)
			r.Post("/{id}/messages/read", messages.MarkAllRead)
			r.Get("/{id}/messages/unread", messages.Unread)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookings.Request)
			r.Get("/{id}", bookings.Get)
			r.Patch("/{id}", bookings.Decide)
			r.Delete("/{id}", bookings.Cancel)
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/", me.Profile)
			r.Put("/", me.SaveProfile)
			r.Get("/bookings", me.Bookings)
			r.Get("/events", me.Events)
		})

		if d.Socket != nil {
			r.Method(http.MethodGet, "/ws", d.Socket)
		}
	})

	return r
}

// CORS answers preflight requests and sets the allow headers for the
// configured origins. "*" allows any origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || slices.Contains(origins, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
