// Command server is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/auth"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/chat"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/clock"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/config"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/database"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/handler"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/logging"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/repository"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/repository/memory"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type stores struct {
	events   service.EventStore
	bookings service.BookingStore
	messages service.MessageStore
	users    service.UserStore
	close    func()
}

// openStores opens the backend named by STORE.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		logger.WarnContext(ctx, "Using the in-memory store; data is lost on restart")
		m := memory.New()
		return &stores{events: m.Events, bookings: m.Bookings, messages: m.Messages, users: m.Users, close: func() {}}, nil
	}

	pool, err := database.NewPool(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	logger.InfoContext(ctx, "Connected to PostgreSQL", slog.String("host", cfg.DB.Host), slog.String("database", cfg.DB.Name))

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &stores{
		events:   repository.NewEventRepository(pool),
		bookings: repository.NewBookingRepository(pool),
		messages: repository.NewMessageRepository(pool),
		users:    repository.NewUserRepository(pool),
		close:    pool.Close,
	}, nil
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// ── 1. Wire up layers ────────────────────────────────────────────────
	registry := chat.NewRegistry(logger)
	events := service.NewEventService(st.events, clock.Real{})
	bookings := service.NewBookingService(st.events, st.bookings, cfg.Policy())
	chatSvc := service.NewChatService(st.events, st.bookings, st.messages, registry)

	router := handler.NewRouter(handler.Deps{
		Logger:      logger,
		Tokens:      auth.NewTokens(cfg.Auth.SigningSecret, cfg.Auth.Issuer),
		CORSOrigins: cfg.CORSOrigins,
		Events:      events,
		Bookings:    bookings,
		Chat:        chatSvc,
		Users:       service.NewUserService(st.users),
		Socket:      chat.NewHandler(registry, chatSvc, cfg.CORSOrigins),
	})

	// ── 2. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(ctx, "Server listening",
			slog.String("addr", srv.Addr),
			slog.String("store", cfg.Store),
			slog.String("rerequest_policy", string(cfg.Policy())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		// Hijacked WebSocket connections are not tracked by Shutdown.
		registry.CloseAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("Server stopped")
		return nil
	})

	return g.Wait()
}
