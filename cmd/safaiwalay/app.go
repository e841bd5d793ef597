package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/safaiwalay/dispatch/internal/db"
	"github.com/safaiwalay/dispatch/internal/handlers"
	"github.com/safaiwalay/dispatch/internal/logger"
	"github.com/safaiwalay/dispatch/internal/notify"
	"github.com/safaiwalay/dispatch/internal/repository/postgres"
	"github.com/safaiwalay/dispatch/internal/service/auth"
	"github.com/safaiwalay/dispatch/internal/service/auth/tokenmanager"
	"github.com/safaiwalay/dispatch/internal/service/booking"
	"github.com/safaiwalay/dispatch/internal/service/catalog"
	"github.com/safaiwalay/dispatch/internal/service/earnings"
	"github.com/safaiwalay/dispatch/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if c.SecretKey == "" {
		return nil, errors.New("secret key must be set, generate one with cmd/gensecret")
	}

	l := newLogger(c.Environment, c.LogLevel)

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey}, storage.Refresh())
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	hub := notify.NewHub(l)
	userService := user.NewService(auth.DefaultHasher, storage)
	bookingService := booking.NewService(storage, hub)
	earningsService := earnings.NewService(l, storage)
	catalogService := catalog.NewService(storage)

	mux := handlers.NewRouter(handlers.Services{
		Auth:     authService,
		Booking:  bookingService,
		Earnings: earningsService,
		Catalog:  catalogService,
		User:     userService,
		Hub:      hub,
	}, l)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// newLogger builds the process logger: JSON in prod, text elsewhere
func newLogger(environment string, level string) logger.Logger {
	if environment == "prod" {
		return logger.NewJSONLogger(level)
	}
	return logger.NewLogger(level)
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
