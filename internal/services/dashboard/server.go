package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/muslimbek77/tanlov-ai/internal/platform/i18n/catalog"
	"github.com/muslimbek77/tanlov-ai/internal/platform/logging"
	"github.com/muslimbek77/tanlov-ai/internal/platform/timeouts"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage"
)

// Config defines the inputs of the dashboard server.
type Config struct {
	HTTPAddr string
	Settings storage.SettingsStore
	// Bundle holds the catalogs served to the browser. Nil uses
	// catalog.Default().
	Bundle *catalog.Bundle
	Logger *zap.Logger
}

// Server hosts the dashboard API.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds a Server. It does not start listening.
func NewServer(cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if cfg.Settings == nil {
		return nil, errors.New("settings store is required")
	}
	logger := logging.OrNop(cfg.Logger)

	handler := NewHandler(HandlerConfig{
		Settings: cfg.Settings,
		Bundle:   cfg.Bundle,
		Logger:   logger,
	})
	return &Server{
		httpAddr: httpAddr,
		logger:   logger,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
			WriteTimeout:      timeouts.Write,
			IdleTimeout:       timeouts.Idle,
		},
	}, nil
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("dashboard server is nil")
	}
	listener, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if s == nil {
		return errors.New("dashboard server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	s.logger.Info("dashboard listening", zap.String("addr", listener.Addr().String()))
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
