package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	server *http.Server
	logger zerolog.Logger
	// appRouter держит конечные маршруты; chi не позволяет вешать use после их регистрации
	appRouter  chi.Router
	rootRouter *chi.Mux
	mounted    bool
	shutdown   time.Duration
}

type ServerConfig struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func NewServer(cfg ServerConfig, router chi.Router, logger zerolog.Logger) *Server {
	s := &Server{
		logger:     logger,
		appRouter:  router,
		rootRouter: chi.NewRouter(),
		shutdown:   cfg.ShutdownTimeout,
	}

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.rootRouter,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.rootRouter
}

// Start блокируется до остановки; штатная остановка не считается ошибкой
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.server.Addr).Msg("Starting server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve принимает соединения на готовом listener (тесты, systemd socket activation)
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info().Str("address", l.Addr().String()).Msg("Starting server")
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) ShutdownTimeout() time.Duration {
	if s.shutdown <= 0 {
		return 10 * time.Second
	}
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server")
	return s.server.Shutdown(ctx)
}

func (s *Server) SetupMiddleware(
	corsMiddleware func(http.Handler) http.Handler,
	loggerMiddleware func(http.Handler) http.Handler,
	recoveryMiddleware func(http.Handler) http.Handler,
	timeoutMiddleware func(http.Handler) http.Handler,
) {
	s.rootRouter.Use(middleware.RequestID)
	s.rootRouter.Use(middleware.RealIP)
	s.rootRouter.Use(middleware.StripSlashes)
	s.rootRouter.Use(middleware.CleanPath)
	s.rootRouter.Use(middleware.GetHead)

	if corsMiddleware != nil {
		s.rootRouter.Use(corsMiddleware)
	}

	if timeoutMiddleware != nil {
		s.rootRouter.Use(timeoutMiddleware)
	}

	if loggerMiddleware != nil {
		s.rootRouter.Use(loggerMiddleware)
	}

	if recoveryMiddleware != nil {
		s.rootRouter.Use(recoveryMiddleware) // recovery ближе к обработчику
	}

	if !s.mounted {
		s.rootRouter.Mount("/", s.appRouter)
		s.mounted = true
	}
}
