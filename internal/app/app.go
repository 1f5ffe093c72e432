package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Guneet-syan/Neural-Breach/internal/config"
	"github.com/Guneet-syan/Neural-Breach/internal/delivery/httpd"
	"github.com/Guneet-syan/Neural-Breach/internal/middleware"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/optimistic"
	"github.com/Guneet-syan/Neural-Breach/internal/proxy"
	"github.com/Guneet-syan/Neural-Breach/internal/repository"
	"github.com/Guneet-syan/Neural-Breach/internal/server"
	"github.com/Guneet-syan/Neural-Breach/internal/service"
	"github.com/Guneet-syan/Neural-Breach/internal/service/integration"
	"github.com/Guneet-syan/Neural-Breach/internal/service/storage"
	"github.com/Guneet-syan/Neural-Breach/internal/session"
	"github.com/Guneet-syan/Neural-Breach/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type App struct {
	logger    zerolog.Logger
	config    *config.Config
	store     *repository.BoltStore
	client    *integration.Client
	pool      *worker.WorkerPool
	publisher *integration.RabbitMQPublisher
	services  httpd.Services
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	store, err := repository.NewBoltStore(cfg.Session.StorePath, log)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Calendar.TimeLocation()
	if err != nil {
		store.Close()
		return nil, err
	}

	clientOptions := integration.Options{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		RetryCount: cfg.API.RetryCount,
		RetryDelay: cfg.API.RetryDelay,
		Logger:     log,
	}

	// вход и регистрация идут без токена, остальное с токеном сессии
	sess := session.NewManager(integration.NewClient(clientOptions), repository.NewTokenRepository(store), nil, log)
	if err := sess.Init(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to restore session")
	}

	clientOptions.Tokens = sess
	client := integration.NewClient(clientOptions)

	pool := worker.NewWorkerPool(cfg.Worker.MaxWorkers, log)
	if err := pool.Start(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}

	sinks := optimistic.MultiSink{optimistic.NewLogSink(log)}
	var publisher *integration.RabbitMQPublisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = integration.NewRabbitMQPublisher(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.RoutingKey,
			log,
		)
		if err != nil {
			// без брокера итоги мутаций остаются только в логе
			log.Error().Err(err).Msg("Failed to create RabbitMQ publisher")
		} else {
			sinks = append(sinks, publisher)
		}
	}

	downloads, err := storage.New(storage.StorageConfig{
		Provider:  cfg.Downloads.Provider,
		Dir:       cfg.Downloads.Dir,
		Endpoint:  cfg.Downloads.MinIO.Endpoint,
		AccessKey: cfg.Downloads.MinIO.AccessKey,
		SecretKey: cfg.Downloads.MinIO.SecretKey,
		Bucket:    cfg.Downloads.MinIO.Bucket,
		UseSSL:    cfg.Downloads.MinIO.UseSSL,
		Timeout:   cfg.API.Timeout,
	}, log)
	if err != nil {
		pool.Stop()
		if publisher != nil {
			publisher.Close()
		}
		store.Close()
		return nil, fmt.Errorf("failed to create download store: %w", err)
	}

	opts := service.MutationOptions{
		Executor: pool,
		Sink:     sinks,
		Timeout:  cfg.API.Timeout,
	}
	author := service.ProfileAuthor(cfg.User.Author, client)

	services := httpd.Services{
		Session:     sess,
		Calendar:    service.NewCalendarService(client, loc, opts, log),
		Classes:     service.NewClassService(client, models.DefaultClasses, nil, loc, log),
		Ratings:     service.NewRatingsService(client, opts, log),
		Explore:     service.NewExploreService(client, cfg.Search.Debounce, nil, log),
		MyResources: service.NewMyResourcesService(client, author, opts, log),
		Upload:      service.NewUploadService(client, author, cfg.User.College, log),
		Downloads:   service.NewDownloadsService(client, downloads, repository.NewDownloadRepository(store), nil, log),
		Libraries:   service.NewLibrariesService(nil),
		Profile:     service.NewProfileService(client),
		Workers:     pool,
	}

	return &App{
		logger:    log,
		config:    cfg,
		store:     store,
		client:    client,
		pool:      pool,
		publisher: publisher,
		services:  services,
	}, nil
}

func (a *App) Services() httpd.Services {
	return a.services
}

func (a *App) Session() *session.Manager {
	return a.services.Session
}

func (a *App) Config() *config.Config {
	return a.config
}

// Router собирает маршруты локального сервера вместе с прокси файлов
func (a *App) Router() (chi.Router, error) {
	files, err := proxy.NewProxy(a.config.API.BaseURL, a.services.Session, a.logger,
		proxy.WithTimeout(a.config.Proxy.Timeout),
		proxy.WithIdleConns(a.config.Proxy.MaxIdleConns, a.config.Proxy.IdleConnTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file proxy: %w", err)
	}

	router := chi.NewRouter()
	handler := httpd.NewHandler(a.services, files.Handler(), 0, a.logger)
	handler.RegisterRoutes(router)
	return router, nil
}

// NewServer: локальный сервер со всей цепочкой middleware
func (a *App) NewServer() (*server.Server, error) {
	router, err := a.Router()
	if err != nil {
		return nil, err
	}

	srv := server.NewServer(server.ServerConfig{
		Address:         a.config.Server.Address,
		ReadTimeout:     a.config.Server.ReadTimeout,
		WriteTimeout:    a.config.Server.WriteTimeout,
		IdleTimeout:     a.config.Server.IdleTimeout,
		ShutdownTimeout: a.config.Server.ShutdownTimeout,
	}, router, a.logger)

	srv.SetupMiddleware(
		middleware.NewCORS(middleware.CORSOptions{
			AllowedOrigins:   a.config.CORS.AllowedOrigins,
			AllowedMethods:   a.config.CORS.AllowedMethods,
			AllowedHeaders:   a.config.CORS.AllowedHeaders,
			ExposedHeaders:   a.config.CORS.ExposedHeaders,
			AllowCredentials: a.config.CORS.AllowCredentials,
			MaxAge:           a.config.CORS.MaxAge,
		}),
		middleware.RequestLogger(a.logger),
		middleware.Recovery(a.logger),
		middleware.Timeout(a.config.Server.WriteTimeout),
	)
	return srv, nil
}

// Serve запускает сервер и останавливает его по отмене ctx
func (a *App) Serve(ctx context.Context) error {
	srv, err := a.NewServer()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return <-errCh
}

// Close дожидается фоновых мутаций и закрывает хранилище
func (a *App) Close() error {
	a.services.Explore.Stop()

	if err := a.pool.Stop(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop worker pool")
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return a.store.Close()
}
