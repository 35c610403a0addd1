package videohosting

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/grmlvv/video-hosting/internal/cache"
	"github.com/grmlvv/video-hosting/internal/config"
	"github.com/grmlvv/video-hosting/internal/lib/jwt"
	"github.com/grmlvv/video-hosting/internal/lib/sl"
	"github.com/grmlvv/video-hosting/internal/media"
	"github.com/grmlvv/video-hosting/internal/migrations"
	"github.com/grmlvv/video-hosting/internal/rabbitmq"
	sessionservice "github.com/grmlvv/video-hosting/internal/services/session"
	subservice "github.com/grmlvv/video-hosting/internal/services/subscription"
	"github.com/grmlvv/video-hosting/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	mediaStore, err := media.NewStore(ctx, cfg.Media)
	if err != nil {
		return nil, err
	}

	// Брокер опционален: без него подписки работают, уведомления не шлются.
	var events subservice.EventPublisher
	if cfg.RabbitURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitDelay)
		if err != nil {
			logger.Warn("rabbitmq unavailable, notifications disabled", sl.Err(err))
		} else {
			ch, err := rabbitmq.SetupChannel(conn)
			if err != nil {
				logger.Warn("rabbitmq channel setup failed, notifications disabled", sl.Err(err))
			} else {
				events = rabbitmq.NewNotificationPublisher(ch)
			}
		}
	}

	tokens := jwt.NewMaker(cfg.AccessSecretKey, cfg.RefreshSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	sessionService := sessionservice.NewSessionService(db, mediaStore, tokens, logger)
	subscriptionService := subservice.NewSubscriptionService(db, db, cacheRedis, events, cfg.AllowSelfSubscribe, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, cfg, tokens, db, sessionService, subscriptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		return err
	}
}
