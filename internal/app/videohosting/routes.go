// Package videohosting предоставляет маршруты и запуск основного приложения.
package videohosting

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/grmlvv/video-hosting/internal/config"
	"github.com/grmlvv/video-hosting/internal/http/handlers/auth/changepassword"
	"github.com/grmlvv/video-hosting/internal/http/handlers/auth/login"
	"github.com/grmlvv/video-hosting/internal/http/handlers/auth/logout"
	"github.com/grmlvv/video-hosting/internal/http/handlers/auth/refresh"
	"github.com/grmlvv/video-hosting/internal/http/handlers/auth/register"
	"github.com/grmlvv/video-hosting/internal/http/handlers/channel/profile"
	"github.com/grmlvv/video-hosting/internal/http/handlers/channel/subscribed"
	"github.com/grmlvv/video-hosting/internal/http/handlers/channel/subscribers"
	"github.com/grmlvv/video-hosting/internal/http/handlers/channel/toggle"
	"github.com/grmlvv/video-hosting/internal/http/handlers/health"
	"github.com/grmlvv/video-hosting/internal/http/handlers/user/current"
	"github.com/grmlvv/video-hosting/internal/http/middlewarectx"
	"github.com/grmlvv/video-hosting/internal/lib/jwt"
	sessionservice "github.com/grmlvv/video-hosting/internal/services/session"
	subservice "github.com/grmlvv/video-hosting/internal/services/subscription"
	"github.com/grmlvv/video-hosting/internal/storage"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, tokens jwt.Maker, db *storage.Storage,
	sessionService *sessionservice.SessionService, subscriptionService *subservice.SubscriptionService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, sessionService, cfg.Media.MaxUploadSizeMB).ServeHTTP)
		r.Post("/login", login.New(logger, sessionService, cfg.SecureCookies, cfg.AccessTokenTTL, cfg.RefreshTokenTTL).ServeHTTP)
		r.Post("/refresh-token", refresh.New(logger, sessionService, cfg.SecureCookies, cfg.AccessTokenTTL, cfg.RefreshTokenTTL).ServeHTTP)
		r.Get("/healthz", health.New(logger, db).ServeHTTP)

		// Профиль канала доступен и анонимно, но учитывает смотрящего.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(tokens, logger))
			r.Get("/channels/{username}", profile.New(logger, subscriptionService).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokens, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger, sessionService, cfg.SecureCookies).ServeHTTP)
			r.Post("/change-password", changepassword.New(logger, sessionService).ServeHTTP)
			r.Get("/users/me", current.New(logger, sessionService).ServeHTTP)
			r.Post("/channels/{channelId}/subscription", toggle.New(logger, subscriptionService).ServeHTTP)
			r.Get("/channels/{channelId}/subscribers", subscribers.New(logger, subscriptionService).ServeHTTP)
			r.Get("/users/{subscriberId}/subscriptions", subscribed.New(logger, subscriptionService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
