// Package trialgatekeeper предоставляет маршруты для основного приложения.
package trialgatekeeper

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/handlers/admin/configread"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/handlers/admin/configupdate"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/handlers/admin/stats"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/handlers/admin/users"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/handlers/health"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/handlers/prediction/predict"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/auth"
	predictionservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/prediction"
	trialservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/trial"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	trialService *trialservice.TrialService,
	predictionService *predictionservice.PredictionService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с проверкой сессии
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger, authService).ServeHTTP)
			r.Get("/me", me.New(logger, trialService).ServeHTTP)
			r.Post("/predict", predict.New(logger, predictionService).ServeHTTP)

			// Административная поверхность
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Get("/config", configread.New(logger, trialService).ServeHTTP)
				r.Put("/config", configupdate.New(logger, trialService).ServeHTTP)
				r.Get("/stats", stats.New(logger, trialService).ServeHTTP)
				r.Get("/users", users.New(logger, trialService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
