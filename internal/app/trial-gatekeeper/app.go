package trialgatekeeper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/config"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/events"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/migrations"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/predictor"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/sessions"
	authservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/auth"
	predictionservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/prediction"
	trialservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/trial"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	events *events.Publisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	sessionStore, err := sessions.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var publisher *events.Publisher
	var eventPublisher trialservice.EventPublisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		publisher, err = events.Connect(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", sl.Err(err))
		} else {
			eventPublisher = publisher
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, sessionStore, jwtMaker,
		authservice.EmailRoleResolver, cfg.TokenTTL, logger)
	trialService := trialservice.NewTrialService(db, eventPublisher, logger)
	predictionService := predictionservice.NewPredictionService(trialService,
		predictor.New(cfg.OpenAI), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, trialService, predictionService)

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
		events: publisher,
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
		if a.events != nil {
			_ = a.events.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
