package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/db"
	"github.com/projectbuddy/projectbuddy/internal/auth"
	"github.com/projectbuddy/projectbuddy/internal/authz"
	"github.com/projectbuddy/projectbuddy/internal/config"
	"github.com/projectbuddy/projectbuddy/internal/events"
	"github.com/projectbuddy/projectbuddy/internal/handlers"
	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/projectbuddy/projectbuddy/internal/middleware"
	"github.com/projectbuddy/projectbuddy/internal/repository"
	"github.com/projectbuddy/projectbuddy/internal/router"
	"github.com/projectbuddy/projectbuddy/internal/services"
)

func main() {
	config.LoadDotEnvs()

	cfg, err := config.Load()

	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load configuration")
	}

	logger.Init(cfg.Log.Level, cfg.IsProduction())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		logger.Log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config) error {
	database, err := db.Connect(cfg.Database.DSN, cfg.Database.LogLevel)

	if err != nil {
		return err
	}

	if err := db.Migrate(database); err != nil {
		return err
	}

	sqlDB, err := database.DB()

	if err != nil {
		return err
	}
	defer sqlDB.Close()

	policy, err := authz.NewPolicy()

	if err != nil {
		return err
	}

	if err := middleware.RegisterValidators(); err != nil {
		return err
	}

	users := repository.NewUserRepository(database)
	connections := repository.NewConnectionRepository(database)
	teams := repository.NewTeamRepository(database)
	projects := repository.NewProjectRepository(database)

	bus := events.NewBus()
	defer bus.Close()

	hub := handlers.NewHub(cfg.Origins())
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)

	svc := handlers.Services{
		Users:       services.NewUserService(users, tokens),
		Connections: services.NewConnectionService(connections, users, bus),
		Teams:       services.NewTeamService(teams, users, policy, bus),
		Projects:    services.NewProjectService(projects, teams, users, policy, bus),
		Posts: services.NewPostService(
			repository.NewPostRepository(database),
			repository.NewInteractionRepository(database),
			repository.NewGraphRepository(database),
			teams,
			projects,
			bus,
		),
		Notifications: services.NewNotificationService(
			repository.NewNotificationRepository(database),
			teams,
			hub,
			services.NewWebhookNotifier(cfg.Webhook.Timeout),
		),
		Messages: services.NewMessageService(repository.NewMessageRepository(database), connections, bus),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := bus.Consume(ctx, svc.Notifications.Deliver); err != nil {
			logger.Log.WithError(err).Error("notification consumer stopped")
		}
	}()

	h := handlers.New(svc, hub, sqlDB, handlers.CookieConfig{
		Domain: cfg.Server.CookieDomain,
		Secure: cfg.IsProduction(),
	})

	r := router.NewRouter(h, middleware.NewAuthenticator(tokens, users), router.Options{
		AllowedOrigins: cfg.Origins(),
		AuthPerMinute:  cfg.RateLimit.AuthPerMinute,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Log.WithField("port", cfg.Server.Port).Info("server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
