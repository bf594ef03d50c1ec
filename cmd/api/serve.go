package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := newContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer c.Close()

	// The in-memory store starts empty on every boot.
	if !c.pg.Enabled() {
		if _, err := c.seeder.Seed(ctx); err != nil {
			logger.Error("seeding in-memory store failed", zap.Error(err))
			return err
		}
	}
	if err := c.workflow.Reload(ctx); err != nil {
		logger.Error("failed to load workflow statuses", zap.Error(err))
		return err
	}

	worker.StartNotificationWorker(c.notifications)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, c.pg, c.redis),
		Auth:           handlers.NewAuthHandler(c.auth),
		Tickets:        handlers.NewTicketsHandler(c.lifecycle, c.queries),
		Comments:       handlers.NewCommentsHandler(c.comments),
		Reference:      handlers.NewReferenceHandler(c.reference, c.workflow),
		Charts:         handlers.NewChartsHandler(c.analytics),
		Notifications:  handlers.NewNotificationsHandler(c.notifications),
		Chat:           handlers.NewChatHandler(c.chat),
		AuthMiddleware: auth.NewAuthMiddleware(c.auth.TokenManager(), c.repos.Users),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	return app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
