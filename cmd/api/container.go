package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// container holds the process-wide dependency graph shared by every command.
type container struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
	redis  *persistence.Redis
	repos  repository.Repositories

	dispatcher    events.Dispatcher
	workflow      *service.Workflow
	auth          *service.AuthService
	reference     *service.ReferenceService
	lifecycle     *service.LifecycleService
	queries       *service.QueryService
	comments      *service.CommentService
	analytics     *service.AnalyticsService
	notifications *service.NotificationService
	chat          *service.ChatService
	seeder        *service.SeedService
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, logger, nil
}

func newContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*container, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	c := &container{
		cfg:    cfg,
		logger: logger,
		pg:     pg,
		redis:  persistence.NewRedis(cfg.Redis, logger),
		repos:  buildRepositories(pg),
	}
	c.buildServices()
	return c, nil
}

// buildRepositories returns Postgres repositories, or the in-memory set when
// no DSN is configured.
func buildRepositories(pg *persistence.Postgres) repository.Repositories {
	if !pg.Enabled() {
		return memory.NewRepositories()
	}
	return repository.NewPostgresRepositories(pg.PoolHandle())
}

func (c *container) buildServices() {
	repos, cfg, logger := c.repos, c.cfg, c.logger

	c.dispatcher = events.NewInMemoryDispatcher(logger)
	c.workflow = service.NewWorkflow(repos.Reference, cfg.Workflow, logger)
	c.auth = service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:       repos.Users,
		DepartmentRepo: repos.Departments,
		TeamRepo:       repos.Teams,
		Logger:         logger,
	})
	c.reference = service.NewReferenceService(service.ReferenceDependencies{
		ReferenceRepo:  repos.Reference,
		DepartmentRepo: repos.Departments,
		TeamRepo:       repos.Teams,
	})
	router := service.NewRouter(cfg.Workflow, service.RouterDependencies{
		Identity:  c.auth,
		Reference: repos.Reference,
		Teams:     repos.Teams,
		Tickets:   repos.Tickets,
	})
	c.lifecycle = service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo:        repos.Tickets,
		ReferenceRepo:     repos.Reference,
		CommentRepo:       repos.Comments,
		AttachmentRepo:    repos.Attachments,
		HistoryRepo:       repos.History,
		Identity:          c.auth,
		Workflow:          c.workflow,
		Router:            router,
		Dispatcher:        c.dispatcher,
		Logger:            logger,
		MaxNumberAttempts: cfg.Workflow.TicketNumberMaxRetries,
	})
	c.queries = service.NewQueryService(repos.Tickets)
	c.comments = service.NewCommentService(service.CommentDependencies{
		TicketRepo:     repos.Tickets,
		CommentRepo:    repos.Comments,
		AttachmentRepo: repos.Attachments,
		Renderer:       service.NewMarkdownRenderer(),
		Dispatcher:     c.dispatcher,
	})

	var cache service.MetricsCache
	if c.redis.Enabled() {
		cache = persistence.NewMetricsCache(c.redis)
	}
	c.analytics = service.NewAnalyticsService(service.AnalyticsDependencies{
		TicketRepo:     repos.Tickets,
		ReferenceRepo:  repos.Reference,
		DepartmentRepo: repos.Departments,
		Cache:          cache,
		TTL:            cfg.Workflow.AnalyticsCacheTTL(),
		Logger:         logger,
	})

	var mailer service.Mailer
	if m := service.NewSMTPMailer(cfg.Notification); m != nil {
		mailer = m
	}
	c.notifications = service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:       c.dispatcher,
		UserRepo:         repos.Users,
		TicketRepo:       repos.Tickets,
		NotificationRepo: repos.Notifications,
		Mailer:           mailer,
		Logger:           logger,
		Config:           cfg.Notification,
	})
	c.chat = service.NewChatService(service.ChatDependencies{
		TicketRepo: repos.Tickets,
		ChatRepo:   repos.Chat,
	})
	c.seeder = service.NewSeedService(c.reference, c.auth, c.workflow, cfg.Auth, cfg.Workflow, logger)
}

func (c *container) Close() {
	c.redis.Close()
	c.pg.Close()
}
