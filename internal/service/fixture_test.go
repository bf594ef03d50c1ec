package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func strPtr(v string) *string { return &v }

// testClock is a settable clock shared by every service in a fixture.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	repos     repository.Repositories
	clock     *testClock
	events    *events.Recorder
	workflow  *Workflow
	auth      *AuthService
	lifecycle *LifecycleService
	queries   *QueryService
	comments  *CommentService
}

type fixtureOption func(*config.WorkflowConfig)

func withCategoryTeams() fixtureOption {
	return func(c *config.WorkflowConfig) { c.ApplyCategoryTeam = true }
}

func withAssigneeScope() fixtureOption {
	return func(c *config.WorkflowConfig) { c.EnforceAssigneeScope = true }
}

func defaultWorkflowConfig() config.WorkflowConfig {
	return config.WorkflowConfig{
		OpenStatus:             "Open",
		ResolvedStatus:         "Resolved",
		AnalyticsCacheTTLSecs:  30,
		TicketNumberMaxRetries: 3,
	}
}

// newFixture wires every service over a memory store seeded with:
// departments it/hr, team desk (it), users alice (USER, it), bob (STAFF, it, desk),
// carol (STAFF, hr), admin (ADMIN); category hw (default team desk) and sw;
// priorities high (8h) and low (72h); statuses open, progress, resolved*, closed*.
func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	seedReference(t, repos)

	cfg := defaultWorkflowConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return buildFixture(t, repos, cfg)
}

func buildFixture(t *testing.T, repos repository.Repositories, cfg config.WorkflowConfig) *fixture {
	t.Helper()
	clock := &testClock{now: baseTime}
	recorder := &events.Recorder{}

	workflow := NewWorkflow(repos.Reference, cfg, nil)
	require.NoError(t, workflow.Reload(context.Background()))

	authSvc := NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4},
		AuthDependencies{UserRepo: repos.Users, DepartmentRepo: repos.Departments, TeamRepo: repos.Teams, Clock: clock.Now})
	router := NewRouter(cfg, RouterDependencies{
		Identity:  authSvc,
		Reference: repos.Reference,
		Teams:     repos.Teams,
		Tickets:   repos.Tickets,
	})
	lifecycle := NewLifecycleService(LifecycleDependencies{
		TicketRepo:        repos.Tickets,
		ReferenceRepo:     repos.Reference,
		CommentRepo:       repos.Comments,
		AttachmentRepo:    repos.Attachments,
		HistoryRepo:       repos.History,
		Identity:          authSvc,
		Workflow:          workflow,
		Router:            router,
		Dispatcher:        recorder,
		Clock:             clock.Now,
		MaxNumberAttempts: cfg.TicketNumberMaxRetries,
	})
	comments := NewCommentService(CommentDependencies{
		TicketRepo:     repos.Tickets,
		CommentRepo:    repos.Comments,
		AttachmentRepo: repos.Attachments,
		Renderer:       NewMarkdownRenderer(),
		Dispatcher:     recorder,
		Clock:          clock.Now,
	})

	return &fixture{
		repos:     repos,
		clock:     clock,
		events:    recorder,
		workflow:  workflow,
		auth:      authSvc,
		lifecycle: lifecycle,
		queries:   NewQueryService(repos.Tickets),
		comments:  comments,
	}
}

func seedReference(t *testing.T, repos repository.Repositories) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repos.Departments.Create(ctx, &domain.Department{ID: "it", Name: "Information & Communication Technology", IsActive: true}))
	require.NoError(t, repos.Departments.Create(ctx, &domain.Department{ID: "hr", Name: "Human Resource", IsActive: true}))
	require.NoError(t, repos.Teams.Create(ctx, &domain.Team{ID: "desk", Name: "Service Desk", DepartmentID: strPtr("it"), IsActive: true}))

	users := []domain.User{
		{ID: "alice", Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser, DepartmentID: strPtr("it"), Active: true},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", Role: domain.RoleStaff, DepartmentID: strPtr("it"), TeamID: strPtr("desk"), Active: true},
		{ID: "carol", Name: "Carol", Email: "carol@example.com", Role: domain.RoleStaff, DepartmentID: strPtr("hr"), Active: true},
		{ID: "admin", Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Active: true},
	}
	for i := range users {
		require.NoError(t, repos.Users.Create(ctx, &users[i]))
	}

	require.NoError(t, repos.Reference.CreateCategory(ctx, &domain.Category{ID: "hw", Name: "Hardware", DefaultTeamID: strPtr("desk")}))
	require.NoError(t, repos.Reference.CreateCategory(ctx, &domain.Category{ID: "sw", Name: "Software"}))
	require.NoError(t, repos.Reference.CreatePriority(ctx, &domain.Priority{ID: "high", Name: "High", ResponseSLAHours: 1, ResolutionSLAHours: 8, SortOrder: 3}))
	require.NoError(t, repos.Reference.CreatePriority(ctx, &domain.Priority{ID: "low", Name: "Low", ResponseSLAHours: 24, ResolutionSLAHours: 72, SortOrder: 1}))
	require.NoError(t, repos.Reference.CreateStatus(ctx, &domain.Status{ID: "open", Name: "Open", SortOrder: 1}))
	require.NoError(t, repos.Reference.CreateStatus(ctx, &domain.Status{ID: "progress", Name: "In Progress", SortOrder: 2}))
	require.NoError(t, repos.Reference.CreateStatus(ctx, &domain.Status{ID: "resolved", Name: "Resolved", IsFinal: true, SortOrder: 4}))
	require.NoError(t, repos.Reference.CreateStatus(ctx, &domain.Status{ID: "closed", Name: "Closed", IsFinal: true, SortOrder: 5}))
}

func printerJam() CreateTicketInput {
	return CreateTicketInput{
		Title:       "Printer jam",
		Description: "Paper stuck in tray 2",
		CategoryID:  "hw",
		PriorityID:  "high",
		RequesterID: "alice",
	}
}

func (f *fixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.lifecycle.CreateTicket(context.Background(), printerJam())
	require.NoError(t, err)
	return ticket
}
