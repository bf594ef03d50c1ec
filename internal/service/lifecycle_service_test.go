package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestTicketLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ticket := f.createTicket(t)
	assert.Equal(t, "INC20250310001", ticket.Number)
	assert.Equal(t, "open", ticket.StatusID)
	require.NotNil(t, ticket.DepartmentID)
	assert.Equal(t, "it", *ticket.DepartmentID)
	assert.Nil(t, ticket.TeamID)
	assert.Nil(t, ticket.AssigneeID)
	assert.Equal(t, 1, ticket.Version)

	assigned, err := f.lifecycle.Assign(ctx, "admin", ticket.ID, strPtr("bob"))
	require.NoError(t, err)
	require.NotNil(t, assigned.AssigneeID)
	assert.Equal(t, "bob", *assigned.AssigneeID)
	assert.Equal(t, "open", assigned.StatusID, "assignment leaves status alone")

	f.clock.Advance(2 * time.Hour)
	resolved, err := f.lifecycle.Resolve(ctx, "bob", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "resolved", resolved.StatusID)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, baseTime.Add(2*time.Hour), *resolved.ResolvedAt)
	assert.Nil(t, resolved.ClosedAt)

	f.clock.Advance(time.Hour)
	reopened, err := f.lifecycle.Reopen(ctx, "alice", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "open", reopened.StatusID)
	assert.Nil(t, reopened.ResolvedAt)
	assert.Nil(t, reopened.ClosedAt)
	assert.Equal(t, 4, reopened.Version)

	history, err := f.lifecycle.History(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.ChangeTypeCreated, history[0].ChangeType)
	assert.Equal(t, domain.ChangeTypeAssignee, history[1].ChangeType)
	assert.Equal(t, domain.ChangeTypeStatus, history[2].ChangeType)
	assert.Equal(t, "resolved", history[2].NewValue["status_id"])
	assert.Equal(t, domain.ChangeTypeStatus, history[3].ChangeType)

	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketResolved,
		events.EventTicketReopened,
	}, f.events.Types())
}

func TestCreateTicketValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateTicketInput)
		code   string
	}{
		{"blank title", func(in *CreateTicketInput) { in.Title = "   " }, errorutil.CodeValidation},
		{"blank description", func(in *CreateTicketInput) { in.Description = "\t" }, errorutil.CodeValidation},
		{"title too long", func(in *CreateTicketInput) { in.Title = strings.Repeat("a", 201) }, errorutil.CodeValidation},
		{"due yesterday", func(in *CreateTicketInput) {
			due := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
			in.DueBy = &due
		}, errorutil.CodeValidation},
		{"unknown category", func(in *CreateTicketInput) { in.CategoryID = "nope" }, errorutil.CodeReferenceNotFound},
		{"unknown priority", func(in *CreateTicketInput) { in.PriorityID = "nope" }, errorutil.CodeReferenceNotFound},
		{"unknown requester", func(in *CreateTicketInput) { in.RequesterID = "ghost" }, errorutil.CodeReferenceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := printerJam()
			tt.mutate(&input)
			_, err := f.lifecycle.CreateTicket(ctx, input)
			require.Error(t, err)
			assert.True(t, errorutil.HasCode(err, tt.code), "got %v", err)
		})
	}

	page, err := f.queries.Query(ctx, repository.TicketFilter{}, repository.Page{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount, "failed creates must not persist")
}

func TestCreateTicketTrimsAndAcceptsDueToday(t *testing.T) {
	f := newFixture(t)
	input := printerJam()
	input.Title = "  Printer jam  "
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	input.DueBy = &due

	ticket, err := f.lifecycle.CreateTicket(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Printer jam", ticket.Title)
	require.NotNil(t, ticket.DueBy)
	assert.True(t, ticket.DueBy.Equal(due))
}

func TestCreateTicketAppliesCategoryTeamWhenEnabled(t *testing.T) {
	off := newFixture(t)
	ticket := off.createTicket(t)
	assert.Nil(t, ticket.TeamID)

	on := newFixture(t, withCategoryTeams())
	ticket = on.createTicket(t)
	require.NotNil(t, ticket.TeamID)
	assert.Equal(t, "desk", *ticket.TeamID)
	require.NotNil(t, ticket.DepartmentID)
	assert.Equal(t, "it", *ticket.DepartmentID)
}

func TestConcurrentCreatesGetUniqueNumbers(t *testing.T) {
	f := newFixture(t)
	const workers = 50

	var wg sync.WaitGroup
	numbers := make(chan string, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, err := f.lifecycle.CreateTicket(context.Background(), printerJam())
			if err != nil {
				errs <- err
				return
			}
			numbers <- ticket.Number
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("create failed: %v", err)
	}
	seen := map[string]bool{}
	for n := range numbers {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, seen["INC20250310001"])
	assert.True(t, seen[fmt.Sprintf("INC20250310%03d", workers)])
}

// collidingTickets fails the first n creates with a number collision.
type collidingTickets struct {
	repository.TicketRepository
	mu        sync.Mutex
	remaining int
	attempts  int
}

func (c *collidingTickets) Create(ctx context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error {
	c.mu.Lock()
	c.attempts++
	if c.remaining > 0 {
		c.remaining--
		c.mu.Unlock()
		return repository.ErrDuplicateTicketNumber
	}
	c.mu.Unlock()
	return c.TicketRepository.Create(ctx, ticket, history...)
}

func TestCreateTicketRetriesNumberCollisions(t *testing.T) {
	tests := []struct {
		name       string
		collisions int
		wantErr    bool
		wantTries  int
	}{
		{"succeeds on third attempt", 2, false, 3},
		{"gives up after three attempts", 3, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := memory.NewRepositories()
			seedReference(t, repos)
			colliding := &collidingTickets{TicketRepository: repos.Tickets, remaining: tt.collisions}
			repos.Tickets = colliding
			f := buildFixture(t, repos, defaultWorkflowConfig())

			ticket, err := f.lifecycle.CreateTicket(context.Background(), printerJam())
			assert.Equal(t, tt.wantTries, colliding.attempts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errorutil.HasCode(err, errorutil.CodeDuplicateNumber))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "INC20250310003", ticket.Number)
		})
	}
}

func TestAssign(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		ticket := f.createTicket(t)
		_, err := f.lifecycle.Assign(ctx, "admin", ticket.ID, strPtr("ghost"))
		assert.True(t, errorutil.HasCode(err, errorutil.CodeReferenceNotFound))
	})

	t.Run("unknown ticket", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.lifecycle.Assign(ctx, "admin", "missing", strPtr("bob"))
		assert.True(t, errorutil.HasCode(err, errorutil.CodeNotFound))
	})

	t.Run("clear assignee", func(t *testing.T) {
		f := newFixture(t)
		ticket := f.createTicket(t)
		_, err := f.lifecycle.Assign(ctx, "admin", ticket.ID, strPtr("bob"))
		require.NoError(t, err)
		cleared, err := f.lifecycle.Assign(ctx, "admin", ticket.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, cleared.AssigneeID)
	})

	t.Run("cross department allowed by default", func(t *testing.T) {
		f := newFixture(t)
		ticket := f.createTicket(t)
		_, err := f.lifecycle.Assign(ctx, "admin", ticket.ID, strPtr("carol"))
		assert.NoError(t, err)
	})

	t.Run("cross department rejected with scope enforcement", func(t *testing.T) {
		f := newFixture(t, withAssigneeScope())
		ticket := f.createTicket(t)
		_, err := f.lifecycle.Assign(ctx, "admin", ticket.ID, strPtr("carol"))
		assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))

		_, err = f.lifecycle.Assign(ctx, "admin", ticket.ID, strPtr("bob"))
		assert.NoError(t, err)
	})
}

func TestChangeStatusFinalStamps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.createTicket(t)

	first, err := f.lifecycle.ChangeStatus(ctx, "bob", ticket.ID, "resolved")
	require.NoError(t, err)
	require.NotNil(t, first.ResolvedAt)
	assert.Equal(t, baseTime, *first.ResolvedAt)
	assert.Nil(t, first.ClosedAt)

	f.clock.Advance(time.Hour)
	again, err := f.lifecycle.ChangeStatus(ctx, "bob", ticket.ID, "resolved")
	require.NoError(t, err)
	assert.Equal(t, baseTime, *again.ResolvedAt, "resolved stamp is set once")

	f.clock.Advance(time.Hour)
	closed, err := f.lifecycle.ChangeStatus(ctx, "bob", ticket.ID, "closed")
	require.NoError(t, err)
	assert.Equal(t, baseTime, *closed.ResolvedAt)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, baseTime.Add(2*time.Hour), *closed.ClosedAt)

	back, err := f.lifecycle.ChangeStatus(ctx, "bob", ticket.ID, "progress")
	require.NoError(t, err)
	assert.NotNil(t, back.ResolvedAt, "leaving a final status keeps the stamp")

	_, err = f.lifecycle.ChangeStatus(ctx, "bob", ticket.ID, "nope")
	assert.True(t, errorutil.HasCode(err, errorutil.CodeReferenceNotFound))
}

func TestResolveAlwaysRestamps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.createTicket(t)

	_, err := f.lifecycle.Resolve(ctx, "bob", ticket.ID)
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)
	again, err := f.lifecycle.Resolve(ctx, "bob", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(30*time.Minute), *again.ResolvedAt)
}

func TestMissingAnchorIsConfigurationError(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	seedReference(t, repos)

	cfg := defaultWorkflowConfig()
	cfg.ResolvedStatus = "Done"
	core, logs := observer.New(zapcore.ErrorLevel)
	f := buildFixture(t, repos, cfg)
	f.workflow = NewWorkflow(repos.Reference, cfg, zap.New(core))
	require.NoError(t, f.workflow.Reload(ctx))
	f.lifecycle.workflow = f.workflow

	ticket := f.createTicket(t)
	before := ticket.StatusID

	_, err := f.lifecycle.Resolve(ctx, "bob", ticket.ID)
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeConfiguration))
	assert.Equal(t, 1, logs.Len())

	stored, err := f.lifecycle.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, before, stored.StatusID)
}

func TestCreateWithoutOpenAnchorFails(t *testing.T) {
	cfg := defaultWorkflowConfig()
	cfg.OpenStatus = "New"
	repos := memory.NewRepositories()
	seedReference(t, repos)
	f := buildFixture(t, repos, cfg)

	_, err := f.lifecycle.CreateTicket(context.Background(), printerJam())
	assert.True(t, errorutil.HasCode(err, errorutil.CodeConfiguration))
}

func TestUpdateTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.createTicket(t)

	updated, err := f.lifecycle.UpdateTicket(ctx, "bob", ticket.ID, UpdateTicketInput{
		Title:      strPtr(" Printer jam on floor 3 "),
		PriorityID: strPtr("low"),
		Version:    &ticket.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, "Printer jam on floor 3", updated.Title)
	assert.Equal(t, "low", updated.PriorityID)
	assert.Equal(t, 2, updated.Version)

	stale := 1
	_, err = f.lifecycle.UpdateTicket(ctx, "bob", ticket.ID, UpdateTicketInput{Title: strPtr("Other"), Version: &stale})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeConcurrency))

	_, err = f.lifecycle.UpdateTicket(ctx, "bob", ticket.ID, UpdateTicketInput{CategoryID: strPtr("nope")})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeReferenceNotFound))

	past := baseTime.Add(-48 * time.Hour)
	_, err = f.lifecycle.UpdateTicket(ctx, "bob", ticket.ID, UpdateTicketInput{DueBy: &past})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))

	same, err := f.lifecycle.UpdateTicket(ctx, "bob", ticket.ID, UpdateTicketInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, same.Version, "no-op edits do not bump the version")

	last := f.events.Events()[len(f.events.Events())-1]
	require.Equal(t, events.EventTicketUpdated, last.Type)
	assert.ElementsMatch(t, []string{"title", "priority_id"}, last.Payload.(events.TicketUpdatedPayload).Fields)
}

func TestStaleWriteIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.createTicket(t)

	first, err := f.repos.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	second, err := f.repos.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)

	first.Title = "first writer"
	require.NoError(t, f.repos.Tickets.Update(ctx, first))
	second.Title = "second writer"
	err = f.repos.Tickets.Update(ctx, second)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.True(t, errorutil.HasCode(storeError(err, "ticket", nil), errorutil.CodeConcurrency))
}

func TestDetailsAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.createTicket(t)

	_, err := f.comments.AddComment(ctx, domain.Principal{UserID: "alice", Role: domain.RoleUser}, ticket.ID, "Still jammed", false)
	require.NoError(t, err)

	f.clock.Advance(9 * time.Hour)
	details, err := f.lifecycle.Details(ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, "Hardware", details.Category.Name)
	assert.Equal(t, "Open", details.Status.Name)
	assert.Equal(t, 1, details.CommentCount)
	assert.True(t, details.SLABreached, "high priority resolves within 8h")

	byNumber, err := f.lifecycle.GetTicketByNumber(ctx, "inc20250310001")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, byNumber.ID)

	require.NoError(t, f.lifecycle.DeleteTicket(ctx, "admin", ticket.ID))
	_, err = f.lifecycle.GetTicket(ctx, ticket.ID)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeNotFound))
	assert.True(t, errorutil.HasCode(f.lifecycle.DeleteTicket(ctx, "admin", ticket.ID), errorutil.CodeNotFound))
}
