package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// IdentityProvider is what routing needs to know about accounts.
type IdentityProvider interface {
	UserExists(ctx context.Context, id string) (bool, error)
	UserDepartment(ctx context.Context, id string) (*string, error)
	UserTeam(ctx context.Context, id string) (*string, error)
}

// Route is the initial placement of a new ticket.
type Route struct {
	DepartmentID *string
	TeamID       *string
}

// Router decides default placement, validates assignees and allocates ticket numbers.
type Router struct {
	identity          IdentityProvider
	reference         repository.ReferenceRepository
	teams             repository.TeamRepository
	tickets           repository.TicketRepository
	applyCategoryTeam bool
	enforceScope      bool
}

// RouterDependencies bundles the router's collaborators.
type RouterDependencies struct {
	Identity  IdentityProvider
	Reference repository.ReferenceRepository
	Teams     repository.TeamRepository
	Tickets   repository.TicketRepository
}

// NewRouter constructs the router.
func NewRouter(cfg config.WorkflowConfig, deps RouterDependencies) *Router {
	return &Router{
		identity:          deps.Identity,
		reference:         deps.Reference,
		teams:             deps.Teams,
		tickets:           deps.Tickets,
		applyCategoryTeam: cfg.ApplyCategoryTeam,
		enforceScope:      cfg.EnforceAssigneeScope,
	}
}

// RouteNewTicket inherits the requester's department. When category teams are
// enabled, the category's default team is applied and, if the requester has no
// department, the team's department fills in.
func (r *Router) RouteNewTicket(ctx context.Context, requesterID string, category *domain.Category) (Route, error) {
	var route Route

	dept, err := r.identity.UserDepartment(ctx, requesterID)
	if err != nil {
		return route, storeError(err, "user", map[string]any{"user_id": requesterID})
	}
	route.DepartmentID = dept

	if !r.applyCategoryTeam || category == nil || category.DefaultTeamID == nil {
		return route, nil
	}
	team, err := r.teams.GetByID(ctx, *category.DefaultTeamID)
	if err != nil {
		return route, storeError(err, "team", map[string]any{"team_id": *category.DefaultTeamID})
	}
	if !team.IsActive {
		return route, nil
	}
	teamID := team.ID
	route.TeamID = &teamID
	if route.DepartmentID == nil && team.DepartmentID != nil {
		deptID := *team.DepartmentID
		route.DepartmentID = &deptID
	}
	return route, nil
}

// ValidateAssignee checks that the target account exists. Cross-team
// assignment is accepted unless scope enforcement is switched on.
func (r *Router) ValidateAssignee(ctx context.Context, ticket *domain.Ticket, assigneeID string) error {
	details := map[string]any{"assignee_id": assigneeID}
	exists, err := r.identity.UserExists(ctx, assigneeID)
	if err != nil {
		return storeError(err, "user", details)
	}
	if !exists {
		return errorutil.NewReferenceNotFound("user", details)
	}
	if !r.enforceScope {
		return nil
	}
	if ticket.TeamID == nil && ticket.DepartmentID == nil {
		return nil
	}

	team, err := r.identity.UserTeam(ctx, assigneeID)
	if err != nil {
		return storeError(err, "user", details)
	}
	dept, err := r.identity.UserDepartment(ctx, assigneeID)
	if err != nil {
		return storeError(err, "user", details)
	}
	if sameID(ticket.TeamID, team) || sameID(ticket.DepartmentID, dept) {
		return nil
	}
	return errorutil.NewValidationError("assignee is outside the ticket's team and department", details)
}

// NextTicketNumber allocates INC<YYYYMMDD><seq> from the atomic per-day counter.
func (r *Router) NextTicketNumber(ctx context.Context, now time.Time) (string, error) {
	day := now.UTC().Format("20060102")
	seq, err := r.tickets.NextSequence(ctx, day)
	if err != nil {
		return "", errorutil.NewInternalError(err)
	}
	return fmt.Sprintf("%s%s%03d", domain.TicketNumberPrefix, day, seq), nil
}

func sameID(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
