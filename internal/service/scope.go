package service

import (
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// View names a role-scoped ticket listing.
type View string

const (
	ViewMine       View = "mine"
	ViewAssigned   View = "assigned"
	ViewDepartment View = "department"
	ViewAll        View = "all"
)

// ParseView maps a query parameter onto a View; empty means mine.
func ParseView(raw string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ViewMine:
		return ViewMine, nil
	case ViewAssigned:
		return ViewAssigned, nil
	case ViewDepartment:
		return ViewDepartment, nil
	case ViewAll:
		return ViewAll, nil
	}
	return "", errorutil.NewValidationError("unknown ticket view", map[string]any{"view": raw})
}

// ScopeFilter narrows base to what principal may see through view. It never
// widens: scope fields overwrite whatever the caller put in base.
func ScopeFilter(principal domain.Principal, view View, base repository.TicketFilter) (repository.TicketFilter, error) {
	scoped := base
	self := principal.UserID

	switch view {
	case ViewMine:
		scoped.RequesterID = &self
		return scoped, nil
	case ViewAssigned:
		if !principal.Role.IsStaffOrAdmin() {
			return scoped, errorutil.NewForbidden("assigned view requires staff role")
		}
		scoped.AssigneeID = &self
		return scoped, nil
	case ViewDepartment:
		if !principal.Role.IsStaffOrAdmin() {
			return scoped, errorutil.NewForbidden("department view requires staff role")
		}
		if principal.DepartmentID == nil {
			return scoped, errorutil.NewValidationError("caller has no department", nil)
		}
		dept := *principal.DepartmentID
		scoped.DepartmentID = &dept
		return scoped, nil
	case ViewAll:
		switch principal.Role {
		case domain.RoleAdmin:
			return scoped, nil
		case domain.RoleStaff:
			if principal.DepartmentID != nil {
				dept := *principal.DepartmentID
				scoped.DepartmentID = &dept
			} else {
				scoped.AssigneeID = &self
			}
			return scoped, nil
		default:
			scoped.RequesterID = &self
			return scoped, nil
		}
	}
	return scoped, errorutil.NewValidationError("unknown ticket view", map[string]any{"view": string(view)})
}

// CanViewTicket reports whether principal may read ticket.
func CanViewTicket(principal domain.Principal, ticket *domain.Ticket) bool {
	switch principal.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleStaff:
		if ticket.RequesterID == principal.UserID {
			return true
		}
		if ticket.AssigneeID != nil && *ticket.AssigneeID == principal.UserID {
			return true
		}
		return sameID(principal.TeamID, ticket.TeamID) || sameID(principal.DepartmentID, ticket.DepartmentID)
	default:
		return ticket.RequesterID == principal.UserID
	}
}
