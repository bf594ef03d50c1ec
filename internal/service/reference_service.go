package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ReferenceService serves dropdown data and admin maintenance of it.
type ReferenceService struct {
	reference   repository.ReferenceRepository
	departments repository.DepartmentRepository
	teams       repository.TeamRepository
	now         func() time.Time
}

// ReferenceDependencies bundles repositories.
type ReferenceDependencies struct {
	ReferenceRepo  repository.ReferenceRepository
	DepartmentRepo repository.DepartmentRepository
	TeamRepo       repository.TeamRepository
	Clock          func() time.Time
}

// NewReferenceService constructs the service.
func NewReferenceService(deps ReferenceDependencies) *ReferenceService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ReferenceService{
		reference:   deps.ReferenceRepo,
		departments: deps.DepartmentRepo,
		teams:       deps.TeamRepo,
		now:         clock,
	}
}

// ListCategories returns every category, including child categories, by name.
func (s *ReferenceService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	items, err := s.reference.ListCategories(ctx)
	return items, storeError(err, "category", nil)
}

// ListPriorities returns priorities in their configured sort order.
func (s *ReferenceService) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	items, err := s.reference.ListPriorities(ctx)
	return items, storeError(err, "priority", nil)
}

// ListStatuses returns every ticket status.
func (s *ReferenceService) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	items, err := s.reference.ListStatuses(ctx)
	return items, storeError(err, "status", nil)
}

// ListDepartments returns active departments only.
func (s *ReferenceService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	items, err := s.departments.ListActive(ctx)
	return items, storeError(err, "department", nil)
}

// ListTeams returns active teams only.
func (s *ReferenceService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	items, err := s.teams.ListActive(ctx)
	return items, storeError(err, "team", nil)
}

// CreateCategory adds a category; parent and default team must exist.
func (s *ReferenceService) CreateCategory(ctx context.Context, name, description string, parentID, defaultTeamID *string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errorutil.NewValidationError("category name is required", map[string]any{"name": "required"})
	}
	if parentID != nil {
		if _, err := s.reference.GetCategory(ctx, *parentID); err != nil {
			return nil, referenceError(err, "parent category", map[string]any{"parent_id": *parentID})
		}
	}
	if defaultTeamID != nil {
		if _, err := s.teams.GetByID(ctx, *defaultTeamID); err != nil {
			return nil, referenceError(err, "team", map[string]any{"default_team_id": *defaultTeamID})
		}
	}
	category := &domain.Category{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   strings.TrimSpace(description),
		ParentID:      copyOptional(parentID),
		DefaultTeamID: copyOptional(defaultTeamID),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.reference.CreateCategory(ctx, category); err != nil {
		return nil, storeError(err, "category", map[string]any{"name": name})
	}
	return category, nil
}

// SetCategoryParent re-parents a category, rejecting any change that would
// create a cycle in the parent chain.
func (s *ReferenceService) SetCategoryParent(ctx context.Context, categoryID string, parentID *string) error {
	if _, err := s.reference.GetCategory(ctx, categoryID); err != nil {
		return storeError(err, "category", map[string]any{"category_id": categoryID})
	}
	if parentID != nil {
		seen := map[string]bool{categoryID: true}
		next := parentID
		for next != nil {
			if seen[*next] {
				return errorutil.NewValidationError("category parent would create a cycle",
					map[string]any{"category_id": categoryID, "parent_id": *parentID})
			}
			seen[*next] = true
			parent, err := s.reference.GetCategory(ctx, *next)
			if err != nil {
				return referenceError(err, "parent category", map[string]any{"parent_id": *next})
			}
			next = parent.ParentID
		}
	}
	return storeError(s.reference.UpdateCategoryParent(ctx, categoryID, parentID), "category",
		map[string]any{"category_id": categoryID})
}

// CreatePriority adds a priority level.
func (s *ReferenceService) CreatePriority(ctx context.Context, name string, responseHours, resolutionHours, sortOrder int) (*domain.Priority, error) {
	name = strings.TrimSpace(name)
	details := map[string]any{}
	if name == "" {
		details["name"] = "required"
	}
	if responseHours <= 0 {
		details["response_sla_hours"] = "must be positive"
	}
	if resolutionHours <= 0 {
		details["resolution_sla_hours"] = "must be positive"
	}
	if len(details) > 0 {
		return nil, errorutil.NewValidationError("invalid priority", details)
	}
	priority := &domain.Priority{
		ID:                 uuid.NewString(),
		Name:               name,
		ResponseSLAHours:   responseHours,
		ResolutionSLAHours: resolutionHours,
		SortOrder:          sortOrder,
	}
	if err := s.reference.CreatePriority(ctx, priority); err != nil {
		return nil, storeError(err, "priority", map[string]any{"name": name})
	}
	return priority, nil
}

// CreateStatus adds a workflow status.
func (s *ReferenceService) CreateStatus(ctx context.Context, name string, isFinal bool, sortOrder int) (*domain.Status, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errorutil.NewValidationError("status name is required", map[string]any{"name": "required"})
	}
	status := &domain.Status{ID: uuid.NewString(), Name: name, IsFinal: isFinal, SortOrder: sortOrder}
	if err := s.reference.CreateStatus(ctx, status); err != nil {
		return nil, storeError(err, "status", map[string]any{"name": name})
	}
	return status, nil
}

// CreateDepartment adds an active department.
func (s *ReferenceService) CreateDepartment(ctx context.Context, name, description string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errorutil.NewValidationError("department name is required", map[string]any{"name": "required"})
	}
	now := s.now().UTC()
	dept := &domain.Department{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, storeError(err, "department", map[string]any{"name": name})
	}
	return dept, nil
}

// CreateTeam adds an active team, optionally under a department.
func (s *ReferenceService) CreateTeam(ctx context.Context, name, description string, departmentID, leadID *string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errorutil.NewValidationError("team name is required", map[string]any{"name": "required"})
	}
	if departmentID != nil {
		if _, err := s.departments.GetByID(ctx, *departmentID); err != nil {
			return nil, referenceError(err, "department", map[string]any{"department_id": *departmentID})
		}
	}
	now := s.now().UTC()
	team := &domain.Team{
		ID:           uuid.NewString(),
		DepartmentID: copyOptional(departmentID),
		Name:         name,
		Description:  strings.TrimSpace(description),
		LeadID:       copyOptional(leadID),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, storeError(err, "team", map[string]any{"name": name})
	}
	return team, nil
}
