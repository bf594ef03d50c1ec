package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newReferenceService(f *fixture) *ReferenceService {
	return NewReferenceService(ReferenceDependencies{
		ReferenceRepo:  f.repos.Reference,
		DepartmentRepo: f.repos.Departments,
		TeamRepo:       f.repos.Teams,
		Clock:          f.clock.Now,
	})
}

func TestCategoryHierarchy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newReferenceService(f)

	printers, err := svc.CreateCategory(ctx, "Printers", "", strPtr("hw"), nil)
	require.NoError(t, err)
	laser, err := svc.CreateCategory(ctx, "Laser", "", &printers.ID, strPtr("desk"))
	require.NoError(t, err)

	err = svc.SetCategoryParent(ctx, "hw", &laser.ID)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation), "hw -> laser -> printers -> hw is a cycle")

	err = svc.SetCategoryParent(ctx, "hw", strPtr("hw"))
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))

	require.NoError(t, svc.SetCategoryParent(ctx, laser.ID, strPtr("sw")))
	require.NoError(t, svc.SetCategoryParent(ctx, laser.ID, nil))

	_, err = svc.CreateCategory(ctx, "Orphan", "", strPtr("missing"), nil)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeReferenceNotFound))
	_, err = svc.CreateCategory(ctx, " ", "", nil, nil)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))
}

func TestCreateReferenceData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newReferenceService(f)

	_, err := svc.CreatePriority(ctx, "Urgent", 0, 4, 5)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))
	_, err = svc.CreatePriority(ctx, "Urgent", 1, 4, 5)
	require.NoError(t, err)
	_, err = svc.CreatePriority(ctx, "Urgent", 1, 4, 6)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeConflict))

	priorities, err := svc.ListPriorities(ctx)
	require.NoError(t, err)
	require.Len(t, priorities, 3)
	assert.Equal(t, "Low", priorities[0].Name)
	assert.Equal(t, "Urgent", priorities[2].Name)

	_, err = svc.CreateStatus(ctx, "Pending", false, 3)
	require.NoError(t, err)
	statuses, err := svc.ListStatuses(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"Open", "In Progress", "Pending", "Resolved", "Closed"}, names)

	dept, err := svc.CreateDepartment(ctx, "Procurement", "")
	require.NoError(t, err)
	team, err := svc.CreateTeam(ctx, "Buyers", "", &dept.ID, strPtr("carol"))
	require.NoError(t, err)
	assert.Equal(t, dept.ID, *team.DepartmentID)

	_, err = svc.CreateTeam(ctx, "Ghosts", "", strPtr("missing"), nil)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeReferenceNotFound))
}

func TestReferenceListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newReferenceService(f)
	require.NoError(t, f.repos.Departments.Create(ctx, &domain.Department{ID: "old", Name: "Archive", IsActive: false}))
	require.NoError(t, f.repos.Teams.Create(ctx, &domain.Team{ID: "retired", Name: "Night Shift", IsActive: false}))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Hardware", categories[0].Name)

	departments, err := svc.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	for _, d := range departments {
		assert.NotEqual(t, "old", d.ID)
	}

	teams, err := svc.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "desk", teams[0].ID)
}
