package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	wfCfg := defaultWorkflowConfig()
	authCfg := config.AuthConfig{
		JWTSecret:              "test-secret",
		BcryptCost:             4,
		BootstrapAdminEmail:    "root@example.com",
		BootstrapAdminPassword: "change-me-now",
	}

	workflow := NewWorkflow(repos.Reference, wfCfg, nil)
	require.NoError(t, workflow.Reload(ctx))
	_, err := workflow.OpenStatusID()
	require.Error(t, err, "empty store has no anchors")

	reference := NewReferenceService(ReferenceDependencies{
		ReferenceRepo:  repos.Reference,
		DepartmentRepo: repos.Departments,
		TeamRepo:       repos.Teams,
	})
	accounts := NewAuthService(authCfg, AuthDependencies{
		UserRepo:       repos.Users,
		DepartmentRepo: repos.Departments,
		TeamRepo:       repos.Teams,
	})
	seeder := NewSeedService(reference, accounts, workflow, authCfg, wfCfg, nil)

	first, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Statuses)
	assert.Equal(t, 4, first.Priorities)
	assert.Equal(t, 4, first.Categories)
	assert.Equal(t, 6, first.Departments)
	assert.NotEmpty(t, first.AdminID)

	openID, err := workflow.OpenStatusID()
	require.NoError(t, err)
	resolvedID, err := workflow.ResolvedStatusID()
	require.NoError(t, err)
	assert.NotEqual(t, openID, resolvedID)

	second, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, second)

	statuses, err := reference.ListStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 5)
	finals := 0
	for _, st := range statuses {
		if st.IsFinal {
			finals++
		}
	}
	assert.Equal(t, 2, finals)

	admin, err := repos.Users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
}
