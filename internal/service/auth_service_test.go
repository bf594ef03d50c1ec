package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, token, _, err := f.auth.Register(ctx, RegisterInput{
		Name:         "Dana",
		Email:        "  Dana@Example.com ",
		Password:     "correct horse",
		DepartmentID: strPtr("hr"),
	})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	claims, err := f.auth.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, _, err = f.auth.Register(ctx, RegisterInput{Name: "Dup", Email: "dana@example.com", Password: "whatever1"})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeConflict))

	_, _, _, err = f.auth.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "whatever1", DepartmentID: strPtr("nope")})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeReferenceNotFound))

	logged, _, _, err := f.auth.Login(ctx, "DANA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, _, _, err = f.auth.Login(ctx, "dana@example.com", "wrong")
	assert.True(t, errorutil.HasCode(err, errorutil.CodeUnauthorized))
	_, _, _, err = f.auth.Login(ctx, "nobody@example.com", "wrong")
	assert.True(t, errorutil.HasCode(err, errorutil.CodeUnauthorized))
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	staff := domain.RoleStaff
	updated, err := f.auth.UpdateAccount(ctx, "alice", AccountUpdate{Role: &staff, TeamID: strPtr("desk")})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, updated.Role)
	assert.Equal(t, "desk", *updated.TeamID)
	assert.Equal(t, "it", *updated.DepartmentID)

	bogus := domain.Role("ROOT")
	_, err = f.auth.UpdateAccount(ctx, "alice", AccountUpdate{Role: &bogus})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeValidation))

	_, err = f.auth.UpdateAccount(ctx, "ghost", AccountUpdate{Role: &staff})
	assert.True(t, errorutil.HasCode(err, errorutil.CodeNotFound))

	inactive := false
	_, err = f.auth.UpdateAccount(ctx, "carol", AccountUpdate{Active: &inactive})
	require.NoError(t, err)
	exists, err := f.auth.UserExists(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, exists, "deactivated accounts still resolve as references")

	_, _, _, err = f.auth.Login(ctx, "carol@example.com", "anything")
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeUnauthorized))
	assert.Contains(t, err.Error(), "disabled")
}

func TestUpdateAccountClearsPlacement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	updated, err := f.auth.UpdateAccount(ctx, "bob", AccountUpdate{ClearTeam: true})
	require.NoError(t, err)
	assert.Nil(t, updated.TeamID)
	assert.Equal(t, "it", *updated.DepartmentID)

	updated, err = f.auth.UpdateAccount(ctx, "bob", AccountUpdate{ClearDepartment: true, DepartmentID: strPtr("hr")})
	require.NoError(t, err)
	assert.Nil(t, updated.DepartmentID, "clearing wins over a new id")

	stored, err := f.auth.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, stored.DepartmentID)
	assert.Nil(t, stored.TeamID)
}

func TestIdentityProvider(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	exists, err := f.auth.UserExists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = f.auth.UserExists(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)

	dept, err := f.auth.UserDepartment(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "it", *dept)
	team, err := f.auth.UserTeam(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "desk", *team)
}
