package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken(&domain.User{ID: "u1", Role: domain.RoleStaff})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RoleStaff, claims.Role)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	token, _, err := tm.GenerateToken(&domain.User{ID: "u1", Role: domain.RoleUser})
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "hunter22"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func newTestApp(t *testing.T) (*fiber.App, *TokenManager) {
	t.Helper()
	repos := memory.NewRepositories()
	ctx := context.Background()
	require.NoError(t, repos.Users.Create(ctx, &domain.User{ID: "user", Email: "u@example.com", Role: domain.RoleUser, Active: true}))
	require.NoError(t, repos.Users.Create(ctx, &domain.User{ID: "admin", Email: "a@example.com", Role: domain.RoleAdmin, Active: true}))
	require.NoError(t, repos.Users.Create(ctx, &domain.User{ID: "gone", Email: "g@example.com", Role: domain.RoleAdmin, Active: false}))

	tm := NewTokenManager("secret", 5)
	mw := NewAuthMiddleware(tm, repos.Users)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(errorutil.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.UserID)
	})
	return app, tm
}

func TestMiddlewareAndRoles(t *testing.T) {
	app, tm := newTestApp(t)
	tokenFor := func(id string, role domain.Role) string {
		token, _, err := tm.GenerateToken(&domain.User{ID: id, Role: role})
		require.NoError(t, err)
		return "Bearer " + token
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: fiber.StatusUnauthorized},
		{name: "malformed", header: "Token abc", want: fiber.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: fiber.StatusUnauthorized},
		{name: "unknown user", header: tokenFor("ghost", domain.RoleAdmin), want: fiber.StatusUnauthorized},
		{name: "disabled", header: tokenFor("gone", domain.RoleAdmin), want: fiber.StatusUnauthorized},
		// role comes from the stored account, not the token
		{name: "forged role", header: tokenFor("user", domain.RoleAdmin), want: fiber.StatusForbidden},
		{name: "admin", header: tokenFor("admin", domain.RoleAdmin), want: fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
