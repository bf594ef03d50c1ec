package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type fakeCache struct {
	items   map[string]*domain.TicketMetrics
	ttls    map[string]time.Duration
	getErr  error
	gets    int
	setKeys []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]*domain.TicketMetrics{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (*domain.TicketMetrics, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	m, ok := c.items[key]
	return m, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, metrics *domain.TicketMetrics, ttl time.Duration) error {
	c.items[key] = metrics
	c.ttls[key] = ttl
	c.setKeys = append(c.setKeys, key)
	return nil
}

func newAnalytics(f *fixture, cache MetricsCache) *AnalyticsService {
	return NewAnalyticsService(AnalyticsDependencies{
		TicketRepo:     f.repos.Tickets,
		ReferenceRepo:  f.repos.Reference,
		DepartmentRepo: f.repos.Departments,
		Cache:          cache,
		Clock:          f.clock.Now,
	})
}

func TestMetricsKey(t *testing.T) {
	assert.Equal(t, "charts:metrics:user:bob", MetricsKey(bob))
	assert.Equal(t, "charts:metrics:global", MetricsKey(domain.Principal{UserID: "root", Role: domain.RoleAdmin}))
}

func TestTicketMetrics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.createTicket(t)
	f.createTicket(t)
	_, err := f.lifecycle.Resolve(ctx, "bob", first.ID)
	require.NoError(t, err)

	// A requester without a department lands in the Unknown bucket.
	input := printerJam()
	input.RequesterID = "admin"
	input.PriorityID = "low"
	_, err = f.lifecycle.CreateTicket(ctx, input)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Hour)
	cache := newFakeCache()
	svc := newAnalytics(f, cache)

	admin := domain.Principal{UserID: "admin", Role: domain.RoleAdmin}
	metrics, err := svc.TicketMetrics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, metrics.Total)
	assert.Equal(t, []domain.NamedCount{{Name: "Open", Count: 2}, {Name: "Resolved", Count: 1}}, metrics.ByStatus)
	assert.Equal(t, []domain.NamedCount{
		{Name: "Information & Communication Technology", Count: 2},
		{Name: "Unknown", Count: 1},
	}, metrics.ByDepartment)
	assert.Equal(t, 1, metrics.SLABreaches, "only the open high priority ticket is past 8h")
	assert.Equal(t, []string{"charts:metrics:global"}, cache.setKeys)
	assert.Equal(t, 30*time.Second, cache.ttls["charts:metrics:global"])

	again, err := svc.TicketMetrics(ctx, admin)
	require.NoError(t, err)
	assert.Same(t, metrics, again, "second call is served from cache")
	assert.Len(t, cache.setKeys, 1)

	staffMetrics, err := svc.TicketMetrics(ctx, carol)
	require.NoError(t, err)
	assert.Zero(t, staffMetrics.Total, "hr staff see only their department")
	assert.Contains(t, cache.setKeys, "charts:metrics:user:carol")
}

func TestTicketMetricsRequiresStaff(t *testing.T) {
	f := newFixture(t)
	_, err := newAnalytics(f, nil).TicketMetrics(context.Background(), alice)
	assert.True(t, errorutil.HasCode(err, errorutil.CodeForbidden))
}

func TestTicketMetricsSurvivesCacheFailure(t *testing.T) {
	f := newFixture(t)
	f.createTicket(t)
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")

	metrics, err := newAnalytics(f, cache).TicketMetrics(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Total)
	assert.Equal(t, 1, cache.gets)
}

func TestTicketMetricsNamesDeactivatedDepartments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.repos.Departments.Create(ctx, &domain.Department{ID: "legacy", Name: "Facilities", IsActive: false}))
	require.NoError(t, f.repos.Users.Create(ctx, &domain.User{
		ID: "dave", Name: "Dave", Email: "dave@example.com", Role: domain.RoleUser, DepartmentID: strPtr("legacy"), Active: true,
	}))
	input := printerJam()
	input.RequesterID = "dave"
	_, err := f.lifecycle.CreateTicket(ctx, input)
	require.NoError(t, err)

	metrics, err := newAnalytics(f, nil).TicketMetrics(ctx, domain.Principal{UserID: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, []domain.NamedCount{{Name: "Facilities", Count: 1}}, metrics.ByDepartment)
}
