package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	globalMetricsKey   = "charts:metrics:global"
	userMetricsKeyBase = "charts:metrics:user:"
	unknownBucket      = "Unknown"
)

// MetricsCache stores computed dashboard metrics for a short time.
type MetricsCache interface {
	Get(ctx context.Context, key string) (*domain.TicketMetrics, bool, error)
	Set(ctx context.Context, key string, metrics *domain.TicketMetrics, ttl time.Duration) error
}

// AnalyticsService computes role-scoped ticket metrics.
type AnalyticsService struct {
	tickets     repository.TicketRepository
	reference   repository.ReferenceRepository
	departments repository.DepartmentRepository
	cache       MetricsCache
	ttl         time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// AnalyticsDependencies bundles collaborators. Cache may be nil.
type AnalyticsDependencies struct {
	TicketRepo     repository.TicketRepository
	ReferenceRepo  repository.ReferenceRepository
	DepartmentRepo repository.DepartmentRepository
	Cache          MetricsCache
	TTL            time.Duration
	Logger         *zap.Logger
	Clock          func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AnalyticsService{
		tickets:     deps.TicketRepo,
		reference:   deps.ReferenceRepo,
		departments: deps.DepartmentRepo,
		cache:       deps.Cache,
		ttl:         ttl,
		logger:      logger,
		now:         clock,
	}
}

// MetricsKey returns the cache key for principal: staff get a per-user view.
func MetricsKey(principal domain.Principal) string {
	if principal.Role == domain.RoleStaff {
		return userMetricsKeyBase + principal.UserID
	}
	return globalMetricsKey
}

// TicketMetrics returns cached metrics when fresh, computing them otherwise.
// Cache failures degrade to recomputation.
func (s *AnalyticsService) TicketMetrics(ctx context.Context, principal domain.Principal) (*domain.TicketMetrics, error) {
	if !principal.Role.IsStaffOrAdmin() {
		return nil, errorutil.NewForbidden("analytics require staff role")
	}
	key := MetricsKey(principal)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("metrics cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	filter, err := ScopeFilter(principal, ViewAll, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}
	metrics, err := s.compute(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, metrics, s.ttl); err != nil {
			s.logger.Warn("metrics cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return metrics, nil
}

func (s *AnalyticsService) compute(ctx context.Context, filter repository.TicketFilter) (*domain.TicketMetrics, error) {
	now := s.now().UTC()
	stats, err := s.tickets.Stats(ctx, filter, now)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	statuses, err := s.reference.ListStatuses(ctx)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	statusNames := make(map[string]string, len(statuses))
	for _, st := range statuses {
		statusNames[st.ID] = st.Name
	}
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	deptNames := make(map[string]string, len(departments))
	for _, d := range departments {
		deptNames[d.ID] = d.Name
	}

	return &domain.TicketMetrics{
		ByStatus:     namedCounts(stats.ByStatus, statusNames),
		ByDepartment: namedCounts(stats.ByDepartment, deptNames),
		SLABreaches:  stats.SLABreaches,
		Total:        stats.Total,
		GeneratedAt:  now,
	}, nil
}

// namedCounts folds id-keyed counts into name buckets, sorted by name.
func namedCounts(byID map[string]int, names map[string]string) []domain.NamedCount {
	buckets := map[string]int{}
	for id, count := range byID {
		name, ok := names[id]
		if !ok || id == "" {
			name = unknownBucket
		}
		buckets[name] += count
	}
	out := make([]domain.NamedCount, 0, len(buckets))
	for name, count := range buckets {
		out = append(out, domain.NamedCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
