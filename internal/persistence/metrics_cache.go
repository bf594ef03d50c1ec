package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// MetricsCache keeps dashboard metrics in Redis as JSON.
type MetricsCache struct {
	client *redis.Client
}

// NewMetricsCache wraps an enabled Redis connection.
func NewMetricsCache(r *Redis) *MetricsCache {
	return &MetricsCache{client: r.Client}
}

// Get returns the cached value; ok is false on a miss.
func (c *MetricsCache) Get(ctx context.Context, key string) (*domain.TicketMetrics, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var metrics domain.TicketMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return nil, false, err
	}
	return &metrics, true, nil
}

// Set stores metrics under key for ttl.
func (c *MetricsCache) Set(ctx context.Context, key string, metrics *domain.TicketMetrics, ttl time.Duration) error {
	raw, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}
