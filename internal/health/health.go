// Package health backs the liveness, readiness and detailed health endpoints.
package health

import (
	"context"
	"time"

	"fleet-backend/internal/cache"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db      Pinger
	started time.Time
}

// Component is the state of one dependency.
type Component struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type Report struct {
	Status   string     `json:"status"`
	Uptime   string     `json:"uptime"`
	Database Component  `json:"database"`
	Redis    *Component `json:"redis,omitempty"`
}

func NewHealthChecker(db Pinger) *HealthChecker {
	return &HealthChecker{db: db, started: time.Now()}
}

// Ready reports database health; the service cannot answer anything without it.
func (h *HealthChecker) Ready(ctx context.Context) Report {
	db := probe(ctx, h.db.Ping)
	return Report{
		Status:   db.Status,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Database: db,
	}
}

// Detailed adds the cache. Redis being down degrades the service, it does not fail it.
func (h *HealthChecker) Detailed(ctx context.Context) Report {
	report := h.Ready(ctx)
	redis := Component{Status: StatusDisabled}
	if cache.IsEnabled() {
		redis = probe(ctx, cache.Ping)
		if redis.Status != StatusHealthy && report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	report.Redis = &redis
	return report
}

func probe(ctx context.Context, ping func(context.Context) error) Component {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	c := Component{Status: StatusHealthy, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		c.Status = StatusUnhealthy
		c.Error = err.Error()
	}
	return c
}
