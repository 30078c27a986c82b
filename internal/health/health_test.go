package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReady(t *testing.T) {
	ctx := context.Background()

	ok := NewHealthChecker(pingFunc(func(context.Context) error { return nil }))
	report := ok.Ready(ctx)
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Nil(t, report.Redis)
	assert.NotEmpty(t, report.Uptime)

	down := NewHealthChecker(pingFunc(func(context.Context) error { return errors.New("refused") }))
	report = down.Ready(ctx)
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, StatusUnhealthy, report.Database.Status)
	assert.Equal(t, "refused", report.Database.Error)
}

func TestReadyPingHasDeadline(t *testing.T) {
	var hasDeadline bool
	checker := NewHealthChecker(pingFunc(func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	}))
	checker.Ready(context.Background())
	assert.True(t, hasDeadline)
}

func TestDetailedWithoutRedis(t *testing.T) {
	ok := NewHealthChecker(pingFunc(func(context.Context) error { return nil }))
	report := ok.Detailed(context.Background())
	assert.Equal(t, StatusHealthy, report.Status)
	require.NotNil(t, report.Redis)
	assert.Equal(t, StatusDisabled, report.Redis.Status)
}
