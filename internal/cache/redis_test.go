package cache

import (
	"context"
	"testing"
	"time"

	"fleet-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	require.NoError(t, Init(&config.Config{}))
	ctx := context.Background()

	SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute)
	var dst map[string]int
	assert.False(t, GetJSON(ctx, "k", &dst))
	assert.False(t, IsEnabled())
	assert.ErrorIs(t, Ping(ctx), ErrDisabled)
	InvalidateLedgerCaches(ctx)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "reports:monthly:2026", MonthlyAnalyticsKey(2026))

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "reports:profit_loss:20260101:all", RangeKey(ProfitLossKeyFmt, &from, nil))
	assert.Equal(t, "reports:bills:all:all", RangeKey(BillSummaryKeyFmt, nil, nil))
}
