package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"fleet-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// Report cache keys
const (
	MonthlyAnalyticsKeyFmt = "reports:monthly:%d"
	ProfitLossKeyFmt       = "reports:profit_loss:%s:%s"
	BillSummaryKeyFmt      = "reports:bills:%s:%s"
	DashboardSummaryKey    = "dashboard:summary"
)

const (
	ReportTTL    = 15 * time.Minute
	DashboardTTL = 5 * time.Minute
)

var client *redis.Client

// Init connects to Redis. On failure the client stays nil and every cache
// call degrades to a no-op.
func Init(cfg *config.Config) error {
	if !cfg.Redis.Enabled {
		return nil
	}

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return err
	}
	client = c
	return nil
}

// Close releases the connection pool.
func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// GetJSON decodes a cached value into dst. A miss or a corrupt entry reports false.
func GetJSON(ctx context.Context, key string, dst any) bool {
	data, ok := GetCached(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON encodes v and caches it.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Redis] failed to encode %s: %v", key, err)
		return
	}
	SetCached(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	var keys []string
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[Redis] scan %s failed: %v", pattern, err)
		return
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateLedgerCaches clears every report derived from bills, payments or loads.
// Called after any ledger, load or rental transaction write.
func InvalidateLedgerCaches(ctx context.Context) {
	InvalidatePattern(ctx, "reports:*")
	InvalidateKeys(ctx, DashboardSummaryKey)
}

// MonthlyAnalyticsKey is the cache key for one year's analytics.
func MonthlyAnalyticsKey(year int) string {
	return fmt.Sprintf(MonthlyAnalyticsKeyFmt, year)
}

// RangeKey renders an optional date range for use in a key.
func RangeKey(format string, from, to *time.Time) string {
	return fmt.Sprintf(format, dateOrAll(from), dateOrAll(to))
}

func dateOrAll(t *time.Time) string {
	if t == nil {
		return "all"
	}
	return t.Format("20060102")
}

// PreWarmKey pre-warms a specific cache key in the background.
// Called after cache invalidation so the next request is served from cache.
func PreWarmKey(key string, fetcher func(ctx context.Context) (any, error), ttl time.Duration) {
	if client == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		v, err := fetcher(ctx)
		if err != nil {
			return
		}
		SetJSON(ctx, key, v, ttl)
	}()
}

// IsEnabled reports whether a Redis client is connected.
func IsEnabled() bool {
	return client != nil
}

// ErrDisabled is returned by Ping when no client is connected.
var ErrDisabled = errors.New("redis cache disabled")

// Ping checks the live connection.
func Ping(ctx context.Context) error {
	if client == nil {
		return ErrDisabled
	}
	return client.Ping(ctx).Err()
}
