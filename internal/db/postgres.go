// Package db opens the PostgreSQL pool.
package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleet-backend/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// Connect builds the pool and waits for PostgreSQL to answer a ping, retrying
// a few times so the server can start alongside its database container.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 15 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = pool.Ping(pingCtx)
		cancel()
		if err == nil {
			return pool, nil
		}
		if attempt == connectAttempts {
			pool.Close()
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
		}
		log.Printf("[DB] ping failed (attempt %d/%d): %v", attempt, connectAttempts, err)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}
