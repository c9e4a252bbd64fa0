package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connection tuning for a single-clinic deployment: the server sits next
// to its database and traffic is a steady trickle from a few reception
// terminals, so idle connections are recycled rather than held all day.
const (
	connMaxLifetime  = time.Hour
	connMaxIdleTime  = 15 * time.Minute
	healthCheckEvery = time.Minute
)

// NewPool opens a pgx connection pool against databaseURL and verifies
// connectivity with a ping before returning it.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = connMaxLifetime
	cfg.MaxConnIdleTime = connMaxIdleTime
	cfg.HealthCheckPeriod = healthCheckEvery

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
