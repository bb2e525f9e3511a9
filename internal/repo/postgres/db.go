package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	connectOnce sync.Once
	sharedPool  *pgxpool.Pool
	connectErr  error
)

// Connect builds the process-wide pool. The first call wins; later
// calls return the same pool regardless of the dsn they pass.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	connectOnce.Do(func() {
		sharedPool, connectErr = NewPool(ctx, dsn)
	})
	return sharedPool, connectErr
}

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MinConns = 0
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	return pool, nil
}
