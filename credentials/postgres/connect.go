package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectConfig controls pool creation and the startup retry loop.
type ConnectConfig struct {
	DSN      string
	MaxConns int32
	// Attempts bounds the number of pings before Connect gives up.
	Attempts    uint64
	BaseBackoff time.Duration
}

func (c ConnectConfig) withDefaults() ConnectConfig {
	if c.Attempts == 0 {
		c.Attempts = 5
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 500 * time.Millisecond
	}
	return c
}

// Connect opens a pool and pings it with exponential backoff until the
// database answers or the attempts run out.
func Connect(ctx context.Context, cfg ConnectConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg = cfg.withDefaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, oops.Code("POSTGRES_CONFIG_INVALID").
			With("operation", "parse dsn").
			Wrap(err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").
			With("operation", "create pool").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(cfg.Attempts-1, retry.NewExponential(cfg.BaseBackoff))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			if logger != nil {
				logger.WarnContext(ctx, "postgres not ready", "attempt", attempt, "error", err)
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").
			With("operation", "ping").
			With("attempts", attempt).
			Wrap(err)
	}

	return pool, nil
}
