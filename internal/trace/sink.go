// internal/trace/sink.go
package trace

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/internal/agent"
	"github.com/xkilldash9x/scout-cli/internal/config"
)

// Sink persists the trace of a finished run. Each write replaces the
// previously stored trace for the same destination.
type Sink interface {
	Write(ctx context.Context, t *agent.Trace) error
}

// NewSink builds the sink selected by cfg.Trace.Sink. The returned cleanup
// function releases any connection the sink holds and is never nil.
func NewSink(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Sink, func(), error) {
	noop := func() {}

	switch cfg.Trace.Sink {
	case config.SinkFile, "":
		return NewFileSink(cfg.Trace.Path, logger), noop, nil

	case config.SinkPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("failed to ping database: %w", err)
		}
		sink := NewPostgresSink(pool, logger)
		if err := sink.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return sink, pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported trace sink: '%s'", cfg.Trace.Sink)
	}
}
