package trace

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/internal/agent"
)

// DBPool is the subset of pgxpool.Pool the sink needs, so tests can swap in pgxmock.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	sqlCreateTraces = `
        CREATE TABLE IF NOT EXISTS exploration_traces (
            start_url     TEXT PRIMARY KEY,
            run_id        TEXT NOT NULL,
            final_url     TEXT NOT NULL,
            total_actions INTEGER NOT NULL,
            stop_reason   TEXT NOT NULL,
            started_at    TIMESTAMPTZ NOT NULL,
            finished_at   TIMESTAMPTZ NOT NULL,
            trace         JSONB NOT NULL
        );`

	sqlUpsertTrace = `
        INSERT INTO exploration_traces (start_url, run_id, final_url, total_actions, stop_reason, started_at, finished_at, trace)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (start_url) DO UPDATE SET
            run_id = EXCLUDED.run_id,
            final_url = EXCLUDED.final_url,
            total_actions = EXCLUDED.total_actions,
            stop_reason = EXCLUDED.stop_reason,
            started_at = EXCLUDED.started_at,
            finished_at = EXCLUDED.finished_at,
            trace = EXCLUDED.trace;`
)

// PostgresSink keeps the latest trace per start URL in exploration_traces.
type PostgresSink struct {
	pool DBPool
	log  *zap.Logger
}

var _ Sink = (*PostgresSink)(nil)

func NewPostgresSink(pool DBPool, logger *zap.Logger) *PostgresSink {
	return &PostgresSink{pool: pool, log: logger.Named("trace.postgres")}
}

// EnsureSchema creates the traces table if it does not exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, sqlCreateTraces); err != nil {
		return fmt.Errorf("failed to create exploration_traces table: %w", err)
	}
	return nil
}

// Write upserts t, overwriting any earlier run for the same start URL.
func (s *PostgresSink) Write(ctx context.Context, t *agent.Trace) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}

	_, err = s.pool.Exec(ctx, sqlUpsertTrace,
		t.StartURL,
		t.RunID,
		t.FinalURL,
		t.TotalActions,
		string(t.StopReason),
		t.StartedAt.UTC(),
		t.FinishedAt.UTC(),
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trace for '%s': %w", t.StartURL, err)
	}

	s.log.Info("Run trace saved.", zap.String("start_url", t.StartURL), zap.String("run_id", t.RunID))
	return nil
}
