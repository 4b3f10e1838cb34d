package audit

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// SQLStore persists run history to Postgres via sqlx, for deployments
// that want run history to survive past the CLI process (the teacher's
// own datastore is MySQL-backed through sqlx-style row scanning;
// Postgres is used here since lib/pq is the driver already present in
// the dependency graph without adding a new one).
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQLStore connects to dsn and ensures the audit tables exist.
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: connect: %w", err)
	}
	s := &SQLStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS audit_runs (
	run_id TEXT NOT NULL,
	cluster TEXT NOT NULL,
	mode TEXT NOT NULL,
	started_at TIMESTAMPTZ,
	finished_at TIMESTAMPTZ,
	err TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, cluster)
);
CREATE TABLE IF NOT EXISTS audit_component_events (
	run_id TEXT NOT NULL,
	cluster TEXT NOT NULL,
	component TEXT NOT NULL,
	state TEXT NOT NULL,
	at TIMESTAMPTZ NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("audit: migrate: %w", err)
	}
	return nil
}

func (s *SQLStore) PutRun(ctx context.Context, r *RunRecord) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO audit_runs (run_id, cluster, mode, started_at, finished_at, err)
VALUES (:run_id, :cluster, :mode, :started_at, :finished_at, :err)
ON CONFLICT (run_id, cluster) DO UPDATE SET
	finished_at = EXCLUDED.finished_at,
	err = EXCLUDED.err
`, runRecordRow(r))
	if err != nil {
		return fmt.Errorf("audit: put run: %w", err)
	}
	return nil
}

func (s *SQLStore) AppendComponentEvent(ctx context.Context, e *ComponentEvent) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO audit_component_events (run_id, cluster, component, state, at)
VALUES (:run_id, :cluster, :component, :state, :at)
`, componentEventRow(e))
	if err != nil {
		return fmt.Errorf("audit: append component event: %w", err)
	}
	return nil
}

func (s *SQLStore) ListRuns(ctx context.Context, cluster string) ([]*RunRecord, error) {
	var rows []runRow
	q := `SELECT run_id, cluster, mode, started_at, finished_at, err FROM audit_runs`
	args := map[string]interface{}{}
	if cluster != "" {
		q += ` WHERE cluster = :cluster`
		args["cluster"] = cluster
	}
	q += ` ORDER BY started_at DESC`
	named, err := s.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("audit: list runs: %w", err)
	}
	defer named.Close()
	if err := named.SelectContext(ctx, &rows, args); err != nil {
		return nil, fmt.Errorf("audit: list runs: %w", err)
	}
	out := make([]*RunRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toRunRecord()
	}
	return out, nil
}

func (s *SQLStore) ListComponentEvents(ctx context.Context, runID, cluster string) ([]*ComponentEvent, error) {
	var rows []eventRow
	err := s.db.SelectContext(ctx, &rows, `
SELECT run_id, cluster, component, state, at FROM audit_component_events
WHERE run_id = $1 AND ($2 = '' OR cluster = $2)
ORDER BY at ASC
`, runID, cluster)
	if err != nil {
		return nil, fmt.Errorf("audit: list component events: %w", err)
	}
	out := make([]*ComponentEvent, len(rows))
	for i, r := range rows {
		out[i] = r.toComponentEvent()
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }
