package audit

import (
	"context"
	"sync"
)

// MemoryStore is the default Store: an in-process record of the current
// process's runs, enough for `k8deployer show-dependencies`-style local
// use without provisioning a database. Grounded on the teacher's
// datastore.DataStore contract shape, backed by a mutex-guarded slice
// instead of SQL.
type MemoryStore struct {
	mu     sync.Mutex
	runs   []*RunRecord
	events []*ComponentEvent
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// PutRun upserts by (RunID, Cluster). On conflict it merges rather than
// replaces, so RunFinished's partial record (FinishedAt/Err only) doesn't
// erase the StartedAt an earlier RunStarted call recorded — matching
// SQLStore's ON CONFLICT DO UPDATE SET semantics.
func (s *MemoryStore) PutRun(_ context.Context, r *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.runs {
		if existing.RunID == r.RunID && existing.Cluster == r.Cluster {
			if r.Mode != "" {
				existing.Mode = r.Mode
			}
			if !r.StartedAt.IsZero() {
				existing.StartedAt = r.StartedAt
			}
			if !r.FinishedAt.IsZero() {
				existing.FinishedAt = r.FinishedAt
			}
			if r.Err != "" {
				existing.Err = r.Err
			}
			return nil
		}
	}
	cp := *r
	s.runs = append(s.runs, &cp)
	return nil
}

func (s *MemoryStore) AppendComponentEvent(_ context.Context, e *ComponentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events = append(s.events, &cp)
	return nil
}

func (s *MemoryStore) ListRuns(_ context.Context, cluster string) ([]*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*RunRecord
	for _, r := range s.runs {
		if cluster == "" || r.Cluster == cluster {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListComponentEvents(_ context.Context, runID, cluster string) ([]*ComponentEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ComponentEvent
	for _, e := range s.events {
		if e.RunID == runID && (cluster == "" || e.Cluster == cluster) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
