// Package audit is k8deployer's run-history side channel: it records
// RunStarted/ComponentStateChanged/RunFinished events keyed by run ID, so
// an operator can answer "what did the last deploy to prod-east actually
// do" without re-deriving it from cluster state. It is purely
// observational — internal/engine's scheduler never reads it back, so
// removing it changes nothing about deploy/delete semantics. Adapted
// from infrastructure/datastore's Entity/DataStore contract, narrowed
// from a general CRUD store to the two record kinds this package needs.
package audit

import (
	"context"
	"time"
)

// RunRecord is one engine.Run invocation against one cluster.
type RunRecord struct {
	RunID      string
	Cluster    string
	Mode       string // deploy|delete|show-dependencies
	StartedAt  time.Time
	FinishedAt time.Time
	Err        string // empty on success
}

func (r *RunRecord) PrimaryKey() string        { return r.RunID + "/" + r.Cluster }
func (r *RunRecord) TableName() string         { return "audit_runs" }
func (r *RunRecord) ShortTableName() string    { return "runs" }
func (r *RunRecord) SetCreateTime(t time.Time) { r.StartedAt = t }
func (r *RunRecord) SetUpdateTime(t time.Time) { r.FinishedAt = t }
func (r *RunRecord) Index() map[string]interface{} {
	return map[string]interface{}{"run_id": r.RunID, "cluster": r.Cluster}
}

// ComponentEvent is one component state transition observed during a run
// (spec §4.6's Creating/Running/Done/Failed).
type ComponentEvent struct {
	RunID     string
	Cluster   string
	Component string
	State     string
	At        time.Time
}

func (e *ComponentEvent) PrimaryKey() string {
	return e.RunID + "/" + e.Cluster + "/" + e.Component + "/" + e.At.Format(time.RFC3339Nano)
}
func (e *ComponentEvent) TableName() string         { return "audit_component_events" }
func (e *ComponentEvent) ShortTableName() string    { return "component_events" }
func (e *ComponentEvent) SetCreateTime(t time.Time) { e.At = t }
func (e *ComponentEvent) SetUpdateTime(time.Time)   {}
func (e *ComponentEvent) Index() map[string]interface{} {
	return map[string]interface{}{"run_id": e.RunID, "cluster": e.Cluster, "component": e.Component}
}

// Store is the persistence contract audit.Recorder writes through,
// narrowed from datastore.DataStore's full CRUD/query surface to the
// append-and-list access pattern run history actually needs.
type Store interface {
	PutRun(ctx context.Context, r *RunRecord) error
	AppendComponentEvent(ctx context.Context, e *ComponentEvent) error
	ListRuns(ctx context.Context, cluster string) ([]*RunRecord, error)
	ListComponentEvents(ctx context.Context, runID, cluster string) ([]*ComponentEvent, error)
}
