package audit

import (
	"context"
	"encoding/json"
	"time"

	"k8s.io/klog/v2"
)

// Recorder writes run-history events to a Store and, optionally, fans
// them out to a Publisher. Every method logs its own failure (store errors
// at error level, publish errors at verbosity 1) and swallows the error: run-history is observational (spec §1's
// external-collaborator scoping), so a broken audit sink must never fail
// or block a deploy/delete run.
type Recorder struct {
	store     Store
	publisher Publisher
}

// NewRecorder returns a Recorder. A nil store defaults to an in-memory
// one; a nil publisher defaults to NoopPublisher.
func NewRecorder(store Store, publisher Publisher) *Recorder {
	if store == nil {
		store = NewMemoryStore()
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Recorder{store: store, publisher: publisher}
}

// RunStarted records that runID began driving cluster in the given mode.
func (r *Recorder) RunStarted(ctx context.Context, runID, cluster, mode string) {
	rec := &RunRecord{RunID: runID, Cluster: cluster, Mode: mode, StartedAt: time.Now()}
	if err := r.store.PutRun(ctx, rec); err != nil {
		klog.FromContext(ctx).Error(err, "audit: record run started", "runID", runID, "cluster", cluster)
	}
	r.publish(ctx, "run.started", rec)
}

// ComponentStateChanged records one component's lifecycle transition
// (spec §4.6's Creating/Running/Done/Failed).
func (r *Recorder) ComponentStateChanged(ctx context.Context, runID, cluster, component, state string) {
	evt := &ComponentEvent{RunID: runID, Cluster: cluster, Component: component, State: state, At: time.Now()}
	if err := r.store.AppendComponentEvent(ctx, evt); err != nil {
		klog.FromContext(ctx).Error(err, "audit: record component state", "runID", runID, "component", component)
	}
	r.publish(ctx, "component.state_changed", evt)
}

// RunFinished records runID's terminal outcome. errMsg is empty on
// success.
func (r *Recorder) RunFinished(ctx context.Context, runID, cluster, mode, errMsg string) {
	rec := &RunRecord{RunID: runID, Cluster: cluster, Mode: mode, FinishedAt: time.Now(), Err: errMsg}
	if err := r.store.PutRun(ctx, rec); err != nil {
		klog.FromContext(ctx).Error(err, "audit: record run finished", "runID", runID, "cluster", cluster)
	}
	r.publish(ctx, "run.finished", rec)
}

func (r *Recorder) publish(ctx context.Context, topic string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.publisher.Publish(ctx, topic, payload); err != nil {
		klog.FromContext(ctx).V(1).Info("audit: publish failed", "topic", topic, "err", err)
	}
}
