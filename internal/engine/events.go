package engine

import "strings"

// ClusterEvent is the engine's narrow view of a Kubernetes core/v1 Event,
// decoupled from client-go so internal/engine has no Kubernetes import
// (the cluster driver in internal/kube translates real watch events into
// this shape).
type ClusterEvent struct {
	Kind      string // involved object kind, e.g. "Pod"
	Namespace string
	Name      string // involved object name
	Reason    string
}

// eventKey is the lookup-table key recommended by spec §9: (kind,
// namespace, name-prefix) -> tasks, built once at task-graph finalization
// so dispatch doesn't broadcast to every task.
type eventKey struct {
	kind      string
	namespace string
	prefix    string
}

// EventRouter dispatches inbound cluster events to the tasks whose
// closures declared interest in them (spec §4.7).
type EventRouter struct {
	byKey map[eventKey][]*Task
}

// NewEventRouter builds the router from a task list. Each task's
// eventCloser is asked (via its declared matcher, attached at construction
// time through WithEventMatch) which (kind, namespace, prefix) it wants
// routed to it.
func NewEventRouter(tasks []*Task) *EventRouter {
	r := &EventRouter{byKey: map[eventKey][]*Task{}}
	for _, t := range tasks {
		if t.eventMatch == nil {
			continue
		}
		k := eventKey{kind: t.eventMatch.Kind, namespace: t.eventMatch.Namespace, prefix: t.eventMatch.Prefix}
		r.byKey[k] = append(r.byKey[k], t)
	}
	return r
}

// Dispatch posts ev to every task whose (kind, namespace, name-prefix)
// registration matches it, invoking the task's eventCloser.
func (r *EventRouter) Dispatch(ev *ClusterEvent, sched *Scheduler) {
	for key, tasks := range r.byKey {
		if key.kind != ev.Kind || key.namespace != ev.Namespace {
			continue
		}
		if !strings.HasPrefix(ev.Name, key.prefix) {
			continue
		}
		for _, t := range tasks {
			if t.eventCloser == nil {
				continue
			}
			if t.eventCloser(t, ev) {
				sched.requestRun()
			}
		}
	}
}

// EventMatch is a task's declared interest in inbound events: kind,
// namespace, and a name prefix (e.g. a Deployment "web" matches pods named
// "web-*" in its namespace).
type EventMatch struct {
	Kind      string
	Namespace string
	Prefix    string
}
