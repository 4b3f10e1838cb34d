package engine

import (
	"context"
	"time"

	"k8s.io/klog/v2"
)

// TaskState is the task state machine (spec §4.5). States below DONE are
// non-terminal transient states; DONE and everything from ABORTED up are
// terminal. Ordering matters: comparisons like "state > DONE" are used to
// detect terminal failure from a component's tasks (spec §4.6).
type TaskState int

const (
	PRE TaskState = iota
	BLOCKED
	READY
	EXECUTING
	WAITING
	DONE
	ABORTED
	FAILED
	DEPENDENCY_FAILED
)

func (s TaskState) String() string {
	switch s {
	case PRE:
		return "PRE"
	case BLOCKED:
		return "BLOCKED"
	case READY:
		return "READY"
	case EXECUTING:
		return "EXECUTING"
	case WAITING:
		return "WAITING"
	case DONE:
		return "DONE"
	case ABORTED:
		return "ABORTED"
	case FAILED:
		return "FAILED"
	case DEPENDENCY_FAILED:
		return "DEPENDENCY_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether s is a state a task never leaves (spec
// invariant P2).
func (s TaskState) Terminal() bool { return s == DONE || s >= ABORTED }

// EventCloser mutates a task's state in reaction to an inbound cluster
// event (or a nil synthetic tick for probe-driven closers). Returns true
// if the event was consumed (matched this task).
type EventCloser func(t *Task, ev *ClusterEvent) bool

// Executor performs the kind-specific dispatch for a READY task (an HTTP
// call against the cluster). It is expected to call t.setState itself as
// the call progresses (EXECUTING immediately, then DONE or WAITING).
type Executor func(ctx context.Context, t *Task)

// Task is an executable unit owned by exactly one component (spec §3).
type Task struct {
	Name      string
	Component *Component

	state TaskState
	deps  []*Task // weak edges to other tasks

	execute     Executor
	eventCloser EventCloser
	eventMatch  *EventMatch

	// probeInterval, when non-zero, makes the scheduler attach a periodic
	// readiness-probe timer once the task enters WAITING (spec §4.8).
	probeInterval time.Duration
	probe         ProbeFunc
	probeTimer    *time.Timer
	probeDue      int32 // set atomically by the probe timer goroutine, consumed in runTasks

	sched *Scheduler
}

// WithEventMatch declares the task's interest in inbound cluster events so
// the EventRouter can route to it without broadcasting (spec §9).
func (t *Task) WithEventMatch(m EventMatch) *Task {
	t.eventMatch = &m
	return t
}

// NewPodCreatedCloser returns an EventCloser that counts "Created" reason
// events for distinct Pods routed to the task (the EventRouter filters by
// the task's name prefix), marking the task DONE once the count reaches
// replicas (spec §4.7).
func NewPodCreatedCloser(replicas int) EventCloser {
	seen := map[string]bool{}
	return func(t *Task, ev *ClusterEvent) bool {
		if ev == nil || ev.Kind != "Pod" || ev.Reason != "Created" {
			return false
		}
		if seen[ev.Name] {
			return false
		}
		seen[ev.Name] = true
		if len(seen) >= replicas {
			t.setState(DONE, true)
		}
		return true
	}
}

// NewTask constructs a task for the given component.
func NewTask(name string, c *Component) *Task {
	t := &Task{Name: name, Component: c, state: PRE}
	c.tasks = append(c.tasks, t)
	return t
}

// DependsOn records a weak task->task dependency edge.
func (t *Task) DependsOn(other *Task) {
	t.deps = append(t.deps, other)
}

func (t *Task) State() TaskState { return t.state }

// SetDone marks the task DONE. Exported for Executors defined outside the
// engine package (internal/resources) that complete synchronously.
func (t *Task) SetDone() { t.setState(DONE, true) }

// SetWaiting marks the task WAITING: its API call succeeded but
// completion depends on pod-created event correlation and/or a readiness
// probe (spec §4.5).
func (t *Task) SetWaiting() { t.setState(WAITING, true) }

// SetFailed marks the task FAILED.
func (t *Task) SetFailed() { t.setState(FAILED, true) }

// setState enforces the monotonic-forward invariant (P2) except the
// deterministic PRE->BLOCKED->READY collapse handled by evaluate, and
// optionally schedules another runTasks pass.
func (t *Task) setState(s TaskState, scheduleRunTasks bool) {
	if t.state.Terminal() {
		klog.V(4).Infof("task %s/%s: ignoring transition to %s from terminal %s", t.Component.Kind, t.Name, s, t.state)
		return
	}
	if s < t.state {
		klog.Warningf("task %s/%s: refusing backward transition %s -> %s", t.Component.Kind, t.Name, t.state, s)
		return
	}
	prev := t.state
	t.state = s
	if prev != s {
		klog.V(3).Infof("task %s/%s: %s -> %s", t.Component.Kind, t.Name, prev, s)
		if s == EXECUTING && t.Component.StartTime.IsZero() {
			t.Component.StartTime = time.Now()
		}
	}
	if scheduleRunTasks && t.sched != nil {
		t.sched.requestRun()
	}
}

// evaluate advances PRE->BLOCKED unconditionally, then evaluates BLOCKED
// per spec §4.5. Returns true if state changed.
func (t *Task) evaluate() bool {
	before := t.state

	if t.state == PRE {
		t.state = BLOCKED
	}

	if t.state == BLOCKED {
		if t.Component.Mode == Create {
			for _, d := range t.Component.dependsOn {
				if d.state != Done {
					return t.state != before
				}
			}
		}
		anyNotDone := false
		anyFailedOrBeyond := false
		for _, d := range t.deps {
			if d.state != DONE {
				anyNotDone = true
			}
			if d.state >= ABORTED {
				anyFailedOrBeyond = true
			}
		}
		switch {
		case anyFailedOrBeyond:
			t.state = DEPENDENCY_FAILED
		case anyNotDone:
			// stay BLOCKED
		default:
			t.state = READY
		}
	}

	return t.state != before
}
