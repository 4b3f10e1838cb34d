package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/klog/v2"
)

// Scheduler is the single-threaded cooperative executor for one cluster
// (spec §4.6, §5). All task/component state mutation happens on Run's
// goroutine; every other entry point (event stream, probe timers) only
// ever enqueues data and pings runCh — the classic message-pumped reactor
// spec §9 recommends, not callbacks racing across threads.
type Scheduler struct {
	root  *Component
	tasks []*Task

	runCh chan struct{}

	eventsMu sync.Mutex
	events   []*ClusterEvent

	router *EventRouter

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler wires a scheduler for root's already-built task list.
func NewScheduler(ctx context.Context, root *Component, tasks []*Task) *Scheduler {
	sctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		root:   root,
		tasks:  tasks,
		runCh:  make(chan struct{}, 1),
		router: NewEventRouter(tasks),
		ctx:    sctx,
		cancel: cancel,
	}
	for _, t := range tasks {
		t.sched = s
	}
	root.done = make(chan error, 1)
	return s
}

// requestRun is the only cross-goroutine entry point; it only ever posts to
// a buffered channel, coalescing redundant requests, since runTasks always
// does a full pass regardless of how many pings queued up.
func (s *Scheduler) requestRun() {
	select {
	case s.runCh <- struct{}{}:
	default:
	}
}

// AttachEvent enqueues an inbound cluster event and wakes the reactor.
// Safe to call from the cluster driver's watch goroutine: the event is
// only *dispatched* to task closures later, on Run's goroutine.
func (s *Scheduler) AttachEvent(ev *ClusterEvent) {
	s.eventsMu.Lock()
	s.events = append(s.events, ev)
	s.eventsMu.Unlock()
	s.requestRun()
}

func (s *Scheduler) drainEvents() []*ClusterEvent {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	if len(s.events) == 0 {
		return nil
	}
	out := s.events
	s.events = nil
	return out
}

// Run drives the reactor loop until the root component reaches a terminal
// state or ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.requestRun() // cluster starting EXECUTING: kick the first pass.
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.runCh:
			for _, ev := range s.drainEvents() {
				s.router.Dispatch(ev, s)
			}
			s.runTasks(ctx)
			if s.root.state == Done || s.root.state == Failed {
				select {
				case err := <-s.root.done:
					return err
				default:
					if s.root.state == Failed {
						return s.root.terminalError()
					}
					return nil
				}
			}
		}
	}
}

// runTasks iterates all tasks once; on any state change it iterates again;
// it stops when a full pass produces no change (spec §4.6).
func (s *Scheduler) runTasks(ctx context.Context) {
	for {
		changed := false

		for _, t := range s.tasks {
			if t.evaluate() {
				changed = true
			}
			if t.state == READY {
				t.setState(EXECUTING, false)
				changed = true
				t.execute(ctx, t)
				if t.state == WAITING {
					s.armProbe(t)
				}
			}
			if t.state == WAITING && t.probe != nil && atomic.CompareAndSwapInt32(&t.probeDue, 1, 0) {
				runProbe(ctx, t)
				changed = true
			}
		}

		var comps []*Component
		s.root.walk(func(c *Component) { comps = append(comps, c) })
		for _, c := range comps {
			if c.evaluate() {
				changed = true
			}
		}

		if !changed {
			return
		}
	}
}

// armProbe attaches a periodic timer that flags the task's probe as due
// and pings the reactor; the classification call itself (runProbe) happens
// inline in runTasks, on the scheduler goroutine, matching spec §4.8's
// 2-second polling without mutating task state off-goroutine.
func (s *Scheduler) armProbe(t *Task) {
	if t.probe == nil || t.probeInterval == 0 {
		return
	}
	t.probeTimer = time.AfterFunc(t.probeInterval, func() { s.probeTick(t) })
}

func (s *Scheduler) probeTick(t *Task) {
	if t.state.Terminal() {
		return
	}
	atomic.StoreInt32(&t.probeDue, 1)
	s.requestRun()
	if !t.state.Terminal() {
		t.probeTimer = time.AfterFunc(t.probeInterval, func() { s.probeTick(t) })
	}
}

// Stop cancels the scheduler's internal context, releasing any armed probe
// timers.
func (s *Scheduler) Stop() {
	s.cancel()
	for _, t := range s.tasks {
		if t.probeTimer != nil {
			t.probeTimer.Stop()
		}
	}
	klog.V(2).Infof("scheduler stopped for %s", s.root.Name)
}
