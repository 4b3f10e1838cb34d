package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncExecutor returns an Executor that completes immediately (used for
// kinds that emit no diagnostic events: Service, ConfigMap, raw delete).
func syncExecutor() Executor {
	return func(ctx context.Context, t *Task) { t.setState(DONE, true) }
}

// waitingExecutor returns an Executor that moves to WAITING, simulating a
// pod-producing resource that needs event correlation to finish.
func waitingExecutor() Executor {
	return func(ctx context.Context, t *Task) { t.setState(WAITING, false) }
}

// Scenario 1 (spec §8): one Deployment with replicas=2; after two
// "Created" pod events the root reaches DONE.
func TestScenarioDeploymentReachesDoneAfterPodEvents(t *testing.T) {
	SetTaskFactory(func(mode Mode, c *Component) (Executor, EventCloser, ProbeFunc, bool) {
		if c.Kind == KindDeployment {
			return waitingExecutor(), NewPodCreatedCloser(2), nil, false
		}
		return syncExecutor(), nil, nil, false
	})
	defer SetTaskFactory(nil)

	root := NewComponent("nginx", KindDeployment)
	tasks, err := BuildTasks(root, Create)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	tasks[0].WithEventMatch(EventMatch{Kind: "Pod", Namespace: "default", Prefix: "nginx-"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sched := NewScheduler(ctx, root, tasks)

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- sched.Run(ctx) }()

	// let the scheduler post the deployment task to WAITING first.
	time.Sleep(20 * time.Millisecond)
	sched.AttachEvent(&ClusterEvent{Kind: "Pod", Namespace: "default", Name: "nginx-abc", Reason: "Created"})
	sched.AttachEvent(&ClusterEvent{Kind: "Pod", Namespace: "default", Name: "nginx-def", Reason: "Created"})

	select {
	case err := <-runErrCh:
		require.NoError(t, err)
	case <-time.After(1 * time.Second):
		t.Fatal("scheduler did not complete in time")
	}
	assert.Equal(t, Done, root.state)
}

// Scenario 2 (spec §8): Deployment auto-injects a Service child; both
// reach DONE.
func TestScenarioServiceChildBothReachDone(t *testing.T) {
	SetTaskFactory(func(mode Mode, c *Component) (Executor, EventCloser, ProbeFunc, bool) {
		return syncExecutor(), nil, nil, false
	})
	defer SetTaskFactory(nil)

	root := NewComponent("web", KindDeployment)
	svc := NewComponent("web-svc", KindService)
	svc.ParentRelation = After
	root.AddChild(svc)

	tasks, err := BuildTasks(root, Create)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sched := NewScheduler(ctx, root, tasks)
	err = sched.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, Done, root.state)
	assert.Equal(t, Done, svc.state)
}

// Scenario 4 (spec §8): B depends on A; B's task stays BLOCKED until A's
// component is DONE.
func TestScenarioDependsOnBlocksUntilDone(t *testing.T) {
	SetTaskFactory(func(mode Mode, c *Component) (Executor, EventCloser, ProbeFunc, bool) {
		return syncExecutor(), nil, nil, false
	})
	defer SetTaskFactory(nil)

	root := NewComponent("app", KindApp)
	a := NewComponent("a", KindDeployment)
	b := NewComponent("b", KindDeployment)
	root.AddChild(a)
	root.AddChild(b)
	require.NoError(t, addDependency(b, a))

	tasks, err := BuildTasks(root, Create)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sched := NewScheduler(ctx, root, tasks)
	err = sched.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, Done, a.state)
	assert.Equal(t, Done, b.state)
}

// Invariant P2: a task never leaves a terminal state.
func TestTaskNeverLeavesTerminalState(t *testing.T) {
	c := NewComponent("x", KindDeployment)
	tk := NewTask("x", c)
	tk.setState(DONE, false)
	tk.setState(FAILED, false)
	assert.Equal(t, DONE, tk.state)
}
