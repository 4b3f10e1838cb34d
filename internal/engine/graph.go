package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/bridgecrew-perf6/k8deployer/internal/apperr"
)

// probeInterval is the fixed readiness-probe polling period (spec §4.8).
const probeInterval = 2 * time.Second

// taskFactoryHook builds the executor and (optional) event closer/probe for
// a component's task. Installed once by cmd/k8deployer wiring so that
// internal/engine never imports internal/kube or internal/resources
// directly (spec §9 "polymorphism by kind" without deep inheritance).
type taskFactoryHook func(mode Mode, c *Component) (exec Executor, closer EventCloser, probe ProbeFunc, hasProbe bool)

var taskFactory taskFactoryHook

// SetTaskFactory installs the per-kind task-construction hook.
func SetTaskFactory(fn taskFactoryHook) { taskFactory = fn }

// addTasks creates this component's task — one task per component, mirroring
// the teacher's one-Ctl-per-JobTask shape.
func (c *Component) addTasks(mode Mode, out *[]*Task) {
	var exec Executor
	var closer EventCloser
	var probeFn ProbeFunc
	var hasProbe bool
	if taskFactory != nil {
		exec, closer, probeFn, hasProbe = taskFactory(mode, c)
	}
	if exec == nil {
		exec = func(ctx context.Context, t *Task) { t.setState(DONE, true) }
	}
	t := NewTask(c.Name, c)
	t.execute = exec
	t.eventCloser = closer
	if closer != nil {
		// spec §4.7: pod-created correlation matches Pods named "<component>-*"
		// within the component's own namespace.
		t.WithEventMatch(EventMatch{Kind: "Pod", Namespace: c.Namespace(), Prefix: c.Name + "-"})
	}
	if hasProbe && c.Kind.Probable() {
		t.probe = probeFn
		t.probeInterval = probeInterval
	}
	*out = append(*out, t)
}

// addDeploymentTasks walks the tree pre-order, each component pushing its
// task(s) before its children push theirs (spec §4.4).
func addDeploymentTasks(c *Component, out *[]*Task) {
	c.Mode = Create
	c.addTasks(Create, out)
	for _, ch := range c.Children {
		addDeploymentTasks(ch, out)
	}
}

// addRemovementTasks is deploy's structural mirror: children's tasks are
// appended before their parent's, so that even though delete mode skips
// parent-relation edge synthesis (Open Question #2, spec §9), the flat
// task list itself already orders children before parents.
func addRemovementTasks(c *Component, out *[]*Task) {
	c.Mode = Remove
	for _, ch := range c.Children {
		addRemovementTasks(ch, out)
	}
	c.addTasks(Remove, out)
}

// BuildTasks constructs the full task list for root and links task-to-task
// edges per spec §4.4, returning the flat list in build order.
func BuildTasks(root *Component, mode Mode) ([]*Task, error) {
	var tasks []*Task
	isDelete := mode == Remove
	if isDelete {
		addRemovementTasks(root, &tasks)
	} else {
		addDeploymentTasks(root, &tasks)
	}

	byComponent := make(map[*Component][]*Task, len(tasks))
	for _, t := range tasks {
		byComponent[t.Component] = append(byComponent[t.Component], t)
	}

	if err := prepareTasks(tasks, byComponent, isDelete); err != nil {
		return nil, err
	}
	return tasks, nil
}

// prepareTasks links parent-relation edges (skipped entirely in delete
// mode per Open Question #2) and validates the result is a DAG.
func prepareTasks(tasks []*Task, byComponent map[*Component][]*Task, isDelete bool) error {
	if !isDelete {
		for _, t := range tasks {
			p := t.Component.Parent
			if p == nil {
				continue
			}
			parentTasks := byComponent[p]
			switch t.Component.ParentRelation {
			case After:
				for _, pt := range parentTasks {
					t.DependsOn(pt)
				}
			case Before:
				for _, pt := range parentTasks {
					pt.DependsOn(t)
				}
			case Independent:
				// no parent edge
			}
		}
	}

	for _, t := range tasks {
		if taskDependsTransitively(t, t, map[*Task]bool{}, true) {
			return fmt.Errorf("%w: task %s/%s", apperr.ErrCircularTaskDependency, t.Component.Kind, t.Name)
		}
	}
	return nil
}

func taskDependsTransitively(from, target *Task, visited map[*Task]bool, root bool) bool {
	if !root && from == target {
		return true
	}
	if visited[from] {
		return false
	}
	visited[from] = true
	for _, d := range from.deps {
		if taskDependsTransitively(d, target, visited, false) {
			return true
		}
	}
	return false
}
