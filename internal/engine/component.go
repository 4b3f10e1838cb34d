package engine

import (
	"context"
	"fmt"
	"time"

	"k8s.io/klog/v2"
)

// ParentRelation determines the task edge a component's tasks get toward
// its parent's tasks (spec §3, §4.4).
type ParentRelation int

const (
	// After is the default: this component's tasks depend on its parent's
	// tasks (deploy the parent first).
	After ParentRelation = iota
	Before
	Independent
)

// Mode is the run-wide direction: CREATE for deploy, REMOVE for delete.
type Mode int

const (
	Create Mode = iota
	Remove
)

// ComponentState is the coarse-grained lifecycle state derived from a
// component's tasks and children (spec §4.6).
type ComponentState int

const (
	Creating ComponentState = iota
	Running
	Done
	Failed
)

func (s ComponentState) String() string {
	switch s {
	case Creating:
		return "CREATING"
	case Running:
		return "RUNNING"
	case Done:
		return "DONE"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Payload is the kind-specific structured resource spec a component
// carries (a Deployment spec, a Service spec, ...). Serialization is
// delegated to internal/resources; the tree only owns the raw value.
type Payload interface{}

// Component is a node in the deployment tree (spec §3).
type Component struct {
	Name   string
	Kind   Kind
	Labels map[string]string

	Parent   *Component // weak, nil for root
	Children []*Component

	ParentRelation ParentRelation
	LocalArgs      map[string]string
	DefaultArgs    map[string]string
	Depends        []string // sibling/cousin names this component must follow

	Payload Payload

	// dependsOn holds weak edges to other components in the same tree,
	// populated by the dependency scanner (internal/engine/depends.go).
	dependsOn []*Component

	effectiveArgs *Args

	Mode  Mode
	state ComponentState

	StartTime time.Time
	elapsed   time.Duration

	tasks []*Task

	// failedOnce guards the one-shot FAILED transition (spec §4.6).
	failedOnce bool
	doneOnce   bool

	// root-only: completed exactly once when the root reaches DONE/FAILED.
	done chan error
}

// NewComponent constructs a bare component; callers attach it to a parent
// with AddChild before calling init/prepareDeploy.
func NewComponent(name string, kind Kind) *Component {
	return &Component{
		Name:        name,
		Kind:        kind,
		Labels:      map[string]string{},
		LocalArgs:   map[string]string{},
		DefaultArgs: map[string]string{},
		state:       Creating,
	}
}

// AddChild attaches child as an owned child of c, setting its weak parent
// link.
func (c *Component) AddChild(child *Component) {
	child.Parent = c
	c.Children = append(c.Children, child)
}

// Root walks up to the tree's root.
func (c *Component) Root() *Component {
	r := c
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Namespace returns the component's effective namespace: its own
// "metadata.namespace" arg if set, else "default". Namespace components
// use their own Name as the namespace they define.
func (c *Component) Namespace() string {
	if c.Kind == KindNamespace {
		return c.Name
	}
	if ns := c.EffectiveArgs().String("metadata.namespace", ""); ns != "" {
		return ns
	}
	return "default"
}

// EffectiveArgs resolves (once, memoized) the merged argument map per spec
// §4.2. Must be called after the component is fully attached to its
// parent chain.
func (c *Component) EffectiveArgs() *Args {
	if c.effectiveArgs == nil {
		c.effectiveArgs = resolveEffectiveArgs(c)
	}
	return c.effectiveArgs
}

// State returns the component's current lifecycle state.
func (c *Component) State() ComponentState { return c.state }

// walk calls fn for c and every descendant, pre-order.
func (c *Component) walk(fn func(*Component)) {
	fn(c)
	for _, ch := range c.Children {
		ch.walk(fn)
	}
}

// Walk calls fn for c and every descendant, pre-order. Exported for
// callers outside the package (the CLI's run summary, internal/statusapi)
// that only need to read the tree, never mutate scheduler state.
func (c *Component) Walk(fn func(*Component)) {
	c.walk(fn)
}

// Prepare runs init then prepareDeploy across the whole tree, in that
// order, pre-order for init (parents configure before children can inherit
// defaultArgs) and post-order for prepareDeploy (children finish injecting
// before a parent decides e.g. whether it already has a Service child).
func (c *Component) Prepare(ctx context.Context, engineCfg PrepareConfig) error {
	c.initTree(engineCfg)
	return c.prepareDeployTree(ctx, engineCfg)
}

// PrepareConfig carries the knobs prepareDeploy/init need without pulling
// in the whole Engine type (avoids an import cycle with internal/config).
type PrepareConfig struct {
	AutoMaintainNamespace bool
}

func (c *Component) initTree(cfg PrepareConfig) {
	c.init(cfg)
	for _, ch := range c.Children {
		ch.initTree(cfg)
	}
}

// init sets initial per-node state and spawns auto-children (spec §3
// lifecycle, §9 auto-injection). Guarded by "has child of kind" checks so
// re-running (or a user-supplied child) never double-injects.
func (c *Component) init(cfg PrepareConfig) {
	if c.Parent == nil && cfg.AutoMaintainNamespace && !c.hasChildOfKind(KindNamespace) {
		ns := NewComponent(c.Namespace(), KindNamespace)
		ns.ParentRelation = Before
		c.AddChild(ns)
	}
	if c.Labels == nil {
		c.Labels = map[string]string{}
	}
	if _, ok := c.Labels["app"]; !ok {
		c.Labels["app"] = c.Root().Name
	}
}

func (c *Component) hasChildOfKind(k Kind) bool {
	for _, ch := range c.Children {
		if ch.Kind == k {
			return true
		}
	}
	return false
}

// prepareDeployHook lets internal/traits register kind-agnostic child
// injection (auto-Service, auto-ConfigMap volume, trait-derived objects)
// without engine importing traits (which would import engine back).
var prepareDeployHook func(ctx context.Context, c *Component) error

// SetPrepareDeployHook installs the trait-processing hook. Called once
// from cmd/k8deployer wiring.
func SetPrepareDeployHook(fn func(ctx context.Context, c *Component) error) {
	prepareDeployHook = fn
}

func (c *Component) prepareDeployTree(ctx context.Context, cfg PrepareConfig) error {
	for _, ch := range c.Children {
		if err := ch.prepareDeployTree(ctx, cfg); err != nil {
			return err
		}
	}
	if prepareDeployHook != nil {
		if err := prepareDeployHook(ctx, c); err != nil {
			return fmt.Errorf("prepareDeploy %s/%s: %w", c.Kind, c.Name, err)
		}
	}
	return nil
}

// evaluate derives the component's state from its tasks and children
// (spec §4.6). Returns true if the state changed.
func (c *Component) evaluate() bool {
	before := c.state

	maxTaskState := PRE
	anyBlockedOrBeyond := false
	for _, t := range c.tasks {
		if t.state > maxTaskState {
			maxTaskState = t.state
		}
		if t.state >= BLOCKED {
			anyBlockedOrBeyond = true
		}
	}

	if maxTaskState > DONE && !c.failedOnce {
		c.failedOnce = true
		c.setState(Failed)
		return c.state != before
	}
	if c.failedOnce {
		return false
	}

	allTasksDone := true
	for _, t := range c.tasks {
		if t.state != DONE {
			allTasksDone = false
			break
		}
	}
	allChildrenDone := true
	for _, ch := range c.Children {
		if ch.state != Done {
			allChildrenDone = false
			break
		}
	}
	blockedOnDeps := false
	if c.Mode == Create {
		for _, d := range c.dependsOn {
			if d.state != Done {
				blockedOnDeps = true
				break
			}
		}
	}

	if allTasksDone && allChildrenDone && !blockedOnDeps && !c.doneOnce {
		c.doneOnce = true
		c.setState(Done)
		return c.state != before
	}

	if anyBlockedOrBeyond && c.state == Creating {
		c.setState(Running)
	}

	return c.state != before
}

func (c *Component) setState(s ComponentState) {
	c.state = s
	if s == Done || s == Failed {
		if c.StartTime.IsZero() {
			c.elapsed = 0
		} else {
			c.elapsed = time.Since(c.StartTime)
		}
	}
	klog.V(2).Infof("component %s/%s -> %s", c.Kind, c.Name, s)
	if c.Parent == nil && c.done != nil {
		select {
		case c.done <- c.terminalError():
			close(c.done)
			c.done = nil
		default:
			// already completed once; setState(DONE) fulfils the root
			// promise exactly once per run (spec invariant).
		}
	}
}

func (c *Component) terminalError() error {
	if c.state == Failed {
		return fmt.Errorf("component %s/%s failed", c.Kind, c.Name)
	}
	return nil
}

// Elapsed returns the seconds between the component's first task entering
// EXECUTING and it reaching a terminal state.
func (c *Component) Elapsed() time.Duration { return c.elapsed }
