package engine

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// RunMode is the engine's global mode (spec §2).
type RunMode int

const (
	ModeDeploy RunMode = iota
	ModeDelete
	ModeShowDependencies
)

// ClusterTarget names one cluster to drive, parsed from the
// "kubeconfig[:k1=v1,k2=v2,...]" CLI argument syntax (spec §6).
type ClusterTarget struct {
	Name       string // defaults to kubeconfig basename before first '.', else "default"
	Kubeconfig string
	Vars       map[string]string
}

// ClusterRunner is what internal/kube supplies per cluster: something that
// can turn a built task's Executor/ProbeFunc hooks into real API calls and
// pump a watch stream into a Scheduler. Engine only needs to start it and
// wait for it to finish feeding events.
type ClusterRunner interface {
	// WatchEvents streams cluster events into sched until ctx is done or
	// the watch itself ends; reconnect/backoff is the runner's concern
	// (Open Question #3, spec §9).
	WatchEvents(ctx context.Context, sched *Scheduler)
}

// Config is the subset of engine behavior not covered by the component
// tree itself.
type Config struct {
	Mode                  RunMode
	IncludeRegex          string
	ExcludeRegex          string
	AutoMaintainNamespace bool
	DotFile               string // non-empty enables SHOW_DEPENDENCIES dump name
}

// Engine is the top-level coordinator across clusters (spec §2).
type Engine struct {
	cfg       Config
	clusters  []ClusterTarget
	runners   map[string]ClusterRunner  // by cluster name
	factories map[string]taskFactoryHook // by cluster name

	// buildMu serializes the SetTaskFactory/BuildTasks pair across the
	// per-cluster goroutines in Run: taskFactory is a single
	// package-level hook (graph.go), so two clusters building their task
	// lists concurrently would race on which cluster's client the hook
	// actually calls into. Scheduling and watching, which dominate a
	// run's wall time, still proceed fully in parallel once a cluster's
	// tasks are built.
	buildMu sync.Mutex
}

// New constructs an Engine for the given clusters. runners maps cluster
// name -> ClusterRunner; a cluster with no runner still gets a tree built
// (useful for SHOW_DEPENDENCIES, which issues no API calls). factories
// maps cluster name -> the taskFactoryHook-shaped function that should be
// active while that cluster's tasks are built (typically
// resources.NewTaskFactory(clusterClient)); a cluster with no entry gets
// engine's synchronous-DONE default for every task.
func New(cfg Config, clusters []ClusterTarget, runners map[string]ClusterRunner, factories map[string]func(Mode, *Component) (Executor, EventCloser, ProbeFunc, bool)) *Engine {
	fs := make(map[string]taskFactoryHook, len(factories))
	for name, fn := range factories {
		fs[name] = fn
	}
	return &Engine{cfg: cfg, clusters: clusters, runners: runners, factories: fs}
}

// RunResult is one cluster's outcome.
type RunResult struct {
	Cluster string
	Root    *Component
	Tasks   []*Task
	Err     error
}

// Run builds one component-tree replica per cluster from def and drives
// each independently (clusters run in parallel and share no mutable
// component state, spec §5), returning one RunResult per cluster.
func (e *Engine) Run(ctx context.Context, def *ComponentDef) ([]RunResult, error) {
	var includeRe, excludeRe *regexp.Regexp
	var err error
	if e.cfg.IncludeRegex != "" {
		if includeRe, err = regexp.Compile(e.cfg.IncludeRegex); err != nil {
			return nil, fmt.Errorf("compile include regex: %w", err)
		}
	}
	if e.cfg.ExcludeRegex != "" {
		if excludeRe, err = regexp.Compile(e.cfg.ExcludeRegex); err != nil {
			return nil, fmt.Errorf("compile exclude regex: %w", err)
		}
	}

	mode := Create
	if e.cfg.Mode == ModeDelete {
		mode = Remove
	}

	runID := uuid.NewString()
	ctx = klog.NewContext(ctx, klog.FromContext(ctx).WithValues("runID", runID))

	results := make([]RunResult, len(e.clusters))
	var wg sync.WaitGroup
	for i, cl := range e.clusters {
		i, cl := i, cl
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = e.runOne(ctx, cl, def, mode, includeRe, excludeRe)
		}()
	}
	wg.Wait()

	var firstErr error
	for _, r := range results {
		if r.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("cluster %s: %w", r.Cluster, r.Err)
		}
	}
	return results, firstErr
}

func (e *Engine) runOne(ctx context.Context, cl ClusterTarget, def *ComponentDef, mode Mode, includeRe, excludeRe *regexp.Regexp) RunResult {
	log := klog.FromContext(ctx).WithValues("cluster", cl.Name)

	root, err := Populate(def, includeRe, excludeRe)
	if err != nil {
		return RunResult{Cluster: cl.Name, Err: fmt.Errorf("populate: %w", err)}
	}

	prepCfg := PrepareConfig{AutoMaintainNamespace: e.cfg.AutoMaintainNamespace}
	if err := root.Prepare(ctx, prepCfg); err != nil {
		return RunResult{Cluster: cl.Name, Root: root, Err: fmt.Errorf("prepareDeploy: %w", err)}
	}

	if err := ScanDependencies(root, mode); err != nil {
		return RunResult{Cluster: cl.Name, Root: root, Err: fmt.Errorf("scanDependencies: %w", err)}
	}

	e.buildMu.Lock()
	SetTaskFactory(e.factories[cl.Name])
	tasks, err := BuildTasks(root, mode)
	SetTaskFactory(nil)
	e.buildMu.Unlock()
	if err != nil {
		return RunResult{Cluster: cl.Name, Root: root, Err: fmt.Errorf("buildTasks: %w", err)}
	}

	if e.cfg.Mode == ModeShowDependencies {
		if e.cfg.DotFile != "" {
			dot := WriteDOT(root, tasks)
			name := DotFileName(root, e.cfg.DotFile)
			if err := os.WriteFile(name, []byte(dot), 0o644); err != nil {
				return RunResult{Cluster: cl.Name, Root: root, Tasks: tasks, Err: fmt.Errorf("write dot: %w", err)}
			}
			log.Info("wrote dependency graph", "file", name)
		}
		return RunResult{Cluster: cl.Name, Root: root, Tasks: tasks}
	}

	sched := NewScheduler(ctx, root, tasks)
	if runner, ok := e.runners[cl.Name]; ok && runner != nil {
		go runner.WatchEvents(ctx, sched)
	}

	runErr := sched.Run(ctx)
	sched.Stop()
	return RunResult{Cluster: cl.Name, Root: root, Tasks: tasks, Err: runErr}
}
