package main

import (
	"fmt"

	"github.com/bridgecrew-perf6/k8deployer/internal/audit"
	"github.com/bridgecrew-perf6/k8deployer/internal/config"
	"github.com/bridgecrew-perf6/k8deployer/internal/container"
	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
	"github.com/bridgecrew-perf6/k8deployer/internal/kube"
	"github.com/bridgecrew-perf6/k8deployer/internal/resources"
)

// App is the set of wired beans a run needs, populated through the IoC
// container the way restServer wires its own inject-tagged fields in
// buildIoCContainer, scaled down to what a one-shot CLI run needs instead
// of a long-lived server's full service graph.
type App struct {
	Recorder *audit.Recorder `inject:"recorder"`
}

// buildApp wires one kube.Driver per cluster target, the audit recorder,
// and the resulting engine.Engine through internal/container, following
// the teacher's Provide-then-Populate sequence.
func buildApp(cfg *config.Config, clusters []engine.ClusterTarget, mode engine.RunMode) (*App, *engine.Engine, error) {
	runners := make(map[string]engine.ClusterRunner, len(clusters))
	factories := make(map[string]func(engine.Mode, *engine.Component) (engine.Executor, engine.EventCloser, engine.ProbeFunc, bool), len(clusters))

	ioc := container.NewContainer()

	app := &App{}
	if err := ioc.ProvideWithName("app", app); err != nil {
		return nil, nil, fmt.Errorf("provide app bean: %w", err)
	}

	rec := audit.NewRecorder(audit.NewMemoryStore(), audit.NewChannelPublisher(32))
	if err := ioc.ProvideWithName("recorder", rec); err != nil {
		return nil, nil, fmt.Errorf("provide recorder bean: %w", err)
	}

	for _, cl := range clusters {
		driver, err := kube.NewDriver(kube.ClientConfig{
			Kubeconfig: cl.Kubeconfig,
			Context:    cl.Vars["context"],
			QPS:        float32(cfg.KubeQPS),
			Burst:      cfg.KubeBurst,
		}, cl.Vars["labelSelector"])
		if err != nil {
			return nil, nil, fmt.Errorf("cluster %s: build driver: %w", cl.Name, err)
		}
		if err := ioc.ProvideWithName("driver."+cl.Name, driver); err != nil {
			return nil, nil, fmt.Errorf("cluster %s: provide driver: %w", cl.Name, err)
		}
		runners[cl.Name] = driver
		factories[cl.Name] = resources.NewTaskFactory(driver.Client, config.NewDispatcher(driver.Runtime))
	}

	if err := ioc.Populate(); err != nil {
		return nil, nil, fmt.Errorf("wire container: %w", err)
	}

	engineCfg := engine.Config{
		Mode:                  mode,
		IncludeRegex:          cfg.Engine.IncludeRegex,
		ExcludeRegex:          cfg.Engine.ExcludeRegex,
		AutoMaintainNamespace: cfg.Engine.AutoMaintainNamespace,
		DotFile:               cfg.Engine.DotFile,
	}
	eng := engine.New(engineCfg, clusters, runners, factories)
	return app, eng, nil
}
