package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/config"
	"github.com/bridgecrew-perf6/k8deployer/internal/definition"
	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
	"github.com/bridgecrew-perf6/k8deployer/internal/statusapi"
)

// runEngine loads defFile, wires an Engine for clusterArgs, and drives
// mode to completion, printing a per-cluster summary. Shared by
// deploy/delete/show-dependencies: the three subcommands differ only in
// RunMode and which summary gets printed.
func runEngine(clusterArgs []string, defFile string, vars map[string]string, mode engine.RunMode) ([]engine.RunResult, error) {
	clusters, err := config.ParseClusterArgs(clusterArgs)
	if err != nil {
		return nil, fmt.Errorf("parse clusters: %w", err)
	}

	loader := definition.NewJSONLoader(vars)
	def, err := loader.Load(defFile)
	if err != nil {
		return nil, err
	}

	app, eng, err := buildApp(cfg, clusters, mode)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	term := make(chan os.Signal, 1)
	signal.Notify(term, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-term
		klog.Infof("received termination signal, canceling in-flight run")
		cancel()
	}()

	reg := statusapi.NewRegistry()
	statusErrChan := make(chan error, 1)
	go statusapi.StartServer(ctx, reg, statusErrChan)
	go func() {
		if err, ok := <-statusErrChan; ok && err != nil {
			klog.Warningf("statusapi: %v", err)
		}
	}()

	runID := uuid.NewString()
	for _, cl := range clusters {
		app.Recorder.RunStarted(ctx, runID, cl.Name, modeLabel(mode))
	}

	results, runErr := eng.Run(ctx, def)

	for _, r := range results {
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		app.Recorder.RunFinished(ctx, runID, r.Cluster, modeLabel(mode), errMsg)
		// Registered after the run finishes, not streamed live: Engine.Run
		// returns only once every cluster's tree has reached a terminal
		// state, so --status-addr shows finished results only, and only
		// until this command returns and the server is shut down.
		reg.Set(r)
	}

	printSummary(results, mode)
	return results, runErr
}

func modeLabel(mode engine.RunMode) string {
	switch mode {
	case engine.ModeDeploy:
		return "deploy"
	case engine.ModeDelete:
		return "delete"
	default:
		return "show-dependencies"
	}
}

// printSummary renders one line per cluster, colored green/red by whether
// the run succeeded; for show-dependencies the line carries the task count.
func printSummary(results []engine.RunResult, mode engine.RunMode) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s cluster=%s %s\n", bad("FAILED"), r.Cluster, r.Err)
			continue
		}
		if mode == engine.ModeShowDependencies {
			fmt.Printf("%s cluster=%s tasks=%d\n", ok("OK"), r.Cluster, len(r.Tasks))
			continue
		}
		failed := 0
		total := 0
		if r.Root != nil {
			r.Root.Walk(func(c *engine.Component) {
				total++
				if c.State() == engine.Failed {
					failed++
				}
			})
		}
		if failed > 0 {
			fmt.Printf("%s cluster=%s components=%d failed=%d\n", bad("FAILED"), r.Cluster, total, failed)
		} else {
			fmt.Printf("%s cluster=%s components=%d\n", ok("DONE"), r.Cluster, total)
		}
	}
}
