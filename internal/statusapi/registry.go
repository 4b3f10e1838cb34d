// Package statusapi is a read-only HTTP surface over the in-memory
// component tree a run builds, grounded on
// pkg/apiserver/interfaces/api's go-restful WebService shape. It is purely
// observational: nothing here feeds back into the scheduler, matching
// spec §1's "CLI and logging setup" being an external collaborator.
package statusapi

import (
	"sync"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// Registry is the read side of one or more in-flight or finished
// engine.Engine runs, keyed by cluster name. cmd/k8deployer fills it with
// each cluster's RunResult once Engine.Run returns; WebService only ever reads
// from it.
type Registry struct {
	mu      sync.RWMutex
	results map[string]engine.RunResult
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{results: make(map[string]engine.RunResult)}
}

// Set records (or replaces) one cluster's latest result.
func (r *Registry) Set(result engine.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.Cluster] = result
}

// Get returns one cluster's latest result, if known.
func (r *Registry) Get(cluster string) (engine.RunResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.results[cluster]
	return res, ok
}

// List returns the names of every cluster the registry has seen.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.results))
	for name := range r.results {
		names = append(names, name)
	}
	return names
}
