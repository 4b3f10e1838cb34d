package statusapi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func TestRegistrySetAndGet(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Get("prod")
	assert.False(t, ok)

	reg.Set(engine.RunResult{Cluster: "prod"})
	got, ok := reg.Get("prod")
	assert.True(t, ok)
	assert.Equal(t, "prod", got.Cluster)
}

func TestRegistrySetReplacesPriorResultForSameCluster(t *testing.T) {
	reg := NewRegistry()
	reg.Set(engine.RunResult{Cluster: "prod", Tasks: make([]*engine.Task, 3)})
	reg.Set(engine.RunResult{Cluster: "prod", Tasks: make([]*engine.Task, 5)})

	got, ok := reg.Get("prod")
	assert.True(t, ok)
	assert.Len(t, got.Tasks, 5)
}

func TestRegistryListReturnsAllClusterNames(t *testing.T) {
	reg := NewRegistry()
	reg.Set(engine.RunResult{Cluster: "a"})
	reg.Set(engine.RunResult{Cluster: "b"})
	assert.ElementsMatch(t, []string{"a", "b"}, reg.List())
}
