package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDependencyRefusesSelfEdge(t *testing.T) {
	a := NewComponent("a", KindApp)
	err := addDependency(a, a)
	assert.Error(t, err)
}

func TestAddDependencyRejectsCycle(t *testing.T) {
	a := NewComponent("a", KindApp)
	b := NewComponent("b", KindApp)
	require.NoError(t, addDependency(a, b))
	err := addDependency(b, a)
	assert.Error(t, err)
}

func TestAddDependencyRejectsTransitiveCycle(t *testing.T) {
	a := NewComponent("a", KindApp)
	b := NewComponent("b", KindApp)
	c := NewComponent("c", KindApp)
	require.NoError(t, addDependency(a, b))
	require.NoError(t, addDependency(b, c))
	err := addDependency(c, a)
	assert.Error(t, err)
}

func TestAddDependencySkipsDuplicate(t *testing.T) {
	a := NewComponent("a", KindApp)
	b := NewComponent("b", KindApp)
	require.NoError(t, addDependency(a, b))
	require.NoError(t, addDependency(a, b))
	assert.Len(t, a.dependsOn, 1)
}

// Scenario 3 (spec §8): Namespace ownership edge, reversed in delete mode.
func TestScanDependenciesNamespaceOwnership(t *testing.T) {
	root := NewComponent("app", KindApp)
	ns := NewComponent("ns-a", KindNamespace)
	dep := NewComponent("web", KindDeployment)
	dep.LocalArgs["metadata.namespace"] = "ns-a"
	root.AddChild(ns)
	root.AddChild(dep)

	require.NoError(t, ScanDependencies(root, Create))
	require.Len(t, dep.dependsOn, 1)
	assert.Equal(t, ns, dep.dependsOn[0])

	// reset and rerun in delete mode
	dep.dependsOn = nil
	ns.dependsOn = nil
	require.NoError(t, ScanDependencies(root, Remove))
	require.Len(t, ns.dependsOn, 1)
	assert.Equal(t, dep, ns.dependsOn[0])
}

// Scenario 4 (spec §8): named depends edge blocks B until A is DONE.
func TestScanDependenciesNamedDepends(t *testing.T) {
	root := NewComponent("app", KindApp)
	a := NewComponent("a", KindDeployment)
	b := NewComponent("b", KindDeployment)
	b.Depends = []string{"a"}
	root.AddChild(a)
	root.AddChild(b)

	require.NoError(t, ScanDependencies(root, Create))
	require.Len(t, b.dependsOn, 1)
	assert.Equal(t, a, b.dependsOn[0])
}

// Scenario 6 (spec §8): circular named depends fails before any HTTP call.
func TestScanDependenciesCircularFails(t *testing.T) {
	root := NewComponent("app", KindApp)
	a := NewComponent("a", KindDeployment)
	b := NewComponent("b", KindDeployment)
	a.Depends = []string{"b"}
	b.Depends = []string{"a"}
	root.AddChild(a)
	root.AddChild(b)

	err := ScanDependencies(root, Create)
	assert.Error(t, err)
}
