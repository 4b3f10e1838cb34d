// Package container is a minimal IoC container used by cmd/k8deployer to
// wire the engine, its per-cluster drivers, and the audit recorder
// together without a hand-written constructor chain, adapted from
// pkg/apiserver/utils/container's inject.Graph wrapper.
package container

import (
	"fmt"

	"github.com/barnettZQG/inject"
	"helm.sh/helm/v3/pkg/time"
	"k8s.io/klog/v2"
)

// NewContainer returns an empty IoC container.
func NewContainer() *Container {
	return &Container{graph: inject.Graph{}}
}

// Container is the IoC container: beans are Provide()d, then Populate()
// wires their injected fields.
type Container struct {
	graph inject.Graph
}

// Provide adds beans under their default (type-derived) name.
func (c *Container) Provide(beans ...interface{}) error {
	for _, bean := range beans {
		if bean == nil {
			klog.Errorf("skip providing nil bean to IoC container")
			return fmt.Errorf("nil bean provided to container")
		}
		if err := c.graph.Provide(&inject.Object{Value: bean}); err != nil {
			return err
		}
	}
	return nil
}

// ProvideWithName adds a bean under an explicit name, for callers that
// inject it by name via an `inject:"name"` struct tag.
func (c *Container) ProvideWithName(name string, bean interface{}) error {
	if bean == nil {
		klog.Errorf("skip providing nil bean %q to IoC container", name)
		return fmt.Errorf("nil bean %q provided to container", name)
	}
	return c.graph.Provide(&inject.Object{Name: name, Value: bean})
}

// Populate wires every provided bean's injected fields. Call once, after
// every bean has been provided.
func (c *Container) Populate() error {
	start := time.Now()
	defer func() {
		klog.Infof("populate the bean container took %s", time.Now().Sub(start))
	}()
	return c.graph.Populate()
}
