// Package traits implements the trait-driven child-injection pipeline
// invoked from internal/engine's prepareDeploy hook: a component's own
// args declare traits ("service.enabled", "rbac.enabled", ...) and each
// registered Processor decides whether to add derived children, adapted
// from workflow/traits/processor.go's TraitProcessor/TraitResult pipeline
// onto the flat args-based component model instead of a reflective
// spec.Traits struct.
package traits

import (
	"fmt"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// Processor inspects one component's effective args and returns the
// children it wants injected (nil if the trait doesn't apply). Processors
// must be idempotent: re-running against a tree that already has the
// injected child must be a no-op, guarded by a has-child-named check
// (spec §9).
type Processor interface {
	Name() string
	Apply(c *engine.Component) ([]*engine.Component, error)
}

var registry []Processor

// Register adds a processor to the pipeline, in call order. Mirrors the
// teacher's package-level Register(&XProcessor{}) pattern (config.go,
// init.go, secret.go).
func Register(p Processor) {
	registry = append(registry, p)
}

// ApplyTraits runs every registered processor against c and attaches
// whatever children they return. Installed as internal/engine's
// prepareDeploy hook via SetPrepareDeployHook.
func ApplyTraits(c *engine.Component) error {
	for _, p := range registry {
		children, err := p.Apply(c)
		if err != nil {
			return fmt.Errorf("trait %s: %w", p.Name(), err)
		}
		for _, ch := range children {
			c.AddChild(ch)
		}
	}
	return nil
}

// hasChildNamed reports whether c already owns a child with the given
// name, the idempotence guard spec §9 calls for.
func hasChildNamed(c *engine.Component, name string) bool {
	for _, ch := range c.Children {
		if ch.Name == name {
			return true
		}
	}
	return false
}
