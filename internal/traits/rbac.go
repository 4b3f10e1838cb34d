package traits

import (
	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func init() {
	Register(&RBACProcessor{})
}

// RBACProcessor materializes a ServiceAccount + Role + RoleBinding trio
// for a component declaring "rbac.enabled=true", grounded on
// workflow/traits/rbac.go's RBACProcessor (ServiceAccount/Role/RoleBinding
// triple) but onto three separate auto-injected engine.Component children
// instead of raw objects, so the usual task/dependency machinery drives
// their creation order.
type RBACProcessor struct{}

func (p *RBACProcessor) Name() string { return "rbac" }

func (p *RBACProcessor) Apply(c *engine.Component) ([]*engine.Component, error) {
	a := c.EffectiveArgs()
	enabled, err := a.Bool("rbac.enabled", false)
	if err != nil || !enabled {
		return nil, err
	}

	saName := c.Name + "-sa"
	roleName := c.Name + "-role"
	bindingName := c.Name + "-rb"
	if hasChildNamed(c, saName) {
		return nil, nil
	}

	sa := engine.NewComponent(saName, engine.KindServiceAccount)
	sa.LocalArgs["metadata.namespace"] = c.Namespace()

	role := engine.NewComponent(roleName, engine.KindRole)
	role.LocalArgs["metadata.namespace"] = c.Namespace()
	if rules := a.String("rbac.rules", ""); rules != "" {
		role.LocalArgs["rbac.rules"] = rules
	}

	binding := engine.NewComponent(bindingName, engine.KindRoleBinding)
	binding.LocalArgs["metadata.namespace"] = c.Namespace()
	binding.LocalArgs["rbac.roleRef"] = roleName
	binding.LocalArgs["rbac.serviceAccount"] = saName
	binding.Depends = append(binding.Depends, saName, roleName)

	return []*engine.Component{sa, role, binding}, nil
}
