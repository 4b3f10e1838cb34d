package traits

import (
	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func init() {
	Register(&ServiceProcessor{})
}

// ServiceProcessor implements spec.md's concrete example: a Deployment
// with "service.enabled=true" gets an auto-generated child Service named
// "<component>-svc" (scenario 2, spec §8). Grounded on
// original_source/ServiceComponent.cpp's prepareDeploy, which derives one
// ServicePort per container port instead of a single port: the child's
// "service.ports" defaults to every entry the parent declared in
// "pod.ports" (not just the first) so a multi-port container gets a
// multi-port Service without the caller repeating each port, and
// "service.nodePort"/"service.type" are copied over from the parent
// exactly like the original copies only those two "relevant" args onto
// the auto-created Service.
type ServiceProcessor struct{}

func (p *ServiceProcessor) Name() string { return "service" }

func (p *ServiceProcessor) Apply(c *engine.Component) ([]*engine.Component, error) {
	a := c.EffectiveArgs()
	enabled, err := a.Bool("service.enabled", false)
	if err != nil || !enabled {
		return nil, err
	}
	name := c.Name + "-svc"
	if hasChildNamed(c, name) {
		return nil, nil
	}
	ports := a.StringList("pod.ports")
	svc := engine.NewComponent(name, engine.KindService)
	if len(ports) > 0 {
		svc.LocalArgs["service.ports"] = joinPorts(ports)
	}
	svc.LocalArgs["service.selector"] = c.Name
	svc.LocalArgs["metadata.namespace"] = c.Namespace()
	if nodePort := a.String("service.nodePort", ""); nodePort != "" {
		svc.LocalArgs["service.nodePort"] = nodePort
	}
	if svcType := a.String("service.type", ""); svcType != "" {
		svc.LocalArgs["service.type"] = svcType
	}
	return []*engine.Component{svc}, nil
}

func joinPorts(ports []string) string {
	joined := ports[0]
	for _, p := range ports[1:] {
		joined += " " + p
	}
	return joined
}
