package traits

import (
	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func init() {
	Register(&ConfigMapProcessor{})
}

// ConfigMapProcessor implements spec.md's second concrete example:
// "auto-ConfigMap volume" injection. A component with "configmap.auto=true"
// gets a child ConfigMap named "<component>-config" carrying its
// "configmap.data" arg, grounded on the teacher's config.go trait (which
// builds the ConfigMap + Volume + VolumeMount as one unit). Only the
// ConfigMap-creation half is ported: the ConfigMap is not mounted onto the
// parent's containers, and the pod-spec builders (internal/resources) read
// no volume or volumeMount args.
type ConfigMapProcessor struct{}

func (p *ConfigMapProcessor) Name() string { return "config" }

func (p *ConfigMapProcessor) Apply(c *engine.Component) ([]*engine.Component, error) {
	auto, err := c.EffectiveArgs().Bool("configmap.auto", false)
	if err != nil || !auto {
		return nil, err
	}
	name := c.Name + "-config"
	if hasChildNamed(c, name) {
		return nil, nil
	}
	cm := engine.NewComponent(name, engine.KindConfigMap)
	if data := c.EffectiveArgs().String("configmap.data", ""); data != "" {
		cm.LocalArgs["configmap.data"] = data
	}
	cm.LocalArgs["metadata.namespace"] = c.Namespace()
	return []*engine.Component{cm}, nil
}
