// Package resources turns a component's resolved arguments into concrete
// Kubernetes API objects and the get-then-create-or-update calls that
// deploy or delete them, adapted from the teacher's
// event/workflow/job/job_*.go Generate*/deploy* functions into a single
// per-kind builder consumed by internal/engine's task-factory hook.
package resources

import (
	"fmt"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// buildLabels mirrors the teacher's buildLabels/BuildLabels: every object
// this package creates carries the root app name and its own component
// name so a cluster-wide label selector can find everything one run
// touched.
func buildLabels(c *engine.Component) map[string]string {
	labels := map[string]string{
		"app":                         c.Root().Name,
		"app.kubernetes.io/component": c.Name,
	}
	for k, v := range c.Labels {
		labels[k] = v
	}
	return labels
}

// podSpecArgs is the subset of a component's effective args shared by
// every pod-producing kind (Deployment/StatefulSet/DaemonSet/Job).
type podSpecArgs struct {
	Image    string
	Replicas int
	Ports    []int32
	Env      []engine.EnvVar
	Args     []string
}

func resolvePodSpecArgs(c *engine.Component) (podSpecArgs, error) {
	a := c.EffectiveArgs()
	image := a.String("pod.image", "")
	if image == "" {
		return podSpecArgs{}, fmt.Errorf("resources: component %s/%s missing required arg pod.image", c.Kind, c.Name)
	}
	replicas, err := a.Int("pod.replicas", 1)
	if err != nil {
		return podSpecArgs{}, err
	}
	var ports []int32
	for _, p := range a.StringList("pod.ports") {
		var port int32
		if _, err := fmt.Sscanf(p, "%d", &port); err == nil {
			ports = append(ports, port)
		}
	}
	return podSpecArgs{
		Image:    image,
		Replicas: replicas,
		Ports:    ports,
		Env:      a.EnvList("pod.env"),
		Args:     a.StringList("pod.args"),
	}, nil
}
