package resources

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	applyv1 "k8s.io/client-go/applyconfigurations/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// buildServicePorts turns "service.ports" (one entry per container port,
// set by the ServiceProcessor trait from the parent's "pod.ports") or the
// single-port "service.port"/"service.targetPort" pair (set directly by a
// caller that isn't going through the trait) into one ServicePort per
// entry, grounded on original_source/ServiceComponent.cpp's port loop:
// "service.nodePort" is only ever applied to the first port, matching the
// original's cnt==1 guard.
func buildServicePorts(c *engine.Component, a *engine.Args) ([]*applyv1.ServicePortApplyConfiguration, error) {
	nodePort, err := a.Int("service.nodePort", 0)
	if err != nil {
		return nil, err
	}

	portList := a.StringList("service.ports")
	if len(portList) == 0 {
		single := a.String("service.port", "")
		if single == "" {
			return nil, fmt.Errorf("resources: service %s/%s missing required arg service.port or service.ports", c.Kind, c.Name)
		}
		portList = []string{single}
	}

	ports := make([]*applyv1.ServicePortApplyConfiguration, 0, len(portList))
	for i, raw := range portList {
		port, err := parsePort(raw)
		if err != nil {
			return nil, fmt.Errorf("resources: service %s/%s: %w", c.Kind, c.Name, err)
		}
		targetPort := port
		if len(portList) == 1 {
			if tp, err := a.Int("service.targetPort", port); err == nil {
				targetPort = tp
			}
		}

		sp := applyv1.ServicePort().
			WithName(fmt.Sprintf("%s-%d", c.Name, port)).
			WithPort(int32(port)).
			WithTargetPort(intstr.FromInt32(int32(targetPort))).
			WithProtocol(corev1.ProtocolTCP)
		if i == 0 && nodePort > 0 {
			sp = sp.WithNodePort(int32(nodePort))
		}
		ports = append(ports, sp)
	}
	return ports, nil
}

func parsePort(raw string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(raw, "%d", &port); err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", raw, err)
	}
	return port, nil
}

// BuildServiceApplyConfig builds a declarative Service apply configuration
// from "service.ports" (or the single-port "service.port" fallback),
// grounded on job_service.go's GenerateService for the object shape and
// on original_source/ServiceComponent.cpp's prepareDeploy for the
// multi-port/nodePort derivation.
func BuildServiceApplyConfig(c *engine.Component) (*applyv1.ServiceApplyConfiguration, error) {
	a := c.EffectiveArgs()
	svcPorts, err := buildServicePorts(c, a)
	if err != nil {
		return nil, err
	}

	serviceType := a.String("service.type", string(corev1.ServiceTypeClusterIP))
	if !a.Has("service.type") {
		if nodePort, _ := a.Int("service.nodePort", 0); nodePort > 0 {
			// original_source/ServiceComponent.cpp: an explicit nodePort
			// with no explicit type implies NodePort.
			serviceType = string(corev1.ServiceTypeNodePort)
		}
	}

	selector := map[string]string{"app.kubernetes.io/component": a.String("service.selector", c.Name)}

	svc := applyv1.Service(c.Name, c.Namespace()).
		WithLabels(buildLabels(c)).
		WithSpec(applyv1.ServiceSpec().
			WithSelector(selector).
			WithPorts(svcPorts...).
			WithType(corev1.ServiceType(serviceType))).
		WithKind("Service").
		WithAPIVersion("v1").
		WithName(c.Name).
		WithNamespace(c.Namespace())
	return svc, nil
}

// applyService get-or-creates/updates the Service, copying over the
// immutable fields client-go requires an Update to preserve (clusterIP and
// friends), matching job_service.go's ApplyService.
func applyService(ctx context.Context, client kubernetes.Interface, svc *applyv1.ServiceApplyConfiguration) error {
	serviceType := corev1.ServiceTypeClusterIP
	if svc.Spec.Type != nil {
		serviceType = *svc.Spec.Type
	}
	core := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: *svc.Name, Namespace: *svc.Namespace, Labels: svc.Labels},
		Spec: corev1.ServiceSpec{
			Type:     serviceType,
			Selector: svc.Spec.Selector,
			Ports:    make([]corev1.ServicePort, len(svc.Spec.Ports)),
		},
	}
	for i, p := range svc.Spec.Ports {
		var tp intstr.IntOrString
		if p.TargetPort != nil {
			tp = *p.TargetPort
		}
		name := ""
		if p.Name != nil {
			name = *p.Name
		}
		var nodePort int32
		if p.NodePort != nil {
			nodePort = *p.NodePort
		}
		core.Spec.Ports[i] = corev1.ServicePort{Name: name, Port: *p.Port, TargetPort: tp, NodePort: nodePort, Protocol: corev1.ProtocolTCP}
	}

	cli := client.CoreV1().Services(core.Namespace)
	existing, err := cli.Get(ctx, core.Name, metav1.GetOptions{})
	if err != nil {
		if k8serrors.IsNotFound(err) {
			if _, err := cli.Create(ctx, core, metav1.CreateOptions{}); err != nil {
				return fmt.Errorf("create service %q: %w", core.Name, err)
			}
			klog.Infof("service %s/%s created", core.Namespace, core.Name)
			return nil
		}
		return fmt.Errorf("get service %q: %w", core.Name, err)
	}
	core.ResourceVersion = existing.ResourceVersion
	core.Spec.ClusterIP = existing.Spec.ClusterIP
	core.Spec.ClusterIPs = existing.Spec.ClusterIPs
	if _, err := cli.Update(ctx, core, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("update service %q: %w", core.Name, err)
	}
	klog.Infof("service %s/%s updated", core.Namespace, core.Name)
	return nil
}

func ServiceExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		svc, err := BuildServiceApplyConfig(c)
		if err != nil {
			klog.Errorf("build service %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		if err := applyService(ctx, client, svc); err != nil {
			klog.Errorf("deploy service %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetDone()
	}
}

// ServiceProbe classifies Service existence only; there is no readiness
// concept beyond the object existing (spec §4.8 applies it only to kinds
// where READY is meaningful, but Service is listed Probable to let a
// dependent component block on its creation succeeding).
func ServiceProbe(client kubernetes.Interface, c *engine.Component) engine.ProbeFunc {
	return func(ctx context.Context) (engine.K8ObjectState, error) {
		_, err := client.CoreV1().Services(c.Namespace()).Get(ctx, c.Name, metav1.GetOptions{})
		if err != nil {
			if k8serrors.IsNotFound(err) {
				return engine.DontExist, nil
			}
			return engine.Init, err
		}
		return engine.Ready, nil
	}
}

func DeleteService(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.CoreV1().Services(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
