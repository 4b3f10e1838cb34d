package resources

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// BuildDeployment constructs a Deployment from a component's effective
// args, the way job_statefulset.go's GenerateStoreService builds a
// StatefulSet from model.Properties.
func BuildDeployment(c *engine.Component) (*appsv1.Deployment, error) {
	p, err := resolvePodSpecArgs(c)
	if err != nil {
		return nil, err
	}
	labels := buildLabels(c)
	replicas := int32(p.Replicas)

	strategy := updateStrategy(c.EffectiveArgs().String("update.strategy", "rolling"))

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      c.Name,
			Namespace: c.Namespace(),
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Strategy: strategy,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec:       buildPodSpec(c.Name, p),
			},
		},
	}, nil
}

func buildPodSpec(name string, p podSpecArgs) corev1.PodSpec {
	var containerPorts []corev1.ContainerPort
	for _, port := range p.Ports {
		containerPorts = append(containerPorts, corev1.ContainerPort{ContainerPort: port})
	}
	var env []corev1.EnvVar
	for _, e := range p.Env {
		env = append(env, corev1.EnvVar{Name: e.Name, Value: e.Value})
	}
	return corev1.PodSpec{
		Containers: []corev1.Container{
			{
				Name:  name,
				Image: p.Image,
				Ports: containerPorts,
				Env:   env,
				Args:  p.Args,
			},
		},
	}
}

// updateStrategy maps the "update.strategy" arg (spec_full §C) onto the
// two DeploymentStrategyType values the Deployment API supports:
// "recreate" selects Recreate and every other value, including canary and
// blue-green, selects RollingUpdate. No trait implements canary or
// blue-green rollouts.
func updateStrategy(v string) appsv1.DeploymentStrategy {
	switch v {
	case "recreate":
		return appsv1.DeploymentStrategy{Type: appsv1.RecreateDeploymentStrategyType}
	default:
		return appsv1.DeploymentStrategy{Type: appsv1.RollingUpdateDeploymentStrategyType}
	}
}

// deployDeployment issues the get-then-create-or-update call, mirroring
// job_configmap.go's deployConfigMap idempotence pattern.
func deployDeployment(ctx context.Context, client kubernetes.Interface, d *appsv1.Deployment) error {
	cli := client.AppsV1().Deployments(d.Namespace)
	existing, err := cli.Get(ctx, d.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		d.ResourceVersion = existing.ResourceVersion
		if _, err := cli.Update(ctx, d, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("update deployment %q: %w", d.Name, err)
		}
		klog.Infof("deployment %s/%s updated", d.Namespace, d.Name)
	case k8serrors.IsNotFound(err):
		if _, err := cli.Create(ctx, d, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create deployment %q: %w", d.Name, err)
		}
		klog.Infof("deployment %s/%s created", d.Namespace, d.Name)
	default:
		return fmt.Errorf("get deployment %q: %w", d.Name, err)
	}
	return nil
}

// DeploymentExecutor builds the CREATE-mode task executor for a Deployment
// component: apply the object, then move to WAITING so pod-created
// correlation and readiness probing (spec §4.5/§4.7) finish the task.
func DeploymentExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		d, err := BuildDeployment(c)
		if err != nil {
			klog.Errorf("build deployment %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		if err := deployDeployment(ctx, client, d); err != nil {
			klog.Errorf("deploy deployment %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetWaiting()
	}
}

// DeploymentEventCloser correlates pod-created events against the
// component's declared pod.replicas (spec §4.7).
func DeploymentEventCloser(c *engine.Component) engine.EventCloser {
	p, err := resolvePodSpecArgs(c)
	if err != nil {
		return nil
	}
	return engine.NewPodCreatedCloser(p.Replicas)
}

// DeploymentProbe issues a GET against the Deployment and classifies its
// rollout status per spec §4.8.
func DeploymentProbe(client kubernetes.Interface, c *engine.Component) engine.ProbeFunc {
	return func(ctx context.Context) (engine.K8ObjectState, error) {
		d, err := client.AppsV1().Deployments(c.Namespace()).Get(ctx, c.Name, metav1.GetOptions{})
		if err != nil {
			if k8serrors.IsNotFound(err) {
				return engine.DontExist, nil
			}
			return engine.Init, err
		}
		wanted := int32(1)
		if d.Spec.Replicas != nil {
			wanted = *d.Spec.Replicas
		}
		if d.Status.UpdatedReplicas >= wanted && d.Status.AvailableReplicas >= wanted {
			return engine.Ready, nil
		}
		for _, cond := range d.Status.Conditions {
			if cond.Type == appsv1.DeploymentReplicaFailure && cond.Status == corev1.ConditionTrue {
				return engine.ObjectFailed, nil
			}
		}
		return engine.Init, nil
	}
}

// DeleteDeployment builds the DELETE-mode executor for a Deployment.
func DeleteDeployment(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.AppsV1().Deployments(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
