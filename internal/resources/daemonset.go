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

// BuildDaemonSet has no replicas knob (one pod per matching node), unlike
// Deployment/StatefulSet.
func BuildDaemonSet(c *engine.Component) (*appsv1.DaemonSet, error) {
	p, err := resolvePodSpecArgs(c)
	if err != nil {
		return nil, err
	}
	labels := buildLabels(c)
	return &appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Namespace: c.Namespace(), Labels: labels},
		Spec: appsv1.DaemonSetSpec{
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec:       buildPodSpec(c.Name, p),
			},
		},
	}, nil
}

func deployDaemonSet(ctx context.Context, client kubernetes.Interface, d *appsv1.DaemonSet) error {
	cli := client.AppsV1().DaemonSets(d.Namespace)
	existing, err := cli.Get(ctx, d.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		d.ResourceVersion = existing.ResourceVersion
		if _, err := cli.Update(ctx, d, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("update daemonset %q: %w", d.Name, err)
		}
		klog.Infof("daemonset %s/%s updated", d.Namespace, d.Name)
	case k8serrors.IsNotFound(err):
		if _, err := cli.Create(ctx, d, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create daemonset %q: %w", d.Name, err)
		}
		klog.Infof("daemonset %s/%s created", d.Namespace, d.Name)
	default:
		return fmt.Errorf("get daemonset %q: %w", d.Name, err)
	}
	return nil
}

func DaemonSetExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		d, err := BuildDaemonSet(c)
		if err != nil {
			klog.Errorf("build daemonset %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		if err := deployDaemonSet(ctx, client, d); err != nil {
			klog.Errorf("deploy daemonset %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetWaiting()
	}
}

func DaemonSetEventCloser(c *engine.Component) engine.EventCloser {
	// A DaemonSet's desired count depends on node scheduling, not a fixed
	// replicas arg; one observed pod create is enough to call it started
	// and leave completion to the readiness probe.
	return engine.NewPodCreatedCloser(1)
}

func DaemonSetProbe(client kubernetes.Interface, c *engine.Component) engine.ProbeFunc {
	return func(ctx context.Context) (engine.K8ObjectState, error) {
		d, err := client.AppsV1().DaemonSets(c.Namespace()).Get(ctx, c.Name, metav1.GetOptions{})
		if err != nil {
			if k8serrors.IsNotFound(err) {
				return engine.DontExist, nil
			}
			return engine.Init, err
		}
		if d.Status.DesiredNumberScheduled > 0 && d.Status.NumberReady >= d.Status.DesiredNumberScheduled {
			return engine.Ready, nil
		}
		return engine.Init, nil
	}
}

func DeleteDaemonSet(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.AppsV1().DaemonSets(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
