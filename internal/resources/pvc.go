package resources

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// BuildPVC builds a standalone PersistentVolumeClaim component (distinct
// from the inline VolumeClaimTemplates a StatefulSet owns), grounded on
// job_statefulset.go's BuildPVC helper.
func BuildPVC(c *engine.Component) (*corev1.PersistentVolumeClaim, error) {
	a := c.EffectiveArgs()
	size := a.String("storage.size", "")
	if size == "" {
		return nil, fmt.Errorf("resources: pvc %s/%s missing required arg storage.size", c.Kind, c.Name)
	}
	pvc, err := buildPVCTemplate(c.Name, a.String("storage.class", ""), size)
	if err != nil {
		return nil, err
	}
	pvc.Namespace = c.Namespace()
	pvc.Labels = buildLabels(c)
	return &pvc, nil
}

func deployPVC(ctx context.Context, client kubernetes.Interface, p *corev1.PersistentVolumeClaim) error {
	cli := client.CoreV1().PersistentVolumeClaims(p.Namespace)
	_, err := cli.Get(ctx, p.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		// PVC spec (size/storageClass) is immutable post-creation; treat a
		// pre-existing claim as already satisfying the declaration.
		klog.Infof("pvc %s/%s already exists, skipping", p.Namespace, p.Name)
	case k8serrors.IsNotFound(err):
		if _, err := cli.Create(ctx, p, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create pvc %q: %w", p.Name, err)
		}
		klog.Infof("pvc %s/%s created", p.Namespace, p.Name)
	default:
		return fmt.Errorf("get pvc %q: %w", p.Name, err)
	}
	return nil
}

func PVCExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		p, err := BuildPVC(c)
		if err != nil {
			klog.Errorf("build pvc %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		if err := deployPVC(ctx, client, p); err != nil {
			klog.Errorf("deploy pvc %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetWaiting()
	}
}

func PVCProbe(client kubernetes.Interface, c *engine.Component) engine.ProbeFunc {
	return func(ctx context.Context) (engine.K8ObjectState, error) {
		p, err := client.CoreV1().PersistentVolumeClaims(c.Namespace()).Get(ctx, c.Name, metav1.GetOptions{})
		if err != nil {
			if k8serrors.IsNotFound(err) {
				return engine.DontExist, nil
			}
			return engine.Init, err
		}
		if p.Status.Phase == corev1.ClaimBound {
			return engine.Ready, nil
		}
		if p.Status.Phase == corev1.ClaimLost {
			return engine.ObjectFailed, nil
		}
		return engine.Init, nil
	}
}

func DeletePVC(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.CoreV1().PersistentVolumeClaims(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
