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

// BuildConfigMap reads the "configmap.data" arg, a space-separated list of
// key=value pairs, into the ConfigMap's Data map, the fixed-schema counterpart to job_configmap.go's free-form
// model.ConfigMapInput.Conf.
func BuildConfigMap(c *engine.Component) *corev1.ConfigMap {
	data := c.EffectiveArgs().KVMap("configmap.data")
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Namespace: c.Namespace(), Labels: buildLabels(c)},
		Data:       data,
	}
}

func deployConfigMap(ctx context.Context, client kubernetes.Interface, cm *corev1.ConfigMap) error {
	cli := client.CoreV1().ConfigMaps(cm.Namespace)
	existing, err := cli.Get(ctx, cm.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		cm.ResourceVersion = existing.ResourceVersion
		if _, err := cli.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("update configmap %q: %w", cm.Name, err)
		}
		klog.Infof("configmap %s/%s updated", cm.Namespace, cm.Name)
	case k8serrors.IsNotFound(err):
		if _, err := cli.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create configmap %q: %w", cm.Name, err)
		}
		klog.Infof("configmap %s/%s created", cm.Namespace, cm.Name)
	default:
		return fmt.Errorf("get configmap %q: %w", cm.Name, err)
	}
	return nil
}

func ConfigMapExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		cm := BuildConfigMap(c)
		if err := deployConfigMap(ctx, client, cm); err != nil {
			klog.Errorf("deploy configmap %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetDone()
	}
}

func DeleteConfigMap(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.CoreV1().ConfigMaps(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
