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

// BuildSecret mirrors BuildConfigMap's "<kind>.data" key=value convention;
// values are stored as opaque string data, matching DeploySecretJobCtl's
// assumption of a fully-formed intent object rather than reference-only
// input.
func BuildSecret(c *engine.Component) *corev1.Secret {
	a := c.EffectiveArgs()
	strData := a.KVMap("secret.data")
	secretType := corev1.SecretType(a.String("secret.type", string(corev1.SecretTypeOpaque)))
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Namespace: c.Namespace(), Labels: buildLabels(c)},
		StringData: strData,
		Type:       secretType,
	}
}

func deploySecret(ctx context.Context, client kubernetes.Interface, s *corev1.Secret) error {
	cli := client.CoreV1().Secrets(s.Namespace)
	existing, err := cli.Get(ctx, s.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		s.ResourceVersion = existing.ResourceVersion
		if _, err := cli.Update(ctx, s, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("update secret %q: %w", s.Name, err)
		}
		klog.Infof("secret %s/%s updated", s.Namespace, s.Name)
	case k8serrors.IsNotFound(err):
		if _, err := cli.Create(ctx, s, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create secret %q: %w", s.Name, err)
		}
		klog.Infof("secret %s/%s created", s.Namespace, s.Name)
	default:
		return fmt.Errorf("get secret %q: %w", s.Name, err)
	}
	return nil
}

func SecretExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		s := BuildSecret(c)
		if err := deploySecret(ctx, client, s); err != nil {
			klog.Errorf("deploy secret %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetDone()
	}
}

func DeleteSecret(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.CoreV1().Secrets(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
