package resources

import (
	"context"
	"fmt"

	networkingv1 "k8s.io/api/networking/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// BuildIngress builds a single-host, single-path Ingress from
// "ingress.host"/"ingress.path"/"ingress.serviceName"/"ingress.servicePort",
// grounded on job_ingress.go's DeployIngressJobCtl.
func BuildIngress(c *engine.Component) (*networkingv1.Ingress, error) {
	a := c.EffectiveArgs()
	host := a.String("ingress.host", "")
	if host == "" {
		return nil, fmt.Errorf("resources: ingress %s/%s missing required arg ingress.host", c.Kind, c.Name)
	}
	path := a.String("ingress.path", "/")
	svcName := a.String("ingress.serviceName", c.Name)
	svcPort, err := a.Int("ingress.servicePort", 80)
	if err != nil {
		return nil, err
	}
	pathType := networkingv1.PathTypePrefix

	return &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Namespace: c.Namespace(), Labels: buildLabels(c)},
		Spec: networkingv1.IngressSpec{
			Rules: []networkingv1.IngressRule{
				{
					Host: host,
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     path,
									PathType: &pathType,
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: svcName,
											Port: networkingv1.ServiceBackendPort{Number: int32(svcPort)},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}, nil
}

func deployIngress(ctx context.Context, client kubernetes.Interface, ing *networkingv1.Ingress) error {
	cli := client.NetworkingV1().Ingresses(ing.Namespace)
	existing, err := cli.Get(ctx, ing.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		ing.ResourceVersion = existing.ResourceVersion
		if _, err := cli.Update(ctx, ing, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("update ingress %q: %w", ing.Name, err)
		}
		klog.Infof("ingress %s/%s updated", ing.Namespace, ing.Name)
	case k8serrors.IsNotFound(err):
		if _, err := cli.Create(ctx, ing, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create ingress %q: %w", ing.Name, err)
		}
		klog.Infof("ingress %s/%s created", ing.Namespace, ing.Name)
	default:
		return fmt.Errorf("get ingress %q: %w", ing.Name, err)
	}
	return nil
}

func IngressExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		ing, err := BuildIngress(c)
		if err != nil {
			klog.Errorf("build ingress %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		if err := deployIngress(ctx, client, ing); err != nil {
			klog.Errorf("deploy ingress %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetWaiting()
	}
}

func IngressProbe(client kubernetes.Interface, c *engine.Component) engine.ProbeFunc {
	return func(ctx context.Context) (engine.K8ObjectState, error) {
		ing, err := client.NetworkingV1().Ingresses(c.Namespace()).Get(ctx, c.Name, metav1.GetOptions{})
		if err != nil {
			if k8serrors.IsNotFound(err) {
				return engine.DontExist, nil
			}
			return engine.Init, err
		}
		if len(ing.Status.LoadBalancer.Ingress) > 0 {
			return engine.Ready, nil
		}
		return engine.Init, nil
	}
}

func DeleteIngress(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.NetworkingV1().Ingresses(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
