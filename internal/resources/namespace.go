package resources

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/config"
	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// BuildNamespace builds the auto-injected (or explicit) Namespace object
// for a root component (spec §3 "init spawns auto-children").
func BuildNamespace(c *engine.Component) *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Labels: buildLabels(c)},
	}
}

func deployNamespace(ctx context.Context, client kubernetes.Interface, ns *corev1.Namespace) error {
	cli := client.CoreV1().Namespaces()
	if _, err := cli.Get(ctx, ns.Name, metav1.GetOptions{}); err == nil {
		return nil
	} else if !k8serrors.IsNotFound(err) {
		return fmt.Errorf("get namespace %q: %w", ns.Name, err)
	}
	if _, err := cli.Create(ctx, ns, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("create namespace %q: %w", ns.Name, err)
	}
	klog.Infof("namespace %s created", ns.Name)
	return nil
}

// deployNamespaceViaDispatcher applies the Namespace as an unstructured
// bundle through internal/config.Dispatcher (kubevela's Applicator)
// instead of the hand-rolled get-then-create above; used whenever a
// cluster's Driver supplies a Runtime client (the normal case for a real
// run — see cmd/k8deployer's wiring), the plain client-go path stays the
// fallback for callers (tests, factories built without a Runtime client)
// that don't.
func deployNamespaceViaDispatcher(ctx context.Context, dispatcher config.Dispatcher, ns *corev1.Namespace) error {
	ns.TypeMeta = metav1.TypeMeta{Kind: "Namespace", APIVersion: "v1"}
	raw, err := runtime.DefaultUnstructuredConverter.ToUnstructured(ns)
	if err != nil {
		return fmt.Errorf("convert namespace %q to unstructured: %w", ns.Name, err)
	}
	u := &unstructured.Unstructured{Object: raw}
	if err := dispatcher(ctx, []*unstructured.Unstructured{u}); err != nil {
		return fmt.Errorf("apply namespace %q: %w", ns.Name, err)
	}
	klog.Infof("namespace %s applied", ns.Name)
	return nil
}

func NamespaceExecutor(client kubernetes.Interface, dispatcher config.Dispatcher, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		ns := BuildNamespace(c)
		var err error
		if dispatcher != nil {
			err = deployNamespaceViaDispatcher(ctx, dispatcher, ns)
		} else {
			err = deployNamespace(ctx, client, ns)
		}
		if err != nil {
			klog.Errorf("deploy namespace %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetWaiting()
	}
}

// NamespaceProbe waits for the namespace to report phase Active after
// creation (it is essentially instantaneous, but Active confirms the API
// server has finished admitting it before dependents deploy into it).
func NamespaceProbe(client kubernetes.Interface, c *engine.Component) engine.ProbeFunc {
	return func(ctx context.Context) (engine.K8ObjectState, error) {
		ns, err := client.CoreV1().Namespaces().Get(ctx, c.Name, metav1.GetOptions{})
		if err != nil {
			if k8serrors.IsNotFound(err) {
				return engine.DontExist, nil
			}
			return engine.Init, err
		}
		if ns.Status.Phase == corev1.NamespaceActive {
			return engine.Ready, nil
		}
		return engine.Init, nil
	}
}

func DeleteNamespace(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.CoreV1().Namespaces().Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
