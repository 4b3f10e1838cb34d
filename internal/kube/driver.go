package kube

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
	runtimeclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func init() {
	engine.NotFoundClassifier = apierrors.IsNotFound
}

// reconnect backoff bounds for the pod watch (Open Question #3, spec §9):
// a transient watch drop should not spin the cluster driver, but it must
// not give up either, since the scheduler has no other way to learn about
// pod readiness once a watch dies silently.
const (
	backoffInitial = 500 * time.Millisecond
	backoffMax     = 30 * time.Second
)

// Driver implements engine.ClusterRunner against one real cluster: it
// watches Pod events cluster-wide (scoped down by LabelSelector, taken
// from the cluster target's "labelSelector" variable) and turns each into an engine.ClusterEvent fed to the
// scheduler via AttachEvent, which is safe to call from any goroutine.
type Driver struct {
	Client        kubernetes.Interface
	Runtime       runtimeclient.Client
	LabelSelector string
}

// NewDriver builds a Driver from a ClientConfig, matching one cluster
// target's kubeconfig (spec §6: one driver per cluster). Runtime is a
// second client over the same rest.Config, built alongside Client for the
// Namespace apply path's kubevela Applicator (internal/config.Dispatcher).
func NewDriver(cfg ClientConfig, labelSelector string) (*Driver, error) {
	cs, restCfg, err := NewClientset(cfg)
	if err != nil {
		return nil, err
	}
	rc, err := NewRuntimeClient(restCfg)
	if err != nil {
		return nil, err
	}
	return &Driver{Client: cs, Runtime: rc, LabelSelector: labelSelector}, nil
}

// WatchEvents implements engine.ClusterRunner. It never returns before ctx
// is done; a dropped watch is reopened after an exponential backoff that
// resets once a watch stays open long enough to deliver an event.
func (d *Driver) WatchEvents(ctx context.Context, sched *engine.Scheduler) {
	backoff := backoffInitial
	for {
		if ctx.Err() != nil {
			return
		}
		delivered, err := d.watchOnce(ctx, sched)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			klog.Warningf("kube: pod watch error: %v", err)
		}
		if delivered {
			backoff = backoffInitial
		} else {
			backoff *= 2
			if backoff > backoffMax {
				backoff = backoffMax
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// watchOnce opens a single watch and pumps it until it closes or ctx ends.
// Returns whether at least one event was delivered, so the caller can
// decide whether the failure looks transient or immediate.
func (d *Driver) watchOnce(ctx context.Context, sched *engine.Scheduler) (bool, error) {
	w, err := d.Client.CoreV1().Pods("").Watch(ctx, metav1.ListOptions{
		LabelSelector: d.LabelSelector,
		Watch:         true,
	})
	if err != nil {
		return false, err
	}
	defer w.Stop()

	delivered := false
	for {
		select {
		case <-ctx.Done():
			return delivered, nil
		case ev, ok := <-w.ResultChan():
			if !ok {
				return delivered, nil
			}
			if ce := translatePodEvent(ev); ce != nil {
				sched.AttachEvent(ce)
				delivered = true
			}
		}
	}
}

func translatePodEvent(ev watch.Event) *engine.ClusterEvent {
	pod, ok := ev.Object.(*corev1.Pod)
	if !ok {
		return nil
	}
	var reason string
	switch ev.Type {
	case watch.Added:
		reason = "Created"
	case watch.Modified:
		reason = "Updated"
	case watch.Deleted:
		reason = "Deleted"
	default:
		return nil
	}
	return &engine.ClusterEvent{
		Kind:      "Pod",
		Namespace: pod.Namespace,
		Name:      pod.Name,
		Reason:    reason,
	}
}
