package engine

import (
	"context"

	"k8s.io/klog/v2"
)

// DeleteCaller issues one DELETE against the cluster for a task's
// resource. internal/resources supplies the concrete client-go call;
// engine only knows how to classify the outcome.
type DeleteCaller func(ctx context.Context) error

// NotFoundClassifier reports whether err represents a 404-equivalent
// response. Installed by internal/kube so engine never imports
// k8s.io/apimachinery directly.
var NotFoundClassifier func(err error) bool

// SendDelete builds the generic delete Executor described in spec §4.9:
// DELETE, mark DONE on 2xx or 404 (idempotent), otherwise FAILED unless
// ignoreErrors.
func SendDelete(ignoreErrors bool, call DeleteCaller) Executor {
	return func(ctx context.Context, t *Task) {
		t.setState(EXECUTING, false)
		err := call(ctx)
		switch {
		case err == nil:
			t.setState(DONE, true)
		case NotFoundClassifier != nil && NotFoundClassifier(err):
			t.setState(DONE, true)
		case ignoreErrors:
			klog.Warningf("delete %s/%s: %v (ignored)", t.Component.Kind, t.Name, err)
			t.setState(DONE, true)
		default:
			klog.Warningf("delete %s/%s: %v", t.Component.Kind, t.Name, err)
			t.setState(FAILED, true)
		}
	}
}
