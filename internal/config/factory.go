package config

import (
	"context"
	"fmt"

	"github.com/oam-dev/kubevela/pkg/utils/apply"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Dispatcher applies a bundle of unstructured objects, create-or-patching
// each one against the cluster. Kept from pkg/apiserver/config/factory.go's
// own Dispatcher type — there it backed an unimplemented
// defaultDispatcher stub; here it is wired to kubevela's Applicator.
type Dispatcher func(ctx context.Context, objs []*unstructured.Unstructured, opts ...apply.ApplyOption) error

// NewDispatcher builds a Dispatcher over a controller-runtime client,
// used by the Namespace executor's unstructured-apply path (spec's fixed
// kind enum, §4.1, still governs which kinds exist; this only changes
// how the Namespace kind's own object gets create-or-patched).
func NewDispatcher(c client.Client) Dispatcher {
	applicator := apply.NewAPIApplicator(c)
	return func(ctx context.Context, objs []*unstructured.Unstructured, opts ...apply.ApplyOption) error {
		for _, obj := range objs {
			if err := applicator.Apply(ctx, obj, opts...); err != nil {
				return fmt.Errorf("apply %s %s/%s: %w", obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
			}
		}
		return nil
	}
}
