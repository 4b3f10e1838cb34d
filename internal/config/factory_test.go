package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/scheme"
	fakeclient "sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func TestNewDispatcherReturnsNonNilDispatcher(t *testing.T) {
	sch := runtime.NewScheme()
	require.NoError(t, scheme.AddToScheme(sch))
	c := fakeclient.NewClientBuilder().WithScheme(sch).Build()

	d := NewDispatcher(c)
	assert.NotNil(t, d)
}

func TestDispatcherNoopOnEmptyBundle(t *testing.T) {
	sch := runtime.NewScheme()
	require.NoError(t, scheme.AddToScheme(sch))
	c := fakeclient.NewClientBuilder().WithScheme(sch).Build()

	d := NewDispatcher(c)
	err := d(context.Background(), nil)
	assert.NoError(t, err, "an empty object bundle must never reach the applicator")

	err = d(context.Background(), []*unstructured.Unstructured{})
	assert.NoError(t, err)
}
