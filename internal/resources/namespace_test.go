package resources

import (
	"context"
	"testing"

	"github.com/oam-dev/kubevela/pkg/utils/apply"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgecrew-perf6/k8deployer/internal/config"
	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func TestNamespaceExecutorFallsBackToClientGoWithoutDispatcher(t *testing.T) {
	client := fake.NewSimpleClientset()
	c := engine.NewComponent("team-a", engine.KindNamespace)

	exec := NamespaceExecutor(client, nil, c)
	task := engine.NewTask("deploy", c)
	exec(context.Background(), task)

	got, err := client.CoreV1().Namespaces().Get(context.Background(), "team-a", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "team-a", got.Name)
	assert.Equal(t, engine.WAITING, task.State())
}

func TestNamespaceExecutorUsesDispatcherWhenSupplied(t *testing.T) {
	client := fake.NewSimpleClientset()
	c := engine.NewComponent("team-b", engine.KindNamespace)

	var captured []*unstructured.Unstructured
	dispatcher := config.Dispatcher(func(ctx context.Context, objs []*unstructured.Unstructured, _ ...apply.ApplyOption) error {
		captured = append(captured, objs...)
		return nil
	})

	exec := NamespaceExecutor(client, dispatcher, c)
	task := engine.NewTask("deploy", c)
	exec(context.Background(), task)

	require.Len(t, captured, 1)
	assert.Equal(t, "team-b", captured[0].GetName())
	assert.Equal(t, "Namespace", captured[0].GetKind())
	assert.Equal(t, "v1", captured[0].GetAPIVersion())
	assert.Equal(t, engine.WAITING, task.State())

	_, err := client.CoreV1().Namespaces().Get(context.Background(), "team-b", metav1.GetOptions{})
	assert.Error(t, err, "the dispatcher path must never fall through to the client-go get-then-create path")
}

func TestNamespaceExecutorReportsDispatcherFailure(t *testing.T) {
	client := fake.NewSimpleClientset()
	c := engine.NewComponent("team-c", engine.KindNamespace)

	dispatcher := config.Dispatcher(func(ctx context.Context, objs []*unstructured.Unstructured, _ ...apply.ApplyOption) error {
		return assert.AnError
	})

	exec := NamespaceExecutor(client, dispatcher, c)
	task := engine.NewTask("deploy", c)
	exec(context.Background(), task)

	assert.Equal(t, engine.FAILED, task.State())
}
