package resources

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func TestNewTaskFactoryDeployDispatchesByKind(t *testing.T) {
	client := fake.NewSimpleClientset()
	factory := NewTaskFactory(client, nil)

	c := engine.NewComponent("cache", engine.KindConfigMap)
	c.LocalArgs["configmap.data"] = "foo=bar"

	exec, closer, probe, producesPods := factory(engine.Create, c)
	require.NotNil(t, exec)
	assert.Nil(t, closer)
	assert.Nil(t, probe)
	assert.False(t, producesPods)

	task := engine.NewTask("deploy", c)
	exec(context.Background(), task)

	got, err := client.CoreV1().ConfigMaps("default").Get(context.Background(), "cache", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "bar", got.Data["foo"])
}

func TestNewTaskFactoryDeployDeploymentWaitsOnEvents(t *testing.T) {
	client := fake.NewSimpleClientset()
	factory := NewTaskFactory(client, nil)

	c := engine.NewComponent("web", engine.KindDeployment)
	c.LocalArgs["pod.image"] = "nginx:latest"

	exec, closer, probe, producesPods := factory(engine.Create, c)
	require.NotNil(t, exec)
	require.NotNil(t, closer)
	require.NotNil(t, probe)
	assert.True(t, producesPods)
}

func TestNewTaskFactoryUnrecognizedKindFallsBackToNoop(t *testing.T) {
	client := fake.NewSimpleClientset()
	factory := NewTaskFactory(client, nil)

	c := engine.NewComponent("root", engine.KindApp)
	exec, closer, probe, producesPods := factory(engine.Create, c)
	assert.Nil(t, exec)
	assert.Nil(t, closer)
	assert.Nil(t, probe)
	assert.False(t, producesPods)
}

func TestNewTaskFactoryHonorsShareIgnoreOnDeploy(t *testing.T) {
	client := fake.NewSimpleClientset()
	factory := NewTaskFactory(client, nil)

	c := engine.NewComponent("shared-cfg", engine.KindConfigMap)
	c.LocalArgs["configmap.data"] = "foo=bar"
	c.LocalArgs["share.name"] = "shared-cfg"
	c.LocalArgs["share.strategy"] = "ignore"

	exec, closer, probe, producesPods := factory(engine.Create, c)
	assert.Nil(t, exec)
	assert.Nil(t, closer)
	assert.Nil(t, probe)
	assert.False(t, producesPods)

	_, err := client.CoreV1().ConfigMaps("default").Get(context.Background(), "shared-cfg", metav1.GetOptions{})
	assert.Error(t, err, "ignored share must never touch the cluster")
}

func TestNewTaskFactoryHonorsShareIgnoreOnDelete(t *testing.T) {
	client := fake.NewSimpleClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "shared-cfg", Namespace: "default"},
	})
	factory := NewTaskFactory(client, nil)

	c := engine.NewComponent("shared-cfg", engine.KindConfigMap)
	c.LocalArgs["share.name"] = "shared-cfg"
	c.LocalArgs["share.strategy"] = "ignore"

	exec, _, _, _ := factory(engine.Remove, c)
	assert.Nil(t, exec)

	_, err := client.CoreV1().ConfigMaps("default").Get(context.Background(), "shared-cfg", metav1.GetOptions{})
	assert.NoError(t, err, "ignored share must leave the owner's copy alone")
}

func TestNewTaskFactoryDeleteDispatchesByKind(t *testing.T) {
	client := fake.NewSimpleClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "cache", Namespace: "default"},
	})
	factory := NewTaskFactory(client, nil)

	c := engine.NewComponent("cache", engine.KindConfigMap)
	exec, _, _, _ := factory(engine.Remove, c)
	require.NotNil(t, exec)

	task := engine.NewTask("delete", c)
	exec(context.Background(), task)

	_, err := client.CoreV1().ConfigMaps("default").Get(context.Background(), "cache", metav1.GetOptions{})
	assert.Error(t, err)
}
