package resources

import (
	"testing"

	corev1 "k8s.io/api/core/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func TestBuildServiceApplyConfigSinglePortFallback(t *testing.T) {
	c := engine.NewComponent("web-svc", engine.KindService)
	c.LocalArgs["service.port"] = "8080"

	svc, err := BuildServiceApplyConfig(c)
	require.NoError(t, err)
	require.Len(t, svc.Spec.Ports, 1)
	assert.Equal(t, int32(8080), *svc.Spec.Ports[0].Port)
	assert.Equal(t, corev1.ServiceTypeClusterIP, *svc.Spec.Type)
}

func TestBuildServiceApplyConfigOnePortPerContainerPort(t *testing.T) {
	c := engine.NewComponent("web-svc", engine.KindService)
	c.LocalArgs["service.ports"] = "8080 9090"

	svc, err := BuildServiceApplyConfig(c)
	require.NoError(t, err)
	require.Len(t, svc.Spec.Ports, 2)
	assert.Equal(t, int32(8080), *svc.Spec.Ports[0].Port)
	assert.Equal(t, int32(9090), *svc.Spec.Ports[1].Port)
}

func TestBuildServiceApplyConfigNodePortOnlyAppliesToFirstPort(t *testing.T) {
	c := engine.NewComponent("web-svc", engine.KindService)
	c.LocalArgs["service.ports"] = "8080 9090"
	c.LocalArgs["service.nodePort"] = "30080"

	svc, err := BuildServiceApplyConfig(c)
	require.NoError(t, err)
	require.Len(t, svc.Spec.Ports, 2)
	require.NotNil(t, svc.Spec.Ports[0].NodePort)
	assert.Equal(t, int32(30080), *svc.Spec.Ports[0].NodePort)
	assert.Nil(t, svc.Spec.Ports[1].NodePort)
	assert.Equal(t, corev1.ServiceTypeNodePort, *svc.Spec.Type, "an explicit nodePort with no explicit type implies NodePort")
}

func TestBuildServiceApplyConfigExplicitTypeWins(t *testing.T) {
	c := engine.NewComponent("web-svc", engine.KindService)
	c.LocalArgs["service.ports"] = "8080"
	c.LocalArgs["service.nodePort"] = "30080"
	c.LocalArgs["service.type"] = "LoadBalancer"

	svc, err := BuildServiceApplyConfig(c)
	require.NoError(t, err)
	assert.Equal(t, corev1.ServiceTypeLoadBalancer, *svc.Spec.Type)
}

func TestBuildServiceApplyConfigMissingPortsReturnsError(t *testing.T) {
	c := engine.NewComponent("web-svc", engine.KindService)
	_, err := BuildServiceApplyConfig(c)
	assert.Error(t, err)
}
