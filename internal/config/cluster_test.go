package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClusterArgDefaultsNameFromKubeconfig(t *testing.T) {
	target, err := ParseClusterArg("prod-east.yaml")
	require.NoError(t, err)
	require.Equal(t, "prod-east", target.Name)
	require.Equal(t, "prod-east.yaml", target.Kubeconfig)
	require.Empty(t, target.Vars)
}

func TestParseClusterArgWithVariables(t *testing.T) {
	target, err := ParseClusterArg("staging.yaml:region=us-east,tier=hot")
	require.NoError(t, err)
	require.Equal(t, "staging", target.Name)
	require.Equal(t, "us-east", target.Vars["region"])
	require.Equal(t, "hot", target.Vars["tier"])
}

func TestParseClusterArgExplicitNameOverridesBasename(t *testing.T) {
	target, err := ParseClusterArg("kubeconfig.yaml:name=blue")
	require.NoError(t, err)
	require.Equal(t, "blue", target.Name)
}

func TestParseClusterArgRejectsEmptyKubeconfig(t *testing.T) {
	_, err := ParseClusterArg("")
	require.Error(t, err)
}

func TestParseClusterArgEmptyBasenameIsDefault(t *testing.T) {
	target, err := ParseClusterArg(".hidden")
	require.NoError(t, err)
	require.Equal(t, "default", target.Name)
}

func TestParseClusterArgRejectsMalformedVariable(t *testing.T) {
	_, err := ParseClusterArg("cluster.yaml:badpair")
	require.Error(t, err)
}
