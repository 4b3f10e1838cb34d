package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverridesSetsUnchangedFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var include string
	fs.StringVar(&include, "include", "", "")

	t.Setenv("K8DEPLOYER_INCLUDE", "web.*")

	require.NoError(t, ApplyEnvOverrides(fs, EnvPrefix))
	require.Equal(t, "web.*", include)
}

func TestApplyEnvOverridesSkipsFlagsSetOnCLI(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var include string
	fs.StringVar(&include, "include", "", "")
	require.NoError(t, fs.Set("include", "cli-value"))

	t.Setenv("K8DEPLOYER_INCLUDE", "env-value")

	require.NoError(t, ApplyEnvOverrides(fs, EnvPrefix))
	require.Equal(t, "cli-value", include)
}

func TestApplyEnvOverridesIgnoresUnrelatedEnv(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var include string
	fs.StringVar(&include, "include", "default", "")

	require.NoError(t, os.Unsetenv("K8DEPLOYER_INCLUDE"))
	require.NoError(t, ApplyEnvOverrides(fs, EnvPrefix))
	require.Equal(t, "default", include)
}
