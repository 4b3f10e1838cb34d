package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfigHasSaneDefaults(t *testing.T) {
	cfg := NewConfig()
	require.Empty(t, cfg.Validate())
	require.Equal(t, "deploy", cfg.Engine.Mode)
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := NewConfig()
	cfg.Engine.Mode = "destroy-everything"
	require.NotEmpty(t, cfg.Validate())
}

func TestValidateRejectsBadRegex(t *testing.T) {
	cfg := NewConfig()
	cfg.Engine.IncludeRegex = "["
	require.NotEmpty(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveQPS(t *testing.T) {
	cfg := NewConfig()
	cfg.KubeQPS = 0
	require.NotEmpty(t, cfg.Validate())
}
