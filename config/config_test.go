package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/config"
)

func TestDefaultIsUsable(t *testing.T) {
	cfg := config.Default()
	require.NotZero(t, cfg.Engine.GasLimit)
	require.NotZero(t, cfg.BoxModel.DefaultBudget)
	require.Equal(t, "memory", cfg.Engine.Cache)
}

func TestLoadOverridesOnTopOfDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facetc.yaml")
	yamlContent := "engine:\n  gas_limit: 500\nbox_model:\n  default_budget: 2048\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 500, cfg.Engine.GasLimit)
	require.Equal(t, 2048, cfg.BoxModel.DefaultBudget)
	require.Equal(t, []string{"."}, cfg.Resolver.AllowedRoots) // default preserved
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := config.Load("/nonexistent/facetc.yaml")
	require.Error(t, err)
}
