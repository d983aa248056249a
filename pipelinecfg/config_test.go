package pipelinecfg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/pipelinecfg"
)

func TestDefaultConfig_EnablesAllModes(t *testing.T) {
	cfg := pipelinecfg.DefaultConfig()

	assert.ElementsMatch(t, []ids.Mode{ids.ModeCar, ids.ModeBike, ids.ModeFoot}, cfg.EnabledModes())
	assert.Equal(t, 1000, cfg.CancellationPollRelaxations)
}

func TestLoad_NonExistentFileFallsBackToDefaults(t *testing.T) {
	cfg, err := pipelinecfg.Load(filepath.Join(t.TempDir(), "missing.yaml"), pipelinecfg.WithDataDir("/data"))

	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.True(t, cfg.HasMode(ids.ModeCar))
}

func TestLoad_ParsesYAMLAndAppliesOptionsOnTop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /from-file
modes: [car, bike]
worker_concurrency: 4
`), 0o644))

	cfg, err := pipelinecfg.Load(path, pipelinecfg.WithWorkerConcurrency(8))

	require.NoError(t, err)
	assert.Equal(t, "/from-file", cfg.DataDir)
	assert.ElementsMatch(t, []ids.Mode{ids.ModeCar, ids.ModeBike}, cfg.EnabledModes())
	assert.Equal(t, 8, cfg.WorkerConcurrency) // option overrides the file
}

func TestLoad_RejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /data
modes: [car, unicycle]
`), 0o644))

	_, err := pipelinecfg.Load(path)

	assert.Error(t, err)
}

func TestLoad_RejectsMissingDataDir(t *testing.T) {
	_, err := pipelinecfg.Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestSave_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := pipelinecfg.DefaultConfig()
	cfg.DataDir = "/data"

	require.NoError(t, pipelinecfg.Save(cfg, path))

	loaded, err := pipelinecfg.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DataDir, loaded.DataDir)
	assert.ElementsMatch(t, cfg.Modes, loaded.Modes)
}

func TestResolvedWorkerConcurrency_FallsBackToNumCPU(t *testing.T) {
	cfg := pipelinecfg.DefaultConfig()

	assert.Greater(t, cfg.ResolvedWorkerConcurrency(), 0)
}
