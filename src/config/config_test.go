package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// -----------------------------------------------------------------------------

func TestMinimalConfigGetsDefaults(t *testing.T) {
	path := writeConfig(t, `
name: "test-brain"
port: 9000
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "test-brain", cfg.Name)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.Equal(t, "data/market_memory.db", cfg.Storage.DBPath)
	assert.Equal(t, 2000, cfg.Model.InputWindow)
	assert.Equal(t, 2000, cfg.Model.PredictHorizon)
	assert.Equal(t, 100, cfg.Model.PredictStride)
	assert.Equal(t, 20, cfg.Model.OutputSteps())
	assert.Equal(t, 500000, cfg.Training.TrainLimit)
	assert.Equal(t, 128, cfg.Training.BatchSize)
	assert.Equal(t, 5, cfg.Training.Epochs)
	assert.Equal(t, 20, cfg.Training.SampleStride)
	assert.Equal(t, 100, cfg.Training.Margin)
	assert.Equal(t, 1024*1024, cfg.Protocol.MaxLineBytes)
	assert.Equal(t, 8889, cfg.Monitor.Port)
	assert.Equal(t, "xnys", cfg.Monitor.MarketMIC)
}

// -----------------------------------------------------------------------------

func TestExplicitValuesSurviveDefaults(t *testing.T) {
	path := writeConfig(t, `
name: "test-brain"
host: "0.0.0.0"
port: 7777
model:
  input_window: 50
  predict_horizon: 40
  predict_stride: 10
  time_features: true
training:
  train_limit: 5000
  sample_stride: 5
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 50, cfg.Model.InputWindow)
	assert.Equal(t, 4, cfg.Model.OutputSteps())
	assert.True(t, cfg.Model.TimeFeatures)
	assert.Equal(t, 5000, cfg.Training.TrainLimit)
	assert.Equal(t, 5, cfg.Training.SampleStride)
}

// -----------------------------------------------------------------------------

func TestInvalidConfigsRejected(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "privileged port",
			yaml: "port: 80\n",
			want: "port",
		},
		{
			name: "unknown database",
			yaml: "storage:\n  db_type: \"mongo\"\n",
			want: "database type",
		},
		{
			name: "postgres without connection string",
			yaml: "storage:\n  db_type: \"postgres\"\n",
			want: "connection string",
		},
		{
			name: "horizon not multiple of stride",
			yaml: "model:\n  predict_horizon: 100\n  predict_stride: 30\n",
			want: "multiple",
		},
		{
			name: "stride beyond horizon",
			yaml: "model:\n  predict_horizon: 10\n  predict_stride: 50\n",
			want: "stride",
		},
		{
			name: "train limit below one sample",
			yaml: "model:\n  input_window: 100\n  predict_horizon: 100\n  predict_stride: 10\ntraining:\n  train_limit: 150\n",
			want: "train limit",
		},
		{
			name: "monitor port clash",
			yaml: "port: 9000\nmonitor:\n  enabled: true\n  port: 9000\n",
			want: "monitor",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(writeConfig(t, tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

// -----------------------------------------------------------------------------

func TestMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeConfig(t, "name: \"roundtrip\"\nport: 9100\n")

	cfg, err := NewConfig(src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "saved.yaml")
	require.NoError(t, cfg.Save(dst))

	reloaded, err := NewConfig(dst)
	require.NoError(t, err)
	assert.Equal(t, cfg.MConfig, reloaded.MConfig)
}
