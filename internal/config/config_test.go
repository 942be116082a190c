package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olynk/domain/core"
	"olynk/internal/errors"
)

func TestDefaultEngineIsValid(t *testing.T) {
	require.NoError(t, DefaultEngine().Validate())
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := map[string]func(e *Engine){
		"zscore":        func(e *Engine) { e.ZScoreThreshold = 0 },
		"iqr":           func(e *Engine) { e.IQRMultiplier = -1 },
		"percentile":    func(e *Engine) { e.MultivariatePercentile = 1.5 },
		"buckets":       func(e *Engine) { e.MinTrendBuckets = 1 },
		"samples":       func(e *Engine) { e.MinCorrelationSamples = 2 },
		"anomaly score": func(e *Engine) { e.MinAnomalyScore = 1.2 },
		"severity":      func(e *Engine) { e.SeverityHigh = 0.5 },
		"aggregation":   func(e *Engine) { e.Aggregation = "median" },
		"granularity":   func(e *Engine) { e.Granularity = "hourly" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := DefaultEngine()
			mutate(&e)
			err := e.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
			assert.True(t, core.IsContractViolation(err))
		})
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "olynk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  zscore_threshold: 2.5\n  segment_by: region\n"), 0o644))
	t.Setenv("OLYNK_ENGINE_IQR_MULTIPLIER", "3")
	t.Setenv("DATABASE_URL", "postgres://localhost/olynk")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Engine.ZScoreThreshold)
	assert.Equal(t, "region", cfg.Engine.SegmentBy)
	assert.Equal(t, 3.0, cfg.Engine.IQRMultiplier)
	assert.Equal(t, 4, cfg.Engine.MinTrendBuckets)
	assert.Equal(t, 500, cfg.Server.MaxStoredReports)
	assert.Equal(t, "postgres://localhost/olynk", cfg.Database.URL)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "olynk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  multivariate_percentile: 2\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "olynk.yaml")
	cfg := &Config{Engine: DefaultEngine()}
	cfg.Engine.ZScoreThreshold = 4
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, loaded.Engine.ZScoreThreshold)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Config{Engine: DefaultEngine(), LogLevel: "DEBUG"}))
	assert.Contains(t, buf.String(), "zscore_threshold: 3")
	assert.Contains(t, buf.String(), "log_level: DEBUG")
}
