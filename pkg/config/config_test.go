package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVerifies(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Verify())
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.Equal(t, 8, cfg.HistoryLimit)
	assert.Equal(t, 5, cfg.TopN)
	require.NotNil(t, cfg.Filter.HideKernel)
	assert.True(t, *cfg.Filter.HideKernel)
}

func TestNewConfigWithBytesOverlaysDefaults(t *testing.T) {
	cfg, err := NewConfigWithBytes([]byte(`
interval: 2s
top_n: 3
sampler: ps
sample_timeout: 0s
scoring:
  cpu_weight: 0.5
ai:
  badge_threshold: 0.7
filter:
  hide_kernel: false
  exclude: [helper]
log:
  level: debug
metrics:
  listen: 127.0.0.1:9310
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Verify())

	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, 3, cfg.TopN)
	assert.Equal(t, "ps", cfg.Sampler)
	assert.Equal(t, time.Duration(0), cfg.SampleTimeout)
	assert.Equal(t, 0.5, cfg.Scoring.CPUWeight)
	// untouched keys keep their defaults
	assert.Equal(t, 0.3, cfg.Scoring.MemoryWeight)
	assert.Equal(t, 8, cfg.HistoryLimit)
	assert.Equal(t, 0.7, cfg.AI.BadgeThreshold)
	assert.Equal(t, 6, cfg.AI.Window)
	require.NotNil(t, cfg.Filter.HideKernel)
	assert.False(t, *cfg.Filter.HideKernel)
	assert.Equal(t, []string{"helper"}, cfg.Filter.Exclude)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9310", cfg.Metrics.Listen)
}

func TestNewConfigWithBytesRejectsBadYAML(t *testing.T) {
	_, err := NewConfigWithBytes([]byte("interval: [nope"))
	assert.Error(t, err)
	_, err = NewConfigWithBytes([]byte("interval: soon"))
	assert.Error(t, err)
}

func TestNewConfigWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "appimpact.yml")
	require.NoError(t, os.WriteFile(file, []byte("top_n: 7\n"), 0o644))

	cfg, err := NewConfigWithFile(file)
	require.NoError(t, err)
	assert.Equal(t, file, cfg.File)
	assert.Equal(t, 7, cfg.TopN)

	_, err = NewConfigWithFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestConfig_Verify(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Verify())

	cases := map[string]func(c *Config){
		"interval":      func(c *Config) { c.Interval = 0 },
		"history":       func(c *Config) { c.HistoryLimit = 0 },
		"top":           func(c *Config) { c.TopN = -1 },
		"timeout":       func(c *Config) { c.SampleTimeout = -time.Second },
		"sampler":       func(c *Config) { c.Sampler = "ebpf" },
		"divisor":       func(c *Config) { c.Scoring.CPUNormalizationDivisor = 0 },
		"weight":        func(c *Config) { c.Scoring.MemoryWeight = -0.1 },
		"spikeWindow":   func(c *Config) { c.Scoring.SustainedSpikeWindow = 9 },
		"tabsWindow":    func(c *Config) { c.Scoring.TabPressureWindow = 0 },
		"aiWindow":      func(c *Config) { c.AI.Window = 0 },
		"badge":         func(c *Config) { c.AI.BadgeThreshold = 1.5 },
		"badgeZero":     func(c *Config) { c.AI.BadgeThreshold = 0 },
		"logLevel":      func(c *Config) { c.Log.Level = "chatty" },
		"metricsListen": func(c *Config) { c.Metrics.Listen = "foo@bar" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Verify())
		})
	}
}

func TestConfigString(t *testing.T) {
	s := Default().String()
	assert.Contains(t, s, "top_n: 5")
	assert.Contains(t, s, "sampler: auto")
	assert.NotContains(t, s, "File:")
}
