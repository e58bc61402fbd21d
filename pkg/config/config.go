// Package config loads the YAML configuration. Values start from Default and are
// overlaid by whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/srodi/appimpact/pkg/collector/candidates"
	"github.com/srodi/appimpact/pkg/collector/usage"
	"github.com/srodi/appimpact/pkg/history"
	"github.com/srodi/appimpact/pkg/impact"
	"github.com/srodi/appimpact/pkg/insight"
	"github.com/srodi/appimpact/pkg/types"
)

// Log info.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Metrics info. An empty Listen keeps the HTTP surface off.
type Metrics struct {
	Listen string `yaml:"listen"`
}

func (m *Metrics) verify() error {
	if m.Listen == "" {
		return nil
	}
	if _, err := net.ResolveTCPAddr("tcp", m.Listen); err != nil {
		return fmt.Errorf("invalid metrics listen address %q: %w", m.Listen, err)
	}
	return nil
}

// Config is the whole runtime configuration. It is not modified once the
// refresh loop starts.
type Config struct {
	Interval      time.Duration     `yaml:"interval"`
	HistoryLimit  int               `yaml:"history_limit"`
	TopN          int               `yaml:"top_n"`
	SampleTimeout time.Duration     `yaml:"sample_timeout"` // 0 disables
	Sampler       string            `yaml:"sampler"`
	Scoring       impact.Tuning     `yaml:"scoring"`
	AI            insight.AITuning  `yaml:"ai"`
	Filter        candidates.Filter `yaml:"filter"`
	Log           Log               `yaml:"log"`
	Metrics       Metrics           `yaml:"metrics"`

	File string `yaml:"-"`
}

// Default returns the stock configuration.
func Default() *Config {
	hideKernel := true
	return &Config{
		Interval:      500 * time.Millisecond,
		HistoryLimit:  history.DefaultLimit,
		TopN:          types.DefaultTopK,
		SampleTimeout: 5 * time.Second,
		Sampler:       usage.KindAuto,
		Scoring:       impact.DefaultTuning(),
		AI:            insight.DefaultAITuning(),
		Filter:        candidates.Filter{HideKernel: &hideKernel},
		Log:           Log{Level: "info"},
	}
}

// NewConfigWithBytes parses b on top of Default.
func NewConfigWithBytes(b []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(b, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return config, nil
}

// NewConfigWithFile reads and parses file.
func NewConfigWithFile(file string) (*Config, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", file, err)
	}
	config, err := NewConfigWithBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	config.File = file
	return config, nil
}

// Verify will return an error when this config has a problem.
func (c *Config) Verify() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if c.HistoryLimit <= 0 {
		return errors.New("history_limit must be greater than 0")
	}
	if c.TopN <= 0 {
		return errors.New("top_n must be greater than 0")
	}
	if c.SampleTimeout < 0 {
		return errors.New("sample_timeout must not be negative")
	}
	if _, err := usage.New(c.Sampler); err != nil {
		return err
	}
	if err := verifyScoring(c.Scoring, c.HistoryLimit); err != nil {
		return err
	}
	if c.AI.Window <= 0 {
		return errors.New("ai.window must be greater than 0")
	}
	if c.AI.BadgeThreshold <= 0 || c.AI.BadgeThreshold > 1 {
		return errors.New("ai.badge_threshold must be within (0, 1]")
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return c.Metrics.verify()
}

func verifyScoring(t impact.Tuning, historyLimit int) error {
	if t.CPUNormalizationDivisor <= 0 {
		return errors.New("scoring.cpu_normalization_divisor must be greater than 0")
	}
	if t.MemoryScaleMultiplier <= 0 {
		return errors.New("scoring.memory_scale_multiplier must be greater than 0")
	}
	for name, v := range map[string]float64{
		"cpu_weight":              t.CPUWeight,
		"memory_weight":           t.MemoryWeight,
		"foreground_weight":       t.ForegroundWeight,
		"sustained_spike_penalty": t.SustainedSpikePenalty,
		"tab_pressure_penalty":    t.TabPressurePenalty,
	} {
		if v < 0 {
			return fmt.Errorf("scoring.%s must not be negative", name)
		}
	}
	// a window longer than the history can never fill
	if t.SustainedSpikeWindow <= 0 || t.SustainedSpikeWindow > historyLimit {
		return fmt.Errorf("scoring.sustained_spike_window must be within [1, %d]", historyLimit)
	}
	if t.TabPressureWindow <= 0 || t.TabPressureWindow > historyLimit {
		return fmt.Errorf("scoring.tab_pressure_window must be within [1, %d]", historyLimit)
	}
	return nil
}

// String renders the effective configuration as YAML for debug logging.
func (c *Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return strings.TrimSpace(string(b))
}
