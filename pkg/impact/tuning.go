// Package impact turns raw usage samples into normalized scores, pattern flags and a
// composite ranking score.
package impact

// Tuning carries every numeric knob of the heuristics and the scorer.
type Tuning struct {
	CPUNormalizationDivisor float64 `yaml:"cpu_normalization_divisor"`
	MemoryScaleMultiplier   float64 `yaml:"memory_scale_multiplier"`

	CPUWeight        float64 `yaml:"cpu_weight"`
	MemoryWeight     float64 `yaml:"memory_weight"`
	ForegroundWeight float64 `yaml:"foreground_weight"`

	SustainedSpikePenalty float64 `yaml:"sustained_spike_penalty"`
	TabPressurePenalty    float64 `yaml:"tab_pressure_penalty"`

	SustainedSpikeWindow        int     `yaml:"sustained_spike_window"`
	SustainedSpikeAvgThreshold  float64 `yaml:"sustained_spike_avg_threshold"`
	SustainedSpikePeakThreshold float64 `yaml:"sustained_spike_peak_threshold"`

	TabPressureWindow          int     `yaml:"tab_pressure_window"`
	TabPressureMemoryThreshold float64 `yaml:"tab_pressure_memory_threshold"`
	TabPressureCPUCeiling      float64 `yaml:"tab_pressure_cpu_ceiling"`
	TabPressureGrowthThreshold float64 `yaml:"tab_pressure_growth_threshold"`
}

// DefaultTuning returns the stock thresholds. 200% raw CPU (two full cores)
// maps to a normalized 100.
func DefaultTuning() Tuning {
	return Tuning{
		CPUNormalizationDivisor: 2.0,
		MemoryScaleMultiplier:   4.0,

		CPUWeight:        0.60,
		MemoryWeight:     0.30,
		ForegroundWeight: 0.10,

		SustainedSpikePenalty: 12,
		TabPressurePenalty:    8,

		SustainedSpikeWindow:        4,
		SustainedSpikeAvgThreshold:  55,
		SustainedSpikePeakThreshold: 75,

		TabPressureWindow:          4,
		TabPressureMemoryThreshold: 45,
		TabPressureCPUCeiling:      25,
		TabPressureGrowthThreshold: 0.12,
	}
}
