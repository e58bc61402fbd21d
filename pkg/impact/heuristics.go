package impact

import "math"

// NormalizedCPU maps raw CPU percent onto [0, 100] by dividing by the
// normalization divisor and capping.
func (t Tuning) NormalizedCPU(raw float64) float64 {
	if t.CPUNormalizationDivisor <= 0 {
		return 0
	}
	return clampPercent(raw / t.CPUNormalizationDivisor)
}

// MemoryScore amplifies the share of total RAM held by a process so that moderate
// users still register. Non-positive totals score 0.
func (t Tuning) MemoryScore(residentBytes, totalMemoryBytes float64) float64 {
	if totalMemoryBytes <= 0 {
		return 0
	}
	rawPercent := (residentBytes / totalMemoryBytes) * 100
	return clampPercent(rawPercent * t.MemoryScaleMultiplier)
}

// IsSustainedCPUSpike reports whether the trailing window is high both on
// average and at peak. A brief burst has a high peak but a low mean.
func (t Tuning) IsSustainedCPUSpike(cpuHistory []float64) bool {
	window := t.SustainedSpikeWindow
	if window <= 0 || len(cpuHistory) < window {
		return false
	}
	avg, peak := t.NormalizedStats(Trailing(cpuHistory, window))
	return avg >= t.SustainedSpikeAvgThreshold && peak >= t.SustainedSpikePeakThreshold
}

// IsTabLikeMemoryPressure reports a high, growing footprint with low current CPU,
// the signature of tab or document accumulation rather than active compute.
func (t Tuning) IsTabLikeMemoryPressure(cpuHistory, memoryHistory []float64, totalMemoryBytes float64) bool {
	if len(cpuHistory) == 0 || len(memoryHistory) == 0 {
		return false
	}
	if t.TabPressureWindow <= 0 || len(memoryHistory) < t.TabPressureWindow {
		return false
	}

	latestCPU := cpuHistory[len(cpuHistory)-1]
	latestMem := memoryHistory[len(memoryHistory)-1]
	memImpact := t.MemoryScore(latestMem, totalMemoryBytes)
	cpuImpact := t.NormalizedCPU(latestCPU)
	growth := GrowthRatio(Trailing(memoryHistory, t.TabPressureWindow))

	return memImpact >= t.TabPressureMemoryThreshold &&
		cpuImpact <= t.TabPressureCPUCeiling &&
		growth >= t.TabPressureGrowthThreshold
}

// NormalizedStats returns the mean and max of the normalized samples.
func (t Tuning) NormalizedStats(samples []float64) (avg, peak float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for i, raw := range samples {
		n := t.NormalizedCPU(raw)
		sum += n
		if i == 0 || n > peak {
			peak = n
		}
	}
	return sum / float64(len(samples)), peak
}

// Trailing returns the last n samples (or all of them when fewer exist).
func Trailing(samples []float64, n int) []float64 {
	if n <= 0 || len(samples) <= n {
		return samples
	}
	return samples[len(samples)-n:]
}

// GrowthRatio compares the last sample to the first: (latest-baseline)/baseline.
// A non-positive baseline yields 0.
func GrowthRatio(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	baseline := window[0]
	latest := window[len(window)-1]
	if baseline <= 0 {
		return 0
	}
	return (latest - baseline) / baseline
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
