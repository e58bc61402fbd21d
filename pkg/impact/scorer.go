package impact

// TotalScore combines the normalized components into the 0-100 ranking score.
// The spike and pressure penalties raise the score: they mark cost to the user,
// pushing problematic processes up the list.
func (t Tuning) TotalScore(cpuImpact, memoryImpact float64, isFrontmost, hasSpike, hasPressure bool) float64 {
	foreground := 0.0
	if isFrontmost {
		foreground = 100
	}
	score := cpuImpact*t.CPUWeight +
		memoryImpact*t.MemoryWeight +
		foreground*t.ForegroundWeight
	if hasSpike {
		score += t.SustainedSpikePenalty
	}
	if hasPressure {
		score += t.TabPressurePenalty
	}
	return clampPercent(score)
}
