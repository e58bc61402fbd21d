package insight

import (
	"fmt"
	"math"
	"strings"

	"github.com/srodi/appimpact/pkg/impact"
	"github.com/srodi/appimpact/pkg/types"
)

// AITuning holds the knobs of the AI-activity model.
type AITuning struct {
	Window              int     `yaml:"window"`
	NoHistoryBaseline   float64 `yaml:"no_history_baseline"`
	CPUNormDivisor      float64 `yaml:"cpu_norm_divisor"`
	BurstNormDivisor    float64 `yaml:"burst_norm_divisor"`
	MemoryNormDivisor   float64 `yaml:"memory_norm_divisor"`
	GrowthNormDivisor   float64 `yaml:"growth_norm_divisor"`
	ForegroundBoost     float64 `yaml:"foreground_boost"`
	BadgeThreshold      float64 `yaml:"badge_threshold"`
	HighActivityPercent int     `yaml:"high_activity_percent"`
	ModerateActivityPct int     `yaml:"moderate_activity_percent"`
}

// DefaultAITuning returns the stock AI-activity thresholds.
func DefaultAITuning() AITuning {
	return AITuning{
		Window:              6,
		NoHistoryBaseline:   0.25,
		CPUNormDivisor:      70,
		BurstNormDivisor:    75,
		MemoryNormDivisor:   55,
		GrowthNormDivisor:   0.20,
		ForegroundBoost:     0.20,
		BadgeThreshold:      0.55,
		HighActivityPercent: 75,
		ModerateActivityPct: 55,
	}
}

// noHistoryBreakdown is reported for a matching app seen for the first time, so
// a fresh IDE is never ranked as idle.
func noHistoryBreakdown(ai AITuning) *types.AIBreakdown {
	return &types.AIBreakdown{
		TotalPercent:      percent(ai.NoHistoryBaseline),
		InferencePercent:  22,
		RetrievalPercent:  26,
		EmbeddingPercent:  30,
		GenerationPercent: 20,
		CachePercent:      34,
	}
}

// MatchesJetBrains matches IntelliJ-family IDEs by vendor or product name.
func MatchesJetBrains(displayName string) bool {
	name := strings.ToLower(displayName)
	return strings.Contains(name, "intellij") || strings.Contains(name, "jetbrains")
}

// JetBrains returns the AI-activity insight for IntelliJ-family IDEs.
func JetBrains(t impact.Tuning, ai AITuning) Insight {
	return Insight{
		Name:    "jetbrains-ai",
		Matches: MatchesJetBrains,
		Breakdown: func(in Input) *types.AIBreakdown {
			return jetBrainsBreakdown(t, ai, in)
		},
		Tooltip: func(app types.AppImpact) string {
			return jetBrainsTooltip(ai, app)
		},
	}
}

// Default returns the registry shipped with the binary.
func Default(t impact.Tuning, ai AITuning) *Registry {
	return NewRegistry(JetBrains(t, ai))
}

func jetBrainsBreakdown(t impact.Tuning, ai AITuning, in Input) *types.AIBreakdown {
	if !MatchesJetBrains(in.Name) {
		return nil
	}
	if len(in.CPUHistory) == 0 || len(in.MemoryHistory) == 0 {
		return noHistoryBreakdown(ai)
	}

	cpuRecent := impact.Trailing(in.CPUHistory, ai.Window)
	memRecent := impact.Trailing(in.MemoryHistory, ai.Window)
	avgCPU, peakCPU := t.NormalizedStats(cpuRecent)

	memScore := t.MemoryScore(memRecent[len(memRecent)-1], in.TotalMemoryBytes)
	memGrowth := math.Max(0, impact.GrowthRatio(memRecent))

	cpuSignal := unitRatio(avgCPU, ai.CPUNormDivisor)
	burstSignal := unitRatio(peakCPU, ai.BurstNormDivisor)
	memorySignal := unitRatio(memScore, ai.MemoryNormDivisor)
	growthSignal := unitRatio(memGrowth, ai.GrowthNormDivisor)
	foregroundSignal, foregroundUnit := 0.0, 0.0
	if in.IsFrontmost {
		foregroundSignal = ai.ForegroundBoost
		foregroundUnit = 1
	}

	total := cpuSignal*0.35 + burstSignal*0.20 + memorySignal*0.25 + growthSignal*0.20 + foregroundSignal
	inference := cpuSignal*0.55 + burstSignal*0.35 + foregroundUnit*0.10
	retrieval := cpuSignal*0.30 + memorySignal*0.45 + growthSignal*0.25
	embedding := memorySignal*0.50 + growthSignal*0.40 + cpuSignal*0.10
	generation := burstSignal*0.45 + cpuSignal*0.40 + foregroundUnit*0.15
	cache := memorySignal*0.55 + growthSignal*0.35 + (1-cpuSignal)*0.10

	return &types.AIBreakdown{
		TotalPercent:      percent(total),
		InferencePercent:  percent(inference),
		RetrievalPercent:  percent(retrieval),
		EmbeddingPercent:  percent(embedding),
		GenerationPercent: percent(generation),
		CachePercent:      percent(cache),
	}
}

func jetBrainsTooltip(ai AITuning, app types.AppImpact) string {
	score := int(math.Round(app.AIActivityScore * 100))
	level := "low"
	switch {
	case score >= ai.HighActivityPercent:
		level = "high"
	case score >= ai.ModerateActivityPct:
		level = "moderate"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "AI resources (%d%%): %s activity.\n", score, level)
	fmt.Fprintf(&b, "Inference/API: %d%%\n", roundPct(app.AIInferencePercent))
	fmt.Fprintf(&b, "Retrieval/context scan: %d%%\n", roundPct(app.AIRetrievalPercent))
	fmt.Fprintf(&b, "Embeddings/indexing: %d%%\n", roundPct(app.AIEmbeddingPercent))
	fmt.Fprintf(&b, "Code generation/rerank: %d%%\n", roundPct(app.AIGenerationPercent))
	fmt.Fprintf(&b, "Background cache/context sync: %d%%", roundPct(app.AICachePercent))
	return b.String()
}

// unitRatio scales v by divisor and caps the result at 1.
func unitRatio(v, divisor float64) float64 {
	if divisor <= 0 {
		return 0
	}
	return math.Min(v/divisor, 1)
}

// percent turns a [0,1] signal into a percentage clamped to [0,100].
func percent(v float64) float64 {
	return math.Min(100, math.Max(0, v*100))
}

func roundPct(v float64) int {
	return int(math.Round(v))
}
