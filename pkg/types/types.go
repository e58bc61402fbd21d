package types

import "math"

// DefaultTopK controls how many top processes are published per cycle.
const DefaultTopK = 5

// bytesPerGiB converts resident bytes into the GB figure shown to users.
const bytesPerGiB = 1 << 30

// ProcessUsage is one instantaneous sample for a PID.
type ProcessUsage struct {
	CPUPercent    float64 // raw, uncapped (200 means two full cores)
	ResidentBytes float64
}

// Valid reports whether both readings are finite and non-negative.
func (u ProcessUsage) Valid() bool {
	return finiteNonNegative(u.CPUPercent) && finiteNonNegative(u.ResidentBytes)
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// CandidateApp is a process eligible for scoring in the current cycle.
type CandidateApp struct {
	PID         int
	Name        string
	IsFrontmost bool
}

// AIBreakdown is a per-cycle decomposition of an app's AI-like activity.
// The sub-percentages are independent signals, not a partition of TotalPercent.
type AIBreakdown struct {
	TotalPercent      float64 `json:"total_percent"`
	InferencePercent  float64 `json:"inference_percent"`
	RetrievalPercent  float64 `json:"retrieval_percent"`
	EmbeddingPercent  float64 `json:"embedding_percent"`
	GenerationPercent float64 `json:"generation_percent"`
	CachePercent      float64 `json:"cache_percent"`
}

// AppImpact is the published result for one process in one cycle.
type AppImpact struct {
	PID                      int     `json:"pid"`
	Name                     string  `json:"name"`
	Score                    float64 `json:"score"`
	CPUImpact                float64 `json:"cpu_impact"`
	MemoryImpact             float64 `json:"memory_impact"`
	RawCPUPercent            float64 `json:"raw_cpu_percent"`
	ResidentGB               float64 `json:"resident_gb"`
	IsFrontmost              bool    `json:"is_frontmost"`
	HasSustainedCPUSpike     bool    `json:"has_sustained_cpu_spike"`
	HasTabLikeMemoryPressure bool    `json:"has_tab_like_memory_pressure"`
	HasAppInsight            bool    `json:"has_app_insight"`
	HasLikelyAIActivity      bool    `json:"has_likely_ai_activity"`
	AIActivityScore          float64 `json:"ai_activity_score"`
	AIInferencePercent       float64 `json:"ai_inference_percent"`
	AIRetrievalPercent       float64 `json:"ai_retrieval_percent"`
	AIEmbeddingPercent       float64 `json:"ai_embedding_percent"`
	AIGenerationPercent      float64 `json:"ai_generation_percent"`
	AICachePercent           float64 `json:"ai_cache_percent"`
}

// ResidentGB converts a resident byte count to GiB.
func ResidentGB(residentBytes float64) float64 {
	return residentBytes / bytesPerGiB
}

// WithBreakdown copies the AI fields of b into the impact. A nil breakdown
// leaves every AI field at zero.
func (a AppImpact) WithBreakdown(b *AIBreakdown, badgeThreshold float64) AppImpact {
	if b == nil {
		return a
	}
	a.AIActivityScore = b.TotalPercent / 100
	a.HasLikelyAIActivity = a.AIActivityScore >= badgeThreshold
	a.AIInferencePercent = b.InferencePercent
	a.AIRetrievalPercent = b.RetrievalPercent
	a.AIEmbeddingPercent = b.EmbeddingPercent
	a.AIGenerationPercent = b.GenerationPercent
	a.AICachePercent = b.CachePercent
	return a
}
