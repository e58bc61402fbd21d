package insight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srodi/appimpact/pkg/impact"
	"github.com/srodi/appimpact/pkg/types"
)

const gib = float64(1 << 30)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestMatchesJetBrains(t *testing.T) {
	cases := map[string]bool{
		"IntelliJ IDEA":     true,
		"intellij-idea-ult": true,
		"JetBrains Gateway": true,
		"GoLand":            false,
		"Visual Studio":     false,
		"":                  false,
	}
	for name, want := range cases {
		assert.Equal(t, want, MatchesJetBrains(name), name)
	}
}

func TestJetBrainsBreakdownNoHistoryBaseline(t *testing.T) {
	in := JetBrains(impact.DefaultTuning(), DefaultAITuning())
	b := in.Breakdown(Input{Name: "IntelliJ IDEA", TotalMemoryBytes: 16 * gib})
	require.NotNil(t, b)
	assert.Equal(t, 25.0, b.TotalPercent)
	assert.Equal(t, types.AIBreakdown{
		TotalPercent:      25,
		InferencePercent:  22,
		RetrievalPercent:  26,
		EmbeddingPercent:  30,
		GenerationPercent: 20,
		CachePercent:      34,
	}, *b)

	// one empty history is enough to fall back
	b = in.Breakdown(Input{Name: "IntelliJ IDEA", CPUHistory: []float64{100}, TotalMemoryBytes: 16 * gib})
	require.NotNil(t, b)
	assert.Equal(t, 25.0, b.TotalPercent)
}

func TestJetBrainsBreakdownNonMatchingApp(t *testing.T) {
	in := JetBrains(impact.DefaultTuning(), DefaultAITuning())
	b := in.Breakdown(Input{
		Name:             "Safari",
		CPUHistory:       repeat(150, 6),
		MemoryHistory:    repeat(4*gib, 6),
		TotalMemoryBytes: 16 * gib,
	})
	assert.Nil(t, b)
}

func TestJetBrainsBreakdownLinearModel(t *testing.T) {
	in := JetBrains(impact.DefaultTuning(), DefaultAITuning())
	base := Input{
		Name:             "IntelliJ IDEA",
		CPUHistory:       repeat(140, 6),
		MemoryHistory:    repeat(4*gib, 6),
		TotalMemoryBytes: 16 * gib,
	}

	b := in.Breakdown(base)
	require.NotNil(t, b)
	assert.InDelta(t, 78.6667, b.TotalPercent, 1e-3)
	assert.InDelta(t, 87.6667, b.InferencePercent, 1e-3)
	assert.InDelta(t, 75.0, b.RetrievalPercent, 1e-3)
	assert.InDelta(t, 60.0, b.EmbeddingPercent, 1e-3)
	assert.InDelta(t, 82.0, b.GenerationPercent, 1e-3)
	assert.InDelta(t, 55.0, b.CachePercent, 1e-3)

	front := base
	front.IsFrontmost = true
	fb := in.Breakdown(front)
	require.NotNil(t, fb)
	assert.InDelta(t, 98.6667, fb.TotalPercent, 1e-3)
	assert.InDelta(t, 97.6667, fb.InferencePercent, 1e-3)
	assert.InDelta(t, 97.0, fb.GenerationPercent, 1e-3)
}

func TestJetBrainsBreakdownClampsAndUsesTrailingWindow(t *testing.T) {
	in := JetBrains(impact.DefaultTuning(), DefaultAITuning())
	b := in.Breakdown(Input{
		Name:             "IntelliJ IDEA",
		CPUHistory:       append([]float64{0, 0}, repeat(400, 6)...),
		MemoryHistory:    []float64{1 * gib, 1 * gib, 4 * gib, 4 * gib, 4 * gib, 4 * gib, 4 * gib, 8 * gib},
		IsFrontmost:      true,
		TotalMemoryBytes: 16 * gib,
	})
	require.NotNil(t, b)
	assert.Equal(t, 100.0, b.TotalPercent)
	for _, v := range []float64{b.InferencePercent, b.RetrievalPercent, b.EmbeddingPercent, b.GenerationPercent, b.CachePercent} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestJetBrainsBreakdownIgnoresShrinkingMemory(t *testing.T) {
	in := JetBrains(impact.DefaultTuning(), DefaultAITuning())
	b := in.Breakdown(Input{
		Name:             "JetBrains Toolbox",
		CPUHistory:       repeat(0, 6),
		MemoryHistory:    []float64{8 * gib, 7 * gib, 6 * gib, 5 * gib, 4 * gib, 0.5 * gib},
		TotalMemoryBytes: 16 * gib,
	})
	require.NotNil(t, b)
	// memory score 12.5 -> signal 12.5/55, growth clamped at 0
	memorySignal := 12.5 / 55
	assert.InDelta(t, memorySignal*25, b.TotalPercent, 1e-9)
	assert.InDelta(t, (memorySignal*0.55+0.10)*100, b.CachePercent, 1e-9)
}

func TestJetBrainsTooltipLevels(t *testing.T) {
	in := JetBrains(impact.DefaultTuning(), DefaultAITuning())
	cases := []struct {
		score float64
		want  string
	}{
		{0.80, "AI resources (80%): high activity."},
		{0.60, "AI resources (60%): moderate activity."},
		{0.25, "AI resources (25%): low activity."},
	}
	for _, tc := range cases {
		tip := in.Tooltip(types.AppImpact{Name: "IntelliJ IDEA", AIActivityScore: tc.score, AICachePercent: 34.4})
		lines := strings.Split(tip, "\n")
		require.Len(t, lines, 6)
		assert.Equal(t, tc.want, lines[0])
		assert.Equal(t, "Background cache/context sync: 34%", lines[5])
	}
}
