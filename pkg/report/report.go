// Package report formats published app impacts for people: the compact details
// line, the multi-line tooltip, the focus pick and the ranked table.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/srodi/appimpact/pkg/insight"
	"github.com/srodi/appimpact/pkg/types"
)

const bytesPerGiB = 1 << 30

// Flag labels shown in details lines and the FLAGS column.
const (
	FlagSpike = "SPIKE"
	FlagTabs  = "TABS"
	FlagAI    = "AI"
)

type workloadFamily struct {
	tokens []string
	hint   string
}

// Families are checked in order; the first token hit wins.
var workloadFamilies = []workloadFamily{
	{
		tokens: []string{"chrome", "chromium", "safari", "firefox", "arc", "brave", "edge", "opera", "vivaldi"},
		hint:   "browser rendering, tab scripts, extensions, and media decode",
	},
	{
		tokens: []string{"zoom", "teams", "meet", "slack", "discord", "webex"},
		hint:   "real-time video/audio encode-decode and network processing",
	},
	{
		tokens: []string{"xcode", "android studio", "cursor", "code", "intellij", "pycharm", "webstorm", "goland", "terminal", "iterm"},
		hint:   "indexing, builds, language servers, and file watchers",
	},
	{
		tokens: []string{"photoshop", "premiere", "after effects", "figma", "final cut", "davinci", "lightroom", "blender", "gimp"},
		hint:   "GPU/CPU-heavy media processing and large asset caching",
	},
}

const defaultWorkloadHint = "active UI work, background tasks, or cached data"

// Flags returns the pattern labels raised for app, in display order.
func Flags(app types.AppImpact) []string {
	var flags []string
	if app.HasSustainedCPUSpike {
		flags = append(flags, FlagSpike)
	}
	if app.HasTabLikeMemoryPressure {
		flags = append(flags, FlagTabs)
	}
	if app.HasLikelyAIActivity {
		flags = append(flags, FlagAI)
	}
	return flags
}

// Details renders the one-line summary, e.g. "CPU 95%  MEM 100%  SPIKE".
func Details(app types.AppImpact) string {
	parts := []string{
		fmt.Sprintf("CPU %d%%", round(app.CPUImpact)),
		fmt.Sprintf("MEM %d%%", round(app.MemoryImpact)),
	}
	parts = append(parts, Flags(app)...)
	return strings.Join(parts, "  ")
}

// Tooltip explains why app ranks where it does. The registry may be nil.
func Tooltip(app types.AppImpact, registry *insight.Registry) string {
	var lines []string
	if app.IsFrontmost {
		lines = append(lines, "Foreground boost: active app gets extra weight.")
	}
	if app.HasSustainedCPUSpike {
		lines = append(lines, "SPIKE: sustained high CPU over recent samples.")
	}
	if app.HasTabLikeMemoryPressure {
		lines = append(lines, "TABS: high memory with low CPU and rising footprint.")
	}
	if extra, ok := registry.Tooltip(app); ok {
		lines = append(lines, extra)
	}
	lines = append(lines, fmt.Sprintf("Likely workload: %s.", WorkloadHint(app.Name)))
	return strings.Join(lines, "\n")
}

// WorkloadHint guesses what kind of work an app of this name usually does.
func WorkloadHint(name string) string {
	lower := strings.ToLower(name)
	for _, family := range workloadFamilies {
		for _, token := range family.tokens {
			if strings.Contains(lower, token) {
				return family.hint
			}
		}
	}
	return defaultWorkloadHint
}

// SelectFocus picks the app worth calling out: the highest-scoring app with a
// raised flag, else the top app. It returns nil for an empty list.
func SelectFocus(apps []types.AppImpact) *types.AppImpact {
	if len(apps) == 0 {
		return nil
	}
	var best *types.AppImpact
	bestRank := -1.0
	for i := range apps {
		severity := flagSeverity(apps[i])
		if severity == 0 {
			continue
		}
		rank := float64(severity)*1000 + apps[i].Score
		if best == nil || rank > bestRank {
			best = &apps[i]
			bestRank = rank
		}
	}
	if best == nil {
		best = &apps[0]
		for i := 1; i < len(apps); i++ {
			if apps[i].Score > best.Score {
				best = &apps[i]
			}
		}
	}
	focus := *best
	return &focus
}

// FocusSummary is the short reason shown next to the focus app.
func FocusSummary(app types.AppImpact) string {
	switch {
	case app.HasSustainedCPUSpike:
		return fmt.Sprintf("sustained CPU spike, %.0f%% raw CPU", app.RawCPUPercent)
	case app.HasTabLikeMemoryPressure:
		return fmt.Sprintf("memory growing at low CPU, %s resident", FormatResident(app.ResidentGB))
	case app.HasLikelyAIActivity:
		return fmt.Sprintf("likely AI activity (%d%%)", round(app.AIActivityScore*100))
	default:
		return fmt.Sprintf("score %.0f, %.0f%% raw CPU, %s resident", app.Score, app.RawCPUPercent, FormatResident(app.ResidentGB))
	}
}

// FormatResident renders a GiB figure as a human-readable IEC size.
func FormatResident(gb float64) string {
	if gb <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(gb * bytesPerGiB))
}

// Render writes the ranked table. An empty list yields a single notice line.
func Render(w io.Writer, apps []types.AppImpact) error {
	if len(apps) == 0 {
		_, err := fmt.Fprintln(w, "No candidate apps sampled in this cycle")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tNAME\tSCORE\tCPU\tMEM\tRSS\tFLAGS")
	for _, app := range apps {
		flags := strings.Join(Flags(app), ",")
		if flags == "" {
			flags = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%d%%\t%d%%\t%s\t%s\n",
			app.PID, app.Name, app.Score, round(app.CPUImpact), round(app.MemoryImpact), FormatResident(app.ResidentGB), flags)
	}
	return tw.Flush()
}

func flagSeverity(app types.AppImpact) int {
	switch {
	case app.HasSustainedCPUSpike:
		return 3
	case app.HasTabLikeMemoryPressure:
		return 2
	case app.HasLikelyAIActivity:
		return 1
	default:
		return 0
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
