// Package insight hosts per-application-family heuristics that explain what a
// process is likely doing beyond its raw CPU and memory figures.
package insight

import (
	"sync"

	"github.com/srodi/appimpact/pkg/types"
)

// Input is the history handed to an insight for one app in one cycle.
type Input struct {
	Name             string
	CPUHistory       []float64
	MemoryHistory    []float64
	IsFrontmost      bool
	TotalMemoryBytes float64
}

// Insight is one app-family variant: a name predicate, a breakdown and an
// optional tooltip formatter. Entries share no state with each other.
type Insight struct {
	Name      string
	Matches   func(displayName string) bool
	Breakdown func(in Input) *types.AIBreakdown
	Tooltip   func(app types.AppImpact) string
}

// Registry is an ordered list of insights; the first match wins.
type Registry struct {
	mu       sync.RWMutex
	insights []Insight
}

// NewRegistry returns a registry holding the given insights in order.
func NewRegistry(insights ...Insight) *Registry {
	r := &Registry{}
	for _, in := range insights {
		r.Register(in)
	}
	return r
}

// Register appends an insight. Entries without a Matches predicate are ignored.
func (r *Registry) Register(in Insight) {
	if in.Matches == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insights = append(r.insights, in)
}

// Names lists the registered insights in match order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.insights))
	for _, in := range r.insights {
		names = append(names, in.Name)
	}
	return names
}

// Matches reports whether any insight applies to displayName.
func (r *Registry) Matches(displayName string) bool {
	_, ok := r.lookup(displayName)
	return ok
}

// Breakdown runs the first matching insight. It returns nil when nothing
// matches or the matching insight has no breakdown.
func (r *Registry) Breakdown(in Input) *types.AIBreakdown {
	match, ok := r.lookup(in.Name)
	if !ok || match.Breakdown == nil {
		return nil
	}
	return match.Breakdown(in)
}

// Tooltip returns the app-specific explanation for app, if one exists.
func (r *Registry) Tooltip(app types.AppImpact) (string, bool) {
	match, ok := r.lookup(app.Name)
	if !ok || match.Tooltip == nil {
		return "", false
	}
	return match.Tooltip(app), true
}

func (r *Registry) lookup(displayName string) (Insight, bool) {
	if r == nil {
		return Insight{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, in := range r.insights {
		if in.Matches(displayName) {
			return in, true
		}
	}
	return Insight{}, false
}
