// Package history keeps a bounded rolling window of CPU and memory samples per PID.
package history

import "github.com/srodi/appimpact/pkg/types"

// DefaultLimit is the number of samples retained per PID.
const DefaultLimit = 8

// Store holds per-PID CPU and resident-memory samples, most recent last.
// It is owned by a single writer and is not safe for concurrent use.
type Store struct {
	limit  int
	cpu    map[int][]float64
	memory map[int][]float64
}

// NewStore returns an empty store capped at limit samples per PID.
// A non-positive limit falls back to DefaultLimit.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		limit:  limit,
		cpu:    make(map[int][]float64),
		memory: make(map[int][]float64),
	}
}

// Limit reports the per-PID cap.
func (s *Store) Limit() int {
	return s.limit
}

// Record appends one sample for pid and evicts the oldest entries past the cap.
func (s *Store) Record(pid int, usage types.ProcessUsage) {
	s.cpu[pid] = appendCapped(s.cpu[pid], usage.CPUPercent, s.limit)
	s.memory[pid] = appendCapped(s.memory[pid], usage.ResidentBytes, s.limit)
}

// Prune drops every PID that is not in active.
func (s *Store) Prune(active map[int]struct{}) {
	for pid := range s.cpu {
		if _, ok := active[pid]; !ok {
			delete(s.cpu, pid)
		}
	}
	for pid := range s.memory {
		if _, ok := active[pid]; !ok {
			delete(s.memory, pid)
		}
	}
}

// HistoryFor returns copies of the CPU and memory samples for pid.
// Unknown PIDs yield empty slices.
func (s *Store) HistoryFor(pid int) (cpu []float64, memory []float64) {
	return clone(s.cpu[pid]), clone(s.memory[pid])
}

// Len reports how many PIDs currently have history.
func (s *Store) Len() int {
	return len(s.cpu)
}

func appendCapped(samples []float64, value float64, limit int) []float64 {
	samples = append(samples, value)
	if len(samples) > limit {
		// copy into a fresh slice so the backing array does not grow forever
		trimmed := make([]float64, limit)
		copy(trimmed, samples[len(samples)-limit:])
		return trimmed
	}
	return samples
}

func clone(samples []float64) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	return out
}
