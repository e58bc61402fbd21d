package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/srodi/appimpact/pkg/types"
)

// rawSample is one process as read from the OS: cumulative CPU time plus RSS.
type rawSample struct {
	PID        int
	CPUSeconds float64
	RSSBytes   uint64
	// Lifetime reports the average CPU percent since process start. It is only
	// consulted for PIDs without a previous sample.
	Lifetime func() float64
}

type cpuMark struct {
	seconds float64
	at      time.Time
}

// ProcessSampler derives CPU percent from the growth of cumulative CPU time
// between two consecutive calls.
type ProcessSampler struct {
	mu       sync.Mutex
	snapshot func(ctx context.Context) ([]rawSample, error)
	now      func() time.Time
	prev     map[int]cpuMark
}

// NewProcessSampler returns a gopsutil-backed sampler.
func NewProcessSampler() *ProcessSampler {
	return &ProcessSampler{
		snapshot: gopsutilSnapshot,
		now:      time.Now,
		prev:     make(map[int]cpuMark),
	}
}

// Sample reads every process and returns its CPU percent over the interval
// since the previous call.
func (s *ProcessSampler) Sample(ctx context.Context) (map[int]types.ProcessUsage, error) {
	raw, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fold(raw, s.now()), nil
}

func (s *ProcessSampler) fold(raw []rawSample, now time.Time) map[int]types.ProcessUsage {
	result := make(map[int]types.ProcessUsage, len(raw))
	next := make(map[int]cpuMark, len(raw))
	for _, r := range raw {
		cpu := 0.0
		if mark, ok := s.prev[r.PID]; ok {
			elapsed := now.Sub(mark.at).Seconds()
			if elapsed > 0 && r.CPUSeconds >= mark.seconds {
				cpu = (r.CPUSeconds - mark.seconds) / elapsed * 100
			}
		} else if r.Lifetime != nil {
			cpu = r.Lifetime()
		}

		result[r.PID] = types.ProcessUsage{CPUPercent: cpu, ResidentBytes: float64(r.RSSBytes)}
		next[r.PID] = cpuMark{seconds: r.CPUSeconds, at: now}
	}
	s.prev = next
	return result
}

func gopsutilSnapshot(ctx context.Context) ([]rawSample, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	samples := make([]rawSample, 0, len(procs))
	for _, proc := range procs {
		if proc == nil || proc.Pid <= 0 {
			continue
		}
		times, err := proc.TimesWithContext(ctx)
		if err != nil {
			continue
		}
		memInfo, err := proc.MemoryInfoWithContext(ctx)
		if err != nil || memInfo == nil {
			continue
		}

		p := proc
		samples = append(samples, rawSample{
			PID:        int(p.Pid),
			CPUSeconds: times.User + times.System,
			RSSBytes:   memInfo.RSS,
			Lifetime: func() float64 {
				pct, err := p.CPUPercentWithContext(ctx)
				if err != nil {
					return 0
				}
				return pct
			},
		})
	}
	return samples, nil
}
