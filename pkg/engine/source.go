//go:generate go run go.uber.org/mock/mockgen -package mock -destination mock/mock.go github.com/srodi/appimpact/pkg/engine CandidateSource,UsageSampler

package engine

import (
	"context"
	"time"

	"github.com/srodi/appimpact/pkg/types"
)

// CandidateSource enumerates the processes eligible for scoring.
type CandidateSource interface {
	Candidates(ctx context.Context) ([]types.CandidateApp, error)
}

// UsageSampler returns raw CPU percent and resident bytes per PID. A partial
// map is normal; an error means no data this cycle.
type UsageSampler interface {
	Sample(ctx context.Context) (map[int]types.ProcessUsage, error)
}

// CycleReport summarizes one completed refresh cycle.
type CycleReport struct {
	Cycle      uint64
	Candidates int
	Sampled    int
	Scored     int
	SampleErr  error
	Duration   time.Duration
	Apps       []types.AppImpact
}

// Observer is notified after every published cycle and every dropped refresh
// request. Calls happen on the refresh goroutine and must not block.
type Observer interface {
	ObserveCycle(report CycleReport)
	ObserveDropped()
}
