// Package engine drives the periodic refresh cycle: it samples usage, keeps the
// rolling history, scores candidates and publishes the ranked top list.
package engine

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srodi/appimpact/pkg/history"
	"github.com/srodi/appimpact/pkg/impact"
	"github.com/srodi/appimpact/pkg/insight"
	"github.com/srodi/appimpact/pkg/types"
)

// Defaults applied by New when an option is left at zero.
const (
	DefaultInterval      = 500 * time.Millisecond
	DefaultSampleTimeout = 5 * time.Second
)

// State is the refresh state of an Orchestrator.
type State int32

const (
	Idle State = iota
	Refreshing
)

func (s State) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "idle"
}

// Options configures an Orchestrator.
type Options struct {
	Interval     time.Duration
	TopN         int
	HistoryLimit int
	// SampleTimeout bounds a single sampler call; negative disables it.
	SampleTimeout    time.Duration
	TotalMemoryBytes float64
	Tuning           impact.Tuning
	BadgeThreshold   float64
	Insights         *insight.Registry
	Observer         Observer
	Logger           *logrus.Entry
}

// Snapshot is one published ranking.
type Snapshot struct {
	Apps      []types.AppImpact `json:"apps"`
	Cycle     uint64            `json:"cycle"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Orchestrator owns the history store and the published top list. At most one
// refresh cycle runs at a time; requests arriving while one runs are dropped.
type Orchestrator struct {
	source  CandidateSource
	sampler UsageSampler
	opts    Options
	log     *logrus.Entry

	history *history.Store
	cycles  uint64 // touched only while Refreshing

	state     atomic.Int32
	published atomic.Pointer[Snapshot]
	updates   chan struct{}

	mu       sync.Mutex
	base     context.Context
	stopped  bool
	inflight sync.WaitGroup
}

// New builds an idle Orchestrator with an empty published list.
func New(source CandidateSource, sampler UsageSampler, opts Options) *Orchestrator {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.TopN <= 0 {
		opts.TopN = types.DefaultTopK
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = history.DefaultLimit
	}
	if opts.SampleTimeout == 0 {
		opts.SampleTimeout = DefaultSampleTimeout
	}
	if opts.Tuning == (impact.Tuning{}) {
		opts.Tuning = impact.DefaultTuning()
	}
	if opts.BadgeThreshold <= 0 {
		opts.BadgeThreshold = insight.DefaultAITuning().BadgeThreshold
	}
	if opts.Logger == nil {
		opts.Logger = logrus.WithField("component", "engine")
	}
	return &Orchestrator{
		source:  source,
		sampler: sampler,
		opts:    opts,
		log:     opts.Logger,
		history: history.NewStore(opts.HistoryLimit),
		updates: make(chan struct{}, 1),
		base:    context.Background(),
	}
}

// State reports whether a cycle is currently running.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Snapshot returns a copy of the latest published ranking.
func (o *Orchestrator) Snapshot() Snapshot {
	snap := o.published.Load()
	if snap == nil {
		return Snapshot{Apps: []types.AppImpact{}}
	}
	out := *snap
	out.Apps = append([]types.AppImpact(nil), snap.Apps...)
	return out
}

// Updates signals after each publish. Signals coalesce, so a slow reader only
// ever sees the newest snapshot.
func (o *Orchestrator) Updates() <-chan struct{} {
	return o.updates
}

// Run refreshes immediately and then once per interval until ctx is done. It
// waits for an in-flight cycle before returning.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	o.base = ctx
	o.mu.Unlock()

	o.log.WithFields(logrus.Fields{
		"interval": o.opts.Interval,
		"top":      o.opts.TopN,
		"history":  o.opts.HistoryLimit,
	}).Info("refresh loop started")

	ticker := time.NewTicker(o.opts.Interval)
	defer ticker.Stop()

	o.Refresh()
	for {
		select {
		case <-ctx.Done():
			o.mu.Lock()
			o.stopped = true
			o.mu.Unlock()
			o.inflight.Wait()
			o.log.Info("refresh loop stopped")
			return nil
		case <-ticker.C:
			o.Refresh()
		}
	}
}

// Refresh starts a cycle in the background. It returns false when a cycle is
// already running or the loop has stopped; the request is then dropped.
func (o *Orchestrator) Refresh() bool {
	if !o.begin() {
		return false
	}

	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		o.state.Store(int32(Idle))
		return false
	}
	ctx := context.WithoutCancel(o.base)
	o.inflight.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.inflight.Done()
		o.cycle(ctx)
	}()
	return true
}

// RefreshNow runs one cycle on the calling goroutine. It returns false without
// doing anything if a cycle is already running.
func (o *Orchestrator) RefreshNow(ctx context.Context) bool {
	if !o.begin() {
		return false
	}
	o.cycle(ctx)
	return true
}

func (o *Orchestrator) begin() bool {
	if o.state.CompareAndSwap(int32(Idle), int32(Refreshing)) {
		return true
	}
	o.log.Debug("refresh already running, request dropped")
	if o.opts.Observer != nil {
		o.opts.Observer.ObserveDropped()
	}
	return false
}

func (o *Orchestrator) cycle(ctx context.Context) {
	defer o.state.Store(int32(Idle))
	start := time.Now()

	candidates, err := o.source.Candidates(ctx)
	listed := err == nil
	if err != nil {
		o.log.WithError(err).Warn("listing candidates failed")
		candidates = nil
	}

	var usage map[int]types.ProcessUsage
	var sampleErr error
	if len(candidates) > 0 {
		usage, sampleErr = o.sample(ctx)
	}

	// Histories are complete before any scoring so every app sees this cycle's sample.
	for _, c := range candidates {
		if u, ok := usage[c.PID]; ok {
			o.history.Record(c.PID, u)
		}
	}

	apps := make([]types.AppImpact, 0, len(candidates))
	for _, c := range candidates {
		u, ok := usage[c.PID]
		if !ok {
			continue
		}
		apps = append(apps, o.score(c, u))
	}
	scored := len(apps)
	apps = Rank(apps, o.opts.TopN)

	o.cycles++
	snap := &Snapshot{Apps: apps, Cycle: o.cycles, UpdatedAt: time.Now()}
	o.published.Store(snap)
	select {
	case o.updates <- struct{}{}:
	default:
	}

	// A failed listing says nothing about which processes exited.
	if listed {
		active := make(map[int]struct{}, len(candidates))
		for _, c := range candidates {
			active[c.PID] = struct{}{}
		}
		o.history.Prune(active)
	}

	elapsed := time.Since(start)
	o.log.WithFields(logrus.Fields{
		"cycle":      snap.Cycle,
		"candidates": len(candidates),
		"scored":     scored,
		"elapsed":    elapsed,
	}).Debug("refresh cycle published")

	if o.opts.Observer != nil {
		o.opts.Observer.ObserveCycle(CycleReport{
			Cycle:      snap.Cycle,
			Candidates: len(candidates),
			Sampled:    len(usage),
			Scored:     scored,
			SampleErr:  sampleErr,
			Duration:   elapsed,
			Apps:       append([]types.AppImpact(nil), apps...),
		})
	}
}

func (o *Orchestrator) sample(ctx context.Context) (map[int]types.ProcessUsage, error) {
	if o.opts.SampleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.SampleTimeout)
		defer cancel()
	}
	usage, err := o.sampler.Sample(ctx)
	if err != nil {
		o.log.WithError(err).Warn("usage sampling failed, publishing empty cycle")
		return map[int]types.ProcessUsage{}, err
	}
	if usage == nil {
		usage = map[int]types.ProcessUsage{}
	}
	for pid, u := range usage {
		if !u.Valid() {
			o.log.WithField("pid", pid).Debug("dropping malformed usage sample")
			delete(usage, pid)
		}
	}
	return usage, nil
}

func (o *Orchestrator) score(c types.CandidateApp, u types.ProcessUsage) types.AppImpact {
	t := o.opts.Tuning
	total := o.opts.TotalMemoryBytes
	cpuHistory, memHistory := o.history.HistoryFor(c.PID)

	cpuImpact := t.NormalizedCPU(u.CPUPercent)
	memImpact := t.MemoryScore(u.ResidentBytes, total)
	spike := t.IsSustainedCPUSpike(cpuHistory)
	pressure := t.IsTabLikeMemoryPressure(cpuHistory, memHistory, total)

	app := types.AppImpact{
		PID:                      c.PID,
		Name:                     c.Name,
		Score:                    t.TotalScore(cpuImpact, memImpact, c.IsFrontmost, spike, pressure),
		CPUImpact:                cpuImpact,
		MemoryImpact:             memImpact,
		RawCPUPercent:            u.CPUPercent,
		ResidentGB:               types.ResidentGB(u.ResidentBytes),
		IsFrontmost:              c.IsFrontmost,
		HasSustainedCPUSpike:     spike,
		HasTabLikeMemoryPressure: pressure,
		HasAppInsight:            o.opts.Insights.Matches(c.Name),
	}
	breakdown := o.opts.Insights.Breakdown(insight.Input{
		Name:             c.Name,
		CPUHistory:       cpuHistory,
		MemoryHistory:    memHistory,
		IsFrontmost:      c.IsFrontmost,
		TotalMemoryBytes: total,
	})
	return app.WithBreakdown(breakdown, o.opts.BadgeThreshold)
}

// Rank sorts apps by score descending, ties by ascending PID, and keeps the
// first n. The input slice is reordered in place.
func Rank(apps []types.AppImpact, n int) []types.AppImpact {
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].Score != apps[j].Score {
			return apps[i].Score > apps[j].Score
		}
		return apps[i].PID < apps[j].PID
	})
	if n >= 0 && len(apps) > n {
		apps = apps[:n]
	}
	return apps
}
