// Package candidates enumerates the user-facing processes eligible for scoring.
package candidates

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/sirupsen/logrus"

	"github.com/srodi/appimpact/pkg/types"
)

const (
	nameCacheSize = 4096
	nameCacheTTL  = 30 * time.Second
)

// nameKey identifies a process instance; a reused PID has a new start time.
type nameKey struct {
	pid     int
	started int64
}

// Filter controls which processes count as candidates.
type Filter struct {
	HideKernel *bool    `yaml:"hide_kernel"` // nil defaults to true so kernel threads stay hidden unless explicitly shown
	AllUsers   bool     `yaml:"all_users"`
	Include    []string `yaml:"include"`
	Exclude    []string `yaml:"exclude"`
}

func (f Filter) hideKernelEnabled() bool {
	if f.HideKernel == nil {
		return true
	}
	return *f.HideKernel
}

// Source lists candidate apps using gopsutil.
type Source struct {
	filter  Filter
	ownPID  int
	ownUID  int
	list    func(ctx context.Context) ([]procHandle, error)
	names   gcache.Cache
	include []string
	exclude []string
	log     *logrus.Entry
}

// NewSource returns a Source applying filter.
func NewSource(filter Filter, log *logrus.Entry) *Source {
	if log == nil {
		log = logrus.WithField("component", "candidates")
	}
	return &Source{
		filter:  filter,
		ownPID:  os.Getpid(),
		ownUID:  os.Getuid(),
		list:    listProcesses,
		names:   gcache.New(nameCacheSize).LRU().Expiration(nameCacheTTL).Build(),
		include: lowerAll(filter.Include),
		exclude: lowerAll(filter.Exclude),
		log:     log,
	}
}

// Candidates returns a snapshot of eligible processes. Processes that vanish or
// deny access mid-scan are skipped. At most one candidate is frontmost.
func (s *Source) Candidates(ctx context.Context) ([]types.CandidateApp, error) {
	handles, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	apps := make([]types.CandidateApp, 0, len(handles))
	started := make([]int64, 0, len(handles))
	for _, h := range handles {
		app, created, ok := s.inspect(ctx, h)
		if ok {
			apps = append(apps, app)
			started = append(started, created)
		}
	}
	keepNewestFrontmost(apps, started)
	s.log.WithField("candidates", len(apps)).Debug("enumerated candidates")
	return apps, nil
}

func (s *Source) inspect(ctx context.Context, h procHandle) (types.CandidateApp, int64, bool) {
	pid := h.PID()
	if pid <= 0 || pid == s.ownPID {
		return types.CandidateApp{}, 0, false
	}
	if !s.filter.AllUsers && s.ownUID >= 0 {
		uid, err := h.RealUID(ctx)
		if err != nil || uid != s.ownUID {
			return types.CandidateApp{}, 0, false
		}
	}

	created, err := h.CreateTime(ctx)
	if err != nil {
		created = 0
	}
	name := s.nameFor(ctx, h, created)
	if name == "" || !s.nameAllowed(name) {
		return types.CandidateApp{}, 0, false
	}
	if s.filter.hideKernelEnabled() && isKernelThread(ctx, h, name, runtime.GOOS) {
		return types.CandidateApp{}, 0, false
	}

	status, err := h.Status(ctx)
	if err != nil || !isLive(status) {
		return types.CandidateApp{}, 0, false
	}

	foreground, err := h.Foreground(ctx)
	if err != nil {
		foreground = false
	}
	return types.CandidateApp{PID: pid, Name: name, IsFrontmost: foreground}, created, true
}

// keepNewestFrontmost clears the flag on all but the most recently started
// foreground candidate. Every terminal has its own foreground group, so an idle
// shell in another window would otherwise count as frontmost too.
func keepNewestFrontmost(apps []types.CandidateApp, started []int64) {
	best := -1
	for i, app := range apps {
		if !app.IsFrontmost {
			continue
		}
		if best < 0 || started[i] > started[best] ||
			(started[i] == started[best] && app.PID > apps[best].PID) {
			best = i
		}
	}
	for i := range apps {
		apps[i].IsFrontmost = i == best
	}
}

func (s *Source) nameFor(ctx context.Context, h procHandle, started int64) string {
	key := nameKey{pid: h.PID(), started: started}
	if cached, err := s.names.Get(key); err == nil {
		if name, ok := cached.(string); ok {
			return name
		}
	}
	name, err := h.Name(ctx)
	if err != nil {
		return ""
	}
	name = strings.TrimSpace(name)
	if name != "" {
		_ = s.names.Set(key, name)
	}
	return name
}

func (s *Source) nameAllowed(name string) bool {
	lower := strings.ToLower(name)
	for _, token := range s.exclude {
		if strings.Contains(lower, token) {
			return false
		}
	}
	if len(s.include) == 0 {
		return true
	}
	for _, token := range s.include {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// isLive rejects zombies and stopped processes.
func isLive(status []string) bool {
	for _, st := range status {
		switch st {
		case "zombie", "stop":
			return false
		}
	}
	return true
}

// isKernelThread uses the kthreadd parentage on Linux and falls back to well
// known kernel thread names elsewhere.
func isKernelThread(ctx context.Context, h procHandle, name, goos string) bool {
	if goos == "linux" {
		// kthreadd is pid 2 and parents every other kernel thread
		if h.PID() == 2 {
			return true
		}
		ppid, err := h.PPID(ctx)
		return err == nil && ppid == 2
	}
	lower := strings.ToLower(name)
	for _, prefix := range kernelThreadPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

var kernelThreadPrefixes = []string{"kworker", "ksoftirqd", "kthreadd", "migration", "watchdog", "rcu", "irq/"}

func lowerAll(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
