package candidates

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// procHandle is the slice of process metadata the source needs. Each accessor
// may hit the OS, so the source asks for them cheapest-first.
type procHandle interface {
	PID() int
	PPID(ctx context.Context) (int, error)
	Name(ctx context.Context) (string, error)
	RealUID(ctx context.Context) (int, error)
	Status(ctx context.Context) ([]string, error)
	Foreground(ctx context.Context) (bool, error)
	// CreateTime is the start time in milliseconds since the epoch.
	CreateTime(ctx context.Context) (int64, error)
}

type gopsutilHandle struct {
	p *process.Process
}

func (h gopsutilHandle) PID() int { return int(h.p.Pid) }

func (h gopsutilHandle) PPID(ctx context.Context) (int, error) {
	ppid, err := h.p.PpidWithContext(ctx)
	return int(ppid), err
}

func (h gopsutilHandle) Name(ctx context.Context) (string, error) {
	return h.p.NameWithContext(ctx)
}

func (h gopsutilHandle) RealUID(ctx context.Context) (int, error) {
	uids, err := h.p.UidsWithContext(ctx)
	if err != nil {
		return -1, err
	}
	if len(uids) == 0 {
		return -1, fmt.Errorf("no uids for pid %d", h.p.Pid)
	}
	return int(uids[0]), nil
}

func (h gopsutilHandle) Status(ctx context.Context) ([]string, error) {
	return h.p.StatusWithContext(ctx)
}

func (h gopsutilHandle) Foreground(ctx context.Context) (bool, error) {
	return h.p.ForegroundWithContext(ctx)
}

func (h gopsutilHandle) CreateTime(ctx context.Context) (int64, error) {
	return h.p.CreateTimeWithContext(ctx)
}

func listProcesses(ctx context.Context) ([]procHandle, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	handles := make([]procHandle, 0, len(procs))
	for _, p := range procs {
		if p == nil || p.Pid <= 0 {
			continue
		}
		handles = append(handles, gopsutilHandle{p: p})
	}
	return handles, nil
}
