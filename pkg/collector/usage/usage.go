// Package usage samples instantaneous CPU percent and resident memory for every
// visible process.
package usage

import (
	"context"
	"fmt"
	"strings"

	"github.com/srodi/appimpact/pkg/types"
)

// Sampler kinds accepted by New.
const (
	KindAuto     = "auto"
	KindGopsutil = "gopsutil"
	KindPS       = "ps"
)

// Sampler produces a PID -> usage map. Missing PIDs are normal; an error means
// nothing could be sampled at all.
type Sampler interface {
	Sample(ctx context.Context) (map[int]types.ProcessUsage, error)
}

// New returns the sampler for kind. "auto" picks the gopsutil sampler.
func New(kind string) (Sampler, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindAuto, KindGopsutil:
		return NewProcessSampler(), nil
	case KindPS:
		return NewPSSampler(), nil
	default:
		return nil, fmt.Errorf("unknown sampler %q (want %s, %s or %s)", kind, KindAuto, KindGopsutil, KindPS)
	}
}
