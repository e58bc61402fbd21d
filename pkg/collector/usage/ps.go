package usage

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/srodi/appimpact/pkg/types"
)

var psArgs = []string{"-axo", "pid=,%cpu=,rss="}

// PSSampler shells out to ps(1). ps reports RSS in KiB.
type PSSampler struct {
	run func(ctx context.Context) ([]byte, error)
}

// NewPSSampler returns a sampler backed by the system ps binary.
func NewPSSampler() *PSSampler {
	return &PSSampler{run: runPS}
}

func runPS(ctx context.Context) ([]byte, error) {
	return exec.CommandContext(ctx, "ps", psArgs...).Output()
}

// Sample runs ps once and parses its output.
func (s *PSSampler) Sample(ctx context.Context) (map[int]types.ProcessUsage, error) {
	out, err := s.run(ctx)
	if err != nil {
		return nil, fmt.Errorf("running ps: %w", err)
	}
	return ParsePSOutput(out), nil
}

// ParsePSOutput parses "pid %cpu rss" lines. Malformed lines are skipped.
func ParsePSOutput(out []byte) map[int]types.ProcessUsage {
	result := make(map[int]types.ProcessUsage)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil || pid <= 0 {
			continue
		}
		cpu, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		rssKB, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		// ParseFloat also accepts nan, inf and signed values.
		u := types.ProcessUsage{CPUPercent: cpu, ResidentBytes: rssKB * 1024}
		if !u.Valid() {
			continue
		}
		result[pid] = u
	}
	return result
}
