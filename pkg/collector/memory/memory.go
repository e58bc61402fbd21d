// Package memory reports how much RAM the host (or its container) offers.
package memory

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"
)

// Stubbed in tests.
var (
	procReadFile  = os.ReadFile
	virtualMemory = mem.VirtualMemory
)

// TotalMemoryBytes returns the physical memory reported by /proc/meminfo.
func TotalMemoryBytes() (uint64, error) {
	data, err := procReadFile("/proc/meminfo")
	if err != nil {
		return 0, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "MemTotal:") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return 0, fmt.Errorf("unexpected format for MemTotal")
			}
			kb, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return 0, err
			}
			return kb * 1024, nil // bytes
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("MemTotal not found in /proc/meminfo")
}

// PhysicalMemoryBytes asks gopsutil first and falls back to /proc/meminfo.
func PhysicalMemoryBytes() (uint64, error) {
	vm, err := virtualMemory()
	if err == nil && vm != nil && vm.Total > 0 {
		return vm.Total, nil
	}
	total, procErr := TotalMemoryBytes()
	if procErr != nil {
		if err == nil {
			err = fmt.Errorf("virtual memory reported zero total")
		}
		return 0, fmt.Errorf("reading total memory: %w (fallback: %v)", err, procErr)
	}
	return total, nil
}

// EffectiveMemoryBytes returns physical memory, clamped to the cgroup memory
// limit when the process runs inside a container with a tighter limit.
func EffectiveMemoryBytes() (uint64, error) {
	total, err := PhysicalMemoryBytes()
	if err != nil {
		return 0, err
	}
	if limit, err := containerLimitBytes(); err == nil && limit > 0 && limit < total {
		return limit, nil
	}
	return total, nil
}

// parseLimit reads a cgroup memory limit file. "max" and absurdly large values
// mean no limit and yield 0.
func parseLimit(data []byte) (uint64, error) {
	content := strings.TrimSpace(string(data))
	if content == "max" {
		return 0, nil
	}
	value, err := strconv.ParseUint(content, 10, 64)
	if err != nil {
		return 0, err
	}
	if value >= 1<<62 {
		return 0, nil
	}
	return value, nil
}
