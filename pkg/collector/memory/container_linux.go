//go:build linux

package memory

import "os"

var cgroupLimitFiles = []string{
	"/sys/fs/cgroup/memory.max",                   // cgroup v2
	"/sys/fs/cgroup/memory/memory.limit_in_bytes", // cgroup v1
}

// containerLimitBytes returns the first cgroup memory limit found, or 0 when
// none is set.
func containerLimitBytes() (uint64, error) {
	for _, path := range cgroupLimitFiles {
		data, err := procReadFile(path)
		if err != nil {
			continue
		}
		return parseLimit(data)
	}
	return 0, os.ErrNotExist
}
