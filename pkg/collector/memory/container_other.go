//go:build !linux

package memory

// containerLimitBytes is a no-op outside Linux.
func containerLimitBytes() (uint64, error) {
	return 0, nil
}
