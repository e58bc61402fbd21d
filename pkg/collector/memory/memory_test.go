package memory

import (
	"errors"
	"os"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubMemory(t *testing.T, vm func() (*mem.VirtualMemoryStat, error), files map[string]string) {
	t.Helper()
	t.Cleanup(func() {
		procReadFile = os.ReadFile
		virtualMemory = mem.VirtualMemory
	})
	virtualMemory = vm
	procReadFile = func(path string) ([]byte, error) {
		if data, ok := files[path]; ok {
			return []byte(data), nil
		}
		return nil, os.ErrNotExist
	}
}

const meminfo = "MemTotal:       16384000 kB\nMemFree:         1024000 kB\n"

func TestTotalMemoryBytesParsesMeminfo(t *testing.T) {
	stubMemory(t, nil, map[string]string{"/proc/meminfo": meminfo})
	total, err := TotalMemoryBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(16384000*1024), total)
}

func TestTotalMemoryBytesMissingField(t *testing.T) {
	stubMemory(t, nil, map[string]string{"/proc/meminfo": "MemFree: 10 kB\n"})
	_, err := TotalMemoryBytes()
	assert.Error(t, err)

	stubMemory(t, nil, map[string]string{"/proc/meminfo": "MemTotal:\n"})
	_, err = TotalMemoryBytes()
	assert.Error(t, err)
}

func TestPhysicalMemoryPrefersGopsutil(t *testing.T) {
	stubMemory(t, func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 8 << 30}, nil
	}, map[string]string{"/proc/meminfo": meminfo})

	total, err := PhysicalMemoryBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(8<<30), total)
}

func TestPhysicalMemoryFallsBackToProc(t *testing.T) {
	stubMemory(t, func() (*mem.VirtualMemoryStat, error) {
		return nil, errors.New("boom")
	}, map[string]string{"/proc/meminfo": meminfo})

	total, err := PhysicalMemoryBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(16384000*1024), total)
}

func TestPhysicalMemoryBothSourcesFail(t *testing.T) {
	stubMemory(t, func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{}, nil
	}, nil)

	_, err := PhysicalMemoryBytes()
	assert.Error(t, err)
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"max\n", 0, false},
		{"2147483648\n", 2 << 30, false},
		{"9223372036854771712", 0, false},
		{"garbage", 0, true},
	}
	for _, tc := range cases {
		got, err := parseLimit([]byte(tc.in))
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
