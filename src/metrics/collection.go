package metrics

import (
	"errors"
	"fmt"

	linuxproc "github.com/c9s/goprocinfo/linux"
)

const (
	DefaultStatPath    = "/proc/stat"
	DefaultMemInfoPath = "/proc/meminfo"
)

// Metric samples one scalar signal.
type Metric func() (float64, error)

// NewCPUMetric returns the fraction of time all CPUs were busy since the
// previous sample. The first sample covers the time since boot.
func NewCPUMetric(path string) Metric {
	var (
		prev linuxproc.CPUStat
		last float64
	)
	return func() (float64, error) {
		stat, err := linuxproc.ReadStat(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		cur := stat.CPUStatAll

		total := cpuTotal(cur) - cpuTotal(prev)
		idle := (cur.Idle + cur.IOWait) - (prev.Idle + prev.IOWait)
		prev = cur
		if total == 0 {
			return last, nil
		}
		last = float64(total-idle) / float64(total)
		return last, nil
	}
}

func cpuTotal(s linuxproc.CPUStat) uint64 {
	// guest time is already accounted in user
	return s.User + s.Nice + s.System + s.Idle + s.IOWait + s.IRQ + s.SoftIRQ + s.Steal
}

// NewMemoryMetric returns the fraction of memory in use.
func NewMemoryMetric(path string) Metric {
	return func() (float64, error) {
		info, err := linuxproc.ReadMemInfo(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		if info.MemTotal == 0 {
			return 0, errors.New("meminfo reports zero MemTotal")
		}
		return 1 - float64(info.MemAvailable)/float64(info.MemTotal), nil
	}
}
