//go:build windows

package supervisor

import (
	"time"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// startTime returns the process creation time via gopsutil; zero time
// when unavailable.
func startTime(pid int) time.Time {
	if pid <= 0 {
		return time.Time{}
	}
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return time.Time{}
	}
	ms, err := p.CreateTime()
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.Unix(ms/1000, 0)
}
