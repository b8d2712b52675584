package metrics

import (
	"time"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// ProcessSample is one CPU/memory snapshot of the supervised worker.
type ProcessSample struct {
	PID        int32     `json:"pid"`
	Name       string    `json:"name"`
	CPUPercent float64   `json:"cpu_percent"`
	MemoryMB   float64   `json:"memory_mb"`
	NumThreads int32     `json:"num_threads"`
	Timestamp  time.Time `json:"timestamp"`
}

// SampleProcess takes a single snapshot of the given PID. Partial data is
// acceptable: fields the platform cannot report stay zero.
func SampleProcess(pid int32) (ProcessSample, error) {
	p, err := gopsproc.NewProcess(pid)
	if err != nil {
		return ProcessSample{}, err
	}
	s := ProcessSample{PID: pid, Timestamp: time.Now()}
	if name, err := p.Name(); err == nil {
		s.Name = name
	}
	if cpu, err := p.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		s.MemoryMB = float64(mem.RSS) / 1024 / 1024
	}
	if threads, err := p.NumThreads(); err == nil {
		s.NumThreads = threads
	}
	return s, nil
}
