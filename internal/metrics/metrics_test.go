package metrics

import (
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	// A second call must not panic on duplicate registration.
	Register(reg)

	IncRun("qc", "completed")
	IncRun("qc", "completed")
	IncRun("warnings", "timed_out")

	if got := testutil.ToFloat64(runsTotal.WithLabelValues("qc", "completed")); got != 2 {
		t.Fatalf("qc/completed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(runsTotal.WithLabelValues("warnings", "timed_out")); got != 1 {
		t.Fatalf("warnings/timed_out = %v, want 1", got)
	}

	ObserveRun("qc", 12.5)
	if got := testutil.CollectAndCount(runSeconds); got == 0 {
		t.Fatal("histogram collected nothing")
	}
}

func TestSampleProcessSelf(t *testing.T) {
	s, err := SampleProcess(int32(os.Getpid()))
	if err != nil {
		t.Fatalf("SampleProcess: %v", err)
	}
	if s.PID != int32(os.Getpid()) {
		t.Fatalf("pid = %d, want %d", s.PID, os.Getpid())
	}
	if s.Name == "" {
		t.Fatal("expected a process name for the current process")
	}
	if s.MemoryMB <= 0 {
		t.Fatalf("expected nonzero RSS, got %v", s.MemoryMB)
	}
	if s.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
}

func TestSampleProcessGone(t *testing.T) {
	// PID values this large are not allocatable on supported platforms.
	if _, err := SampleProcess(1 << 30); err == nil {
		t.Fatal("expected error for nonexistent pid")
	}
}
