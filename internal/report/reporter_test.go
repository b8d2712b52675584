package report

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bimops/rvtbatch/internal/history"
	"github.com/bimops/rvtbatch/internal/registry"
	"github.com/bimops/rvtbatch/internal/supervisor"
)

type countingHooks struct {
	qc       int
	warnings int
}

func (c *countingHooks) UpdateQC(projectCode, htmlPath string) error {
	c.qc++
	return nil
}

func (c *countingHooks) Export(projectCode, htmlPath string) error {
	c.warnings++
	return nil
}

type memorySink struct {
	events []history.Event
}

func (m *memorySink) Send(ctx context.Context, e history.Event) error {
	m.events = append(m.events, e)
	return nil
}

func newTestReporter(t *testing.T) (*Reporter, *countingHooks, *memorySink, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job_logging.csv")
	jl, err := OpenJobLog(path)
	if err != nil {
		t.Fatalf("OpenJobLog: %v", err)
	}
	hooks := &countingHooks{}
	sink := &memorySink{}
	r := &Reporter{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		JobLog:   jl,
		Graphs:   hooks,
		Warnings: hooks,
		Sinks:    []history.Sink{sink},
	}
	return r, hooks, sink, path
}

func rows(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read job log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return lines
}

func qcSpec() registry.CommandSpec {
	return registry.CommandSpec{Name: "qc", Hook: registry.HookQCGraphs, HookPolicy: registry.PolicyOnSuccess}
}

func warningsSpec() registry.CommandSpec {
	return registry.CommandSpec{Name: "warnings", Hook: registry.HookWarnings, HookPolicy: registry.PolicyAlways}
}

func auditSpec() registry.CommandSpec {
	return registry.CommandSpec{Name: "audit", Hook: registry.HookNone, HookPolicy: registry.PolicyOnSuccess}
}

func TestReportCompletedQCInvokesGraphsOnce(t *testing.T) {
	r, hooks, sink, path := newTestReporter(t)
	run := RunInfo{ProjectCode: "456_11", Command: "qc", PID: 42}

	err := r.Report(context.Background(), supervisor.Outcome{Kind: supervisor.Completed}, qcSpec(), run)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if hooks.qc != 1 || hooks.warnings != 0 {
		t.Fatalf("expected one qc hook invocation, got qc=%d warnings=%d", hooks.qc, hooks.warnings)
	}
	lines := rows(t, path)
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], ";INFO;456_11;") || !strings.Contains(lines[1], ";0;") {
		t.Fatalf("unexpected success row: %q", lines[1])
	}
	if len(sink.events) != 1 || sink.events[0].Record.Outcome != "completed" {
		t.Fatalf("history event not forwarded: %+v", sink.events)
	}
}

func TestReportTimedOutQCLogsWarning(t *testing.T) {
	r, hooks, _, path := newTestReporter(t)
	run := RunInfo{ProjectCode: "456_11", Command: "qc"}

	_ = r.Report(context.Background(), supervisor.Outcome{Kind: supervisor.TimedOut}, qcSpec(), run)
	if hooks.qc != 0 {
		t.Fatalf("qc hook must not fire on timeout, got %d", hooks.qc)
	}
	lines := rows(t, path)
	if !strings.Contains(lines[1], ";WARNING;456_11;") || !strings.Contains(lines[1], ";1;") {
		t.Fatalf("unexpected timeout row: %q", lines[1])
	}
}

func TestReportWarningsFiresOnTimeoutToo(t *testing.T) {
	for _, kind := range []supervisor.OutcomeKind{supervisor.Completed, supervisor.TimedOut} {
		t.Run(kind.String(), func(t *testing.T) {
			r, hooks, _, path := newTestReporter(t)
			run := RunInfo{ProjectCode: "416_T99", Command: "warnings"}

			_ = r.Report(context.Background(), supervisor.Outcome{Kind: kind}, warningsSpec(), run)
			if hooks.warnings != 1 {
				t.Fatalf("warnings hook must fire exactly once, got %d", hooks.warnings)
			}
			// The always policy reports success even after a kill.
			lines := rows(t, path)
			if !strings.Contains(lines[1], ";INFO;416_T99;") || !strings.Contains(lines[1], ";0;") {
				t.Fatalf("warnings must log a success row, got %q", lines[1])
			}
		})
	}
}

func TestReportAuditIsNoOp(t *testing.T) {
	r, hooks, _, _ := newTestReporter(t)
	_ = r.Report(context.Background(), supervisor.Outcome{Kind: supervisor.Completed}, auditSpec(), RunInfo{ProjectCode: "p"})
	if hooks.qc != 0 || hooks.warnings != 0 {
		t.Fatalf("audit must invoke no hook: %+v", hooks)
	}
}

func TestReportModelNotFoundSkipsHooks(t *testing.T) {
	r, hooks, sink, path := newTestReporter(t)
	_ = r.Report(context.Background(), supervisor.Outcome{Kind: supervisor.ModelNotFound}, qcSpec(), RunInfo{ProjectCode: "p"})
	if hooks.qc != 0 || hooks.warnings != 0 {
		t.Fatalf("no hook may fire for a missing model: %+v", hooks)
	}
	lines := rows(t, path)
	if !strings.Contains(lines[1], ";2;") {
		t.Fatalf("expected model-not-found code row: %q", lines[1])
	}
	if len(sink.events) != 1 {
		t.Fatalf("missing model still produces one history event, got %d", len(sink.events))
	}
}

func TestReportIsIdempotentPerRun(t *testing.T) {
	r, hooks, _, path := newTestReporter(t)
	run := RunInfo{ProjectCode: "p", Command: "qc"}
	_ = r.Report(context.Background(), supervisor.Outcome{Kind: supervisor.Completed}, qcSpec(), run)
	_ = r.Report(context.Background(), supervisor.Outcome{Kind: supervisor.Completed}, qcSpec(), run)
	if hooks.qc != 1 {
		t.Fatalf("duplicate report must be suppressed, qc hook fired %d times", hooks.qc)
	}
	if got := len(rows(t, path)); got != 2 {
		t.Fatalf("expected one result row, got %d lines", got)
	}
}

func TestJobLogHeaderSeededOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_logging.csv")
	jl, err := OpenJobLog(path)
	if err != nil {
		t.Fatalf("OpenJobLog: %v", err)
	}
	if err := jl.Append("INFO", "p", 1, CodeSuccess, "args"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// Re-opening must not re-seed the header.
	if _, err := OpenJobLog(path); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	lines := rows(t, path)
	if lines[0] != strings.TrimSpace(jobLogHeader) {
		t.Fatalf("missing header: %q", lines[0])
	}
	if len(lines) != 2 {
		t.Fatalf("header re-seeded or row lost: %v", lines)
	}
	if strings.Count(strings.Join(lines, "\n"), "time_stamp") != 1 {
		t.Fatal("header duplicated")
	}
}

func TestProcessHashStable(t *testing.T) {
	at := time.Now()
	if ProcessHash(10, at) != ProcessHash(10, at) {
		t.Fatal("hash not stable for identical identity")
	}
	if ProcessHash(10, at) == ProcessHash(11, at) {
		t.Fatal("hash collision across pids")
	}
}
