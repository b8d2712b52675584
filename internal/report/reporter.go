// Package report turns the terminal outcome of one supervised run into
// exactly one post-run hook invocation, one structured log row, and a
// best-effort history event. It runs strictly after the Polling loop has
// reached a terminal state, never concurrently with it.
package report

import (
	"context"
	"hash/fnv"
	"log/slog"
	"strconv"
	"time"

	"github.com/bimops/rvtbatch/internal/history"
	"github.com/bimops/rvtbatch/internal/registry"
	"github.com/bimops/rvtbatch/internal/supervisor"
)

// RunInfo identifies one run for logging and history.
type RunInfo struct {
	ProjectCode string
	Command     string
	PID         int
	ProcessHash uint64
	HTMLPath    string
	Args        string
}

type Reporter struct {
	Logger   *slog.Logger
	JobLog   *JobLog
	Graphs   GraphUpdater
	Warnings WarningsExporter
	Sinks    []history.Sink

	reported bool
}

// Report dispatches the post-run hook for the outcome and appends the
// result row. It is called at most once per run; a second call is a
// programming error and is refused.
func (r *Reporter) Report(ctx context.Context, outcome supervisor.Outcome, spec registry.CommandSpec, run RunInfo) error {
	if r.reported {
		r.Logger.Error("duplicate outcome report suppressed", "project", run.ProjectCode)
		return nil
	}
	r.reported = true

	switch outcome.Kind {
	case supervisor.ModelNotFound:
		// No hook; operator-facing output plus one log row.
		r.Logger.Warn("model not found", "project", run.ProjectCode)
		r.append("WARNING", run, CodeModelNotFound)
	case supervisor.Cancelled:
		r.Logger.Warn("run cancelled", "project", run.ProjectCode)
		r.append("WARNING", run, CodeCancelled)
	case supervisor.Completed:
		r.reportCompleted(outcome, spec, run)
	case supervisor.TimedOut:
		r.reportTimedOut(spec, run)
	}

	r.sendHistory(ctx, outcome, run)
	return nil
}

func (r *Reporter) reportCompleted(outcome supervisor.Outcome, spec registry.CommandSpec, run RunInfo) {
	r.Logger.Info("run completed", "project", run.ProjectCode, "exit_code", outcome.ExitCode)
	r.append("INFO", run, CodeSuccess)

	switch spec.Hook {
	case registry.HookQCGraphs:
		if err := r.Graphs.UpdateQC(run.ProjectCode, run.HTMLPath); err != nil {
			r.Logger.Error("qc graph update failed", "project", run.ProjectCode, "error", err)
		}
	case registry.HookWarnings:
		r.exportWarnings(run)
	case registry.HookNone:
		// audit: explicitly no post-run artifact action
	}
}

func (r *Reporter) reportTimedOut(spec registry.CommandSpec, run RunInfo) {
	// PolicyAlways commands still report success: their artifacts are
	// written incrementally by the application before the kill.
	if spec.Hook == registry.HookWarnings && spec.HookPolicy == registry.PolicyAlways {
		r.Logger.Warn("timeout reached, exporting warnings anyway", "project", run.ProjectCode)
		r.exportWarnings(run)
		r.append("INFO", run, CodeSuccess)
		return
	}
	r.Logger.Warn("timeout reached, worker killed", "project", run.ProjectCode)
	r.append("WARNING", run, CodeTimeout)
}

func (r *Reporter) exportWarnings(run RunInfo) {
	if err := r.Warnings.Export(run.ProjectCode, run.HTMLPath); err != nil {
		r.Logger.Error("warnings export failed", "project", run.ProjectCode, "error", err)
	}
}

func (r *Reporter) append(level string, run RunInfo, code int) {
	if r.JobLog == nil {
		return
	}
	if err := r.JobLog.Append(level, run.ProjectCode, run.ProcessHash, code, ""); err != nil {
		r.Logger.Error("job log append failed", "error", err)
	}
}

// sendHistory forwards the outcome to every configured sink. Sink errors
// are logged, never fatal: history is observability, not control flow.
func (r *Reporter) sendHistory(ctx context.Context, outcome supervisor.Outcome, run RunInfo) {
	if len(r.Sinks) == 0 {
		return
	}
	e := history.Event{
		Type:       history.EventFinish,
		OccurredAt: time.Now(),
		Record: history.Record{
			Project:  run.ProjectCode,
			Command:  run.Command,
			PID:      run.PID,
			Outcome:  outcome.Kind.String(),
			ExitCode: outcome.ExitCode,
		},
	}
	for _, sink := range r.Sinks {
		if err := sink.Send(ctx, e); err != nil {
			r.Logger.Warn("history sink send failed", "error", err)
		}
	}
}

// ProcessHash derives the stable process identity recorded in the job
// log, from the supervising process PID and start time.
func ProcessHash(pid int, startedAt time.Time) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.Itoa(pid)))
	_, _ = h.Write([]byte(startedAt.UTC().Format(time.RFC3339Nano)))
	return h.Sum64()
}
