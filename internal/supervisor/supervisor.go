// Package supervisor owns the process lifecycle state machine:
// Launching -> ChildDiscovery -> Polling -> {Completed | TimedOut |
// Cancelled}. It launches the external application against a composed
// journal, discovers its worker subprocess for diagnostics, polls on a
// fixed cadence up to the caller's deadline, and guarantees a kill
// attempt on every exit path so no process group outlives the budget.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"time"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// ErrLaunch reports that the external executable could not be started at
// all. Fatal for the run; never retried here.
var ErrLaunch = errors.New("launch failure")

// Poll cadence and the grace period allowed for the launched application
// to spawn its worker before child discovery.
const (
	DefaultTick   = time.Second
	DefaultSettle = time.Second
)

// Job is the fully composed work order for one run.
type Job struct {
	Executable  string
	JournalPath string
	WorkDir     string
	Env         []string
	Timeout     time.Duration // whole seconds; total Polling budget
}

// ChildInfo identifies the discovered primary worker subprocess. The
// distinction is diagnostic only; supervision always targets the launched
// process group.
type ChildInfo struct {
	PID  int32
	Name string
}

// SupervisedProcess wraps the launched process handle plus the worker
// discovered after the settle delay.
type SupervisedProcess struct {
	PID       int
	Name      string
	StartedAt time.Time
	Child     *ChildInfo
}

// Supervisor runs one Job to a terminal state.
type Supervisor struct {
	job    Job
	logger *slog.Logger

	tick   time.Duration
	settle time.Duration

	stdout io.WriteCloser
	stderr io.WriteCloser

	// OnTick, when set, observes each poll tick with the remaining whole
	// seconds of budget (operator countdown).
	OnTick func(remaining int)
	// OnChild, when set, observes the supervised process right after
	// child discovery (metrics sampling).
	OnChild func(SupervisedProcess)
}

func New(job Job, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{job: job, logger: logger, tick: DefaultTick, settle: DefaultSettle}
}

// SetIntervals overrides the poll cadence and settle delay, for tests.
func (s *Supervisor) SetIntervals(tick, settle time.Duration) {
	s.tick, s.settle = tick, settle
}

// SetOutputWriters captures the launched process stdout/stderr. The
// supervisor closes both when the run reaches a terminal state.
func (s *Supervisor) SetOutputWriters(stdout, stderr io.WriteCloser) {
	s.stdout, s.stderr = stdout, stderr
}

// Run drives one job to a terminal outcome. The returned SupervisedProcess
// is valid whenever launch succeeded, regardless of outcome.
func (s *Supervisor) Run(ctx context.Context) (Outcome, *SupervisedProcess, error) {
	cmd := exec.Command(s.job.Executable, s.job.JournalPath)
	cmd.Dir = s.job.WorkDir
	if len(s.job.Env) > 0 {
		cmd.Env = s.job.Env
	}
	if s.stdout != nil {
		cmd.Stdout = s.stdout
	}
	if s.stderr != nil {
		cmd.Stderr = s.stderr
	}
	configureSysProcAttr(cmd)
	defer s.closeWriters()

	if err := cmd.Start(); err != nil {
		return Outcome{}, nil, fmt.Errorf("%w: %s: %v", ErrLaunch, s.job.Executable, err)
	}
	proc := &SupervisedProcess{
		PID:       cmd.Process.Pid,
		Name:      processName(cmd),
		StartedAt: startTime(cmd.Process.Pid),
	}
	s.logger.Info("process launched", "pid", proc.PID, "name", proc.Name)

	// Single waiter: cmd.Wait must be called exactly once; every poll
	// tick observes this channel instead of re-waiting.
	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	// Kill is attempted on every exit path; waitCh is drained afterwards
	// so the child is reaped and never left running past the deadline.
	reaped := false
	defer func() {
		if reaped {
			return
		}
		killGroup(proc.PID)
		select {
		case <-waitCh:
		case <-time.After(200 * time.Millisecond):
		}
	}()

	// ChildDiscovery after the settle delay. Zero children is a
	// diagnostic-only condition, never a failure.
	select {
	case <-time.After(s.settle):
	case <-ctx.Done():
		return Outcome{Kind: Cancelled}, proc, nil
	case err := <-waitCh:
		reaped = true
		return s.earlyExitOutcome(ctx, cmd, proc, err)
	}
	proc.Child = s.discoverChild(proc.PID)
	if s.OnChild != nil {
		s.OnChild(*proc)
	}

	// Polling: fixed cadence against a wall-clock budget.
	deadline := time.Now().Add(s.job.Timeout)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	exited := false

	for {
		select {
		case err := <-waitCh:
			reaped = true
			code := exitCode(cmd, err)
			if code == 0 {
				s.logger.Info("process finished", "pid", proc.PID, "exit_code", 0)
				return Outcome{Kind: Completed, ExitCode: 0}, proc, nil
			}
			// A non-zero exit is not the completion signal; the budget
			// runs out before TimedOut is reported. Exit-code semantics
			// of the external application are asynchronous.
			s.logger.Warn("process exited without completion signal", "pid", proc.PID, "exit_code", code)
			exited = true
		case <-ctx.Done():
			s.logger.Warn("run cancelled, killing process group", "pid", proc.PID)
			killGroup(proc.PID)
			s.reap(waitCh, &reaped)
			return Outcome{Kind: Cancelled}, proc, nil
		case now := <-ticker.C:
			if now.Before(deadline) {
				if s.OnTick != nil {
					s.OnTick(int(math.Ceil(deadline.Sub(now).Seconds())))
				}
				continue
			}
			if !exited {
				s.logger.Warn("timeout, killing process group", "pid", proc.PID, "timeout", s.job.Timeout)
				killGroup(proc.PID)
			}
			s.reap(waitCh, &reaped)
			return Outcome{Kind: TimedOut}, proc, nil
		}
	}
}

// earlyExitOutcome handles a process that exits during the settle delay,
// before Polling starts.
func (s *Supervisor) earlyExitOutcome(ctx context.Context, cmd *exec.Cmd, proc *SupervisedProcess, err error) (Outcome, *SupervisedProcess, error) {
	if code := exitCode(cmd, err); code == 0 {
		s.logger.Info("process finished before first poll", "pid", proc.PID)
		return Outcome{Kind: Completed, ExitCode: 0}, proc, nil
	}
	// Same rule as in Polling: wait out the budget, then report timeout.
	select {
	case <-time.After(s.job.Timeout):
	case <-ctx.Done():
		return Outcome{Kind: Cancelled}, proc, nil
	}
	return Outcome{Kind: TimedOut}, proc, nil
}

func (s *Supervisor) reap(waitCh <-chan error, reaped *bool) {
	if *reaped {
		return
	}
	select {
	case <-waitCh:
		*reaped = true
	case <-time.After(2 * s.tick):
	}
}

// discoverChild enumerates direct children of the launched process and
// records the first as the primary worker. Degrades to watching the
// parent when none exist.
func (s *Supervisor) discoverChild(pid int) *ChildInfo {
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		s.logger.Debug("child discovery: parent handle unavailable", "pid", pid, "error", err)
		return nil
	}
	children, err := p.Children()
	if err != nil || len(children) == 0 {
		s.logger.Warn("no child process found, supervising parent directly", "pid", pid)
		return nil
	}
	child := children[0]
	name, _ := child.Name()
	s.logger.Info("worker process discovered",
		"child_pid", child.Pid, "child_name", name, "children", len(children))
	return &ChildInfo{PID: child.Pid, Name: name}
}

func (s *Supervisor) closeWriters() {
	if s.stdout != nil {
		_ = s.stdout.Close()
	}
	if s.stderr != nil {
		_ = s.stderr.Close()
	}
}

func processName(cmd *exec.Cmd) string {
	if p, err := gopsproc.NewProcess(int32(cmd.Process.Pid)); err == nil {
		if name, err := p.Name(); err == nil {
			return name
		}
	}
	return cmd.Path
}

// exitCode extracts the exit code from cmd.Wait's result; -1 when unknown.
func exitCode(cmd *exec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}
