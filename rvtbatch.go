// Package rvtbatch drives one batch run of the external CAD application
// against a model file: it resolves the requested post-processing
// command, composes the journal and add-in artifacts, supervises the
// launched process under a timeout-and-kill policy, and reports the
// terminal outcome exactly once.
package rvtbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bimops/rvtbatch/internal/config"
	"github.com/bimops/rvtbatch/internal/env"
	"github.com/bimops/rvtbatch/internal/history"
	"github.com/bimops/rvtbatch/internal/history/factory"
	"github.com/bimops/rvtbatch/internal/install"
	"github.com/bimops/rvtbatch/internal/journal"
	"github.com/bimops/rvtbatch/internal/logger"
	"github.com/bimops/rvtbatch/internal/metrics"
	"github.com/bimops/rvtbatch/internal/notify"
	"github.com/bimops/rvtbatch/internal/registry"
	"github.com/bimops/rvtbatch/internal/report"
	"github.com/bimops/rvtbatch/internal/rpscatalog"
	"github.com/bimops/rvtbatch/internal/rvtfile"
	"github.com/bimops/rvtbatch/internal/supervisor"
)

// Re-export core types for embedding consumers.

type Outcome = supervisor.Outcome

type OutcomeKind = supervisor.OutcomeKind

const (
	Completed     = supervisor.Completed
	TimedOut      = supervisor.TimedOut
	Cancelled     = supervisor.Cancelled
	ModelNotFound = supervisor.ModelNotFound
)

type CommandSpec = registry.CommandSpec

// GraphUpdater and WarningsExporter are the post-run collaborators; see
// internal/report for their contracts.
type GraphUpdater = report.GraphUpdater

type WarningsExporter = report.WarningsExporter

var (
	ErrCommandNotFound = registry.ErrCommandNotFound
	ErrInvalidPlugin   = registry.ErrInvalidPlugin
	ErrTemplate        = journal.ErrTemplate
	ErrLaunch          = supervisor.ErrLaunch
)

// RunRequest carries one invocation's arguments.
type RunRequest struct {
	Command       string
	ProjectCode   string
	ModelPath     string // model directory, trailing separator preserved
	ModelFileName string
	ExePath       string // fallback executable when autodetection fails
	RvtVersion    string // fallback major version when autodetection fails
	Timeout       time.Duration
	HTMLPath      string // graph output override; empty selects per-command default
}

// RunResult is the terminal state of one run.
type RunResult struct {
	Outcome Outcome
	Spec    CommandSpec
	Process *supervisor.SupervisedProcess
}

// Runner wires the registry, composer, supervisor, and reporter around
// one root directory. Construct once per invocation; not safe for
// concurrent runs (journal artifacts are keyed by project code only).
type Runner struct {
	layout    config.PathLayout
	fileCfg   config.FileConfig
	logCfg    logger.Config
	logger    *slog.Logger
	logCloser io.Closer
	sinks     []history.Sink

	graphs   GraphUpdater
	warnings WarningsExporter

	// poll cadence and settle delay, overridable for tests
	tick   time.Duration
	settle time.Duration
}

// New builds a Runner rooted at root, loading the optional rvtbatch.toml
// beside it and preparing the directory layout and logging.
func New(root string) (*Runner, error) {
	layout, err := config.ResolveLayout(root)
	if err != nil {
		return nil, err
	}
	fileCfg, err := config.Load(filepath.Join(layout.Root, config.ConfigFileName))
	if err != nil {
		return nil, err
	}
	if err := layout.EnsureDirs(); err != nil {
		return nil, err
	}

	logCfg := logger.Config{
		Dir:        layout.Logs,
		Level:      fileCfg.Log.Level,
		Color:      fileCfg.Log.Color,
		MaxSizeMB:  fileCfg.Log.MaxSizeMB,
		MaxBackups: fileCfg.Log.MaxBackups,
		MaxAgeDays: fileCfg.Log.MaxAgeDays,
		Compress:   fileCfg.Log.Compress,
	}
	log, closer := logCfg.New()

	r := &Runner{
		layout:    layout,
		fileCfg:   fileCfg,
		logCfg:    logCfg,
		logger:    log,
		logCloser: closer,
		tick:      supervisor.DefaultTick,
		settle:    supervisor.DefaultSettle,
	}
	if fileCfg.History.Enabled && fileCfg.History.DSN != "" {
		sink, err := factory.NewSinkFromDSN(fileCfg.History.DSN)
		if err != nil {
			log.Warn("history sink unavailable", "dsn", fileCfg.History.DSN, "error", err)
		} else {
			r.sinks = append(r.sinks, sink)
		}
	}
	metrics.Register(nil)
	return r, nil
}

// Close releases log writers and history sinks.
func (r *Runner) Close() {
	for _, s := range r.sinks {
		if c, ok := s.(io.Closer); ok {
			_ = c.Close()
		}
	}
	if r.logCloser != nil {
		_ = r.logCloser.Close()
	}
}

// Logger exposes the runner's logger for the CLI layer.
func (r *Runner) Logger() *slog.Logger { return r.logger }

// Layout exposes the resolved path layout.
func (r *Runner) Layout() config.PathLayout { return r.layout }

// SetIntervals overrides the supervision cadence, for tests.
func (r *Runner) SetIntervals(tick, settle time.Duration) {
	r.tick, r.settle = tick, settle
}

// SetHooks replaces the default post-run collaborators. Nil arguments
// keep the logging defaults.
func (r *Runner) SetHooks(graphs GraphUpdater, warnings WarningsExporter) {
	r.graphs, r.warnings = graphs, warnings
}

// Commands lists the discovered command names.
func (r *Runner) Commands() ([]string, error) {
	return registry.Names(r.layout.Commands)
}

// History reads back stored run events for a project from the first
// queryable sink, newest first. limit <= 0 means no limit.
func (r *Runner) History(ctx context.Context, project string, limit int) ([]history.Event, error) {
	for _, s := range r.sinks {
		if q, ok := s.(history.Querier); ok {
			return q.Query(ctx, project, limit)
		}
	}
	return nil, errors.New("no queryable history sink configured")
}

// lazyCatalog defers control-catalog parsing until a command actually
// declares a ui_button capability.
type lazyCatalog struct {
	root    string
	version string
}

func (c lazyCatalog) Button(name string) (string, error) {
	cat, err := rpscatalog.Find(c.root, c.version)
	if err != nil {
		return "", err
	}
	return cat.Button(name)
}

// Run executes one batch invocation to a terminal outcome. Configuration
// failures (unknown command, invalid descriptor, malformed template)
// abort before any journal write or process launch.
func (r *Runner) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if req.Timeout < time.Second {
		return RunResult{}, fmt.Errorf("timeout must be at least one second, got %s", req.Timeout)
	}
	modelFull := filepath.Join(req.ModelPath, req.ModelFileName)

	// Command resolution happens before any artifact I/O so an operator
	// configuration error leaves the journals directory untouched.
	spec, err := registry.Resolve(req.Command, r.layout.Commands,
		lazyCatalog{root: r.catalogRoot(), version: req.RvtVersion},
		registry.FragmentBuilder{
			WarningsDir:    r.layout.Warnings + string(os.PathSeparator),
			ProjectCode:    req.ProjectCode,
			WarningsExport: journal.WarningsExportFragment,
			Audit:          journal.AuditFragment,
		})
	if err != nil {
		return RunResult{}, err
	}
	r.logger.Info("command resolved", "command", spec.Name, "kind", string(spec.Kind))

	jobLog, err := report.OpenJobLog(r.layout.JobLogFile())
	if err != nil {
		return RunResult{}, err
	}
	procHash := report.ProcessHash(os.Getpid(), time.Now())

	runEnv := env.New()
	runEnv.FromOS()
	runEnv.SetContract(req.ProjectCode, modelFull, r.layout.Logs)

	run := report.RunInfo{
		ProjectCode: req.ProjectCode,
		Command:     spec.Name,
		ProcessHash: procHash,
		HTMLPath:    r.htmlPath(req),
		Args:        req.argsString(),
	}
	if err := jobLog.Append("INFO", req.ProjectCode, procHash, report.CodeSuccess, run.Args+",task_started"); err != nil {
		r.logger.Warn("job log start row failed", "error", err)
	}

	graphs, warnings := r.graphs, r.warnings
	if graphs == nil {
		graphs = report.LogHooks{Logger: r.logger}
	}
	if warnings == nil {
		warnings = report.LogHooks{Logger: r.logger}
	}
	reporter := &report.Reporter{
		Logger:   r.logger,
		JobLog:   jobLog,
		Graphs:   graphs,
		Warnings: warnings,
		Sinks:    r.sinks,
	}

	if _, err := os.Stat(modelFull); err != nil {
		outcome := Outcome{Kind: ModelNotFound}
		_ = reporter.Report(ctx, outcome, spec, run)
		metrics.IncRun(spec.Name, outcome.Kind.String())
		return RunResult{Outcome: outcome, Spec: spec}, nil
	}

	exePath, rvtVersion := r.detectInstall(req, modelFull)

	kind := journal.KindDetachRPS
	if spec.Builder == registry.BuilderAudit {
		kind = journal.KindAuditDetach
	}
	modelDir := ensureTrailingSep(req.ModelPath)
	journalText, err := journal.Compose(kind, modelDir, req.ModelFileName, spec.Fragment)
	if err != nil {
		return RunResult{}, err
	}
	addinText, err := journal.ComposeAddin(rvtVersion)
	if err != nil {
		return RunResult{}, err
	}
	journalPath := r.layout.JournalFile(req.ProjectCode)
	if err := journal.Write(journalPath, journalText); err != nil {
		return RunResult{}, err
	}
	if err := journal.Write(r.layout.AddinFile(), addinText); err != nil {
		return RunResult{}, err
	}
	r.logger.Info("journal artifacts written", "journal", journalPath, "addin", r.layout.AddinFile())

	sup := supervisor.New(supervisor.Job{
		Executable:  exePath,
		JournalPath: journalPath,
		WorkDir:     r.layout.Root,
		Env:         runEnv.Merge(),
		Timeout:     req.Timeout,
	}, r.logger)
	sup.SetIntervals(r.tick, r.settle)
	sup.SetOutputWriters(r.logCfg.ProcessWriters(req.ProjectCode))
	sup.OnTick = func(remaining int) {
		fmt.Printf(" %04d seconds\r", remaining)
	}
	var sample *metrics.ProcessSample
	sup.OnChild = func(p supervisor.SupervisedProcess) {
		pid := int32(p.PID)
		if p.Child != nil {
			pid = p.Child.PID
		}
		if s, err := metrics.SampleProcess(pid); err == nil {
			sample = &s
		}
	}

	started := time.Now()
	outcome, proc, err := sup.Run(ctx)
	fmt.Println()
	if err != nil {
		return RunResult{}, err
	}
	metrics.IncRun(spec.Name, outcome.Kind.String())
	metrics.ObserveRun(spec.Name, time.Since(started).Seconds())
	if sample != nil {
		r.logger.Info("worker sample", "outcome", outcome.Kind.String(),
			"pid", sample.PID, "name", sample.Name, "cpu_percent", sample.CPUPercent,
			"memory_mb", sample.MemoryMB, "num_threads", sample.NumThreads)
	}

	if proc != nil {
		run.PID = proc.PID
	}
	_ = reporter.Report(ctx, outcome, spec, run)
	return RunResult{Outcome: outcome, Spec: spec, Process: proc}, nil
}

// detectInstall resolves the model's saved version and the matching
// installed executable, falling back to the CLI-provided pair. A model
// that fails the container check triggers the corruption notification.
func (r *Runner) detectInstall(req RunRequest, modelFull string) (exePath, rvtVersion string) {
	exePath, rvtVersion = req.ExePath, req.RvtVersion
	detected, err := rvtfile.Version(modelFull)
	if err != nil {
		if errors.Is(err, rvtfile.ErrNotOLE) {
			r.logger.Error("model failed container check", "model", modelFull, "error", err)
			if nerr := notify.Notify(r.fileCfg.Notify, req.ProjectCode, modelFull, err.Error()); nerr != nil {
				r.logger.Warn("corruption notification failed", "error", nerr)
			}
		} else {
			r.logger.Warn("model version detection failed, using provided version", "error", err)
		}
		return exePath, rvtVersion
	}
	r.logger.Info("detected model version", "version", detected)
	rvtVersion = detected
	if path, err := install.Detect(detected, r.fileCfg.Install.Roots); err == nil {
		r.logger.Info("detected installed application", "path", path)
		exePath = path
	} else {
		r.logger.Warn("install detection failed, using provided path", "error", err)
	}
	return exePath, rvtVersion
}

func (r *Runner) catalogRoot() string {
	return filepath.Join(r.layout.Root, "rps")
}

func (r *Runner) htmlPath(req RunRequest) string {
	if req.HTMLPath != "" {
		if _, err := os.Stat(req.HTMLPath); err == nil {
			return req.HTMLPath
		}
		r.logger.Warn("specified html path not found, using command default",
			"html_path", req.HTMLPath, "default", r.layout.HTMLDir(req.Command))
	}
	return r.layout.HTMLDir(req.Command)
}

func (req RunRequest) argsString() string {
	return strings.Join([]string{
		"command=" + req.Command,
		"project_code=" + req.ProjectCode,
		"model_path=" + req.ModelPath,
		"model_file_name=" + req.ModelFileName,
		"rvt_version_path=" + req.ExePath,
		"rvt_version=" + req.RvtVersion,
		"timeout=" + fmt.Sprintf("%d", int(req.Timeout/time.Second)),
	}, ",")
}

func ensureTrailingSep(dir string) string {
	if dir == "" || strings.HasSuffix(dir, "/") || strings.HasSuffix(dir, `\`) {
		return dir
	}
	return dir + string(os.PathSeparator)
}
