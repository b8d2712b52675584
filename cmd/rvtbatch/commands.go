package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bimops/rvtbatch"
)

const version = "0.3.0"

func createRunCommand(flags *RunFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command> <project_code> <model_path> <model_file_name> <rvt_version_path> <rvt_version> <timeout>",
		Short: "Run one batch command against a model",
		Long: `Runs the external application against the named model under a timeout,
driving it through a composed journal for the selected command
(registry-discovered, e.g. qc, warnings, audit). timeout is in seconds.
rvt_version_path and rvt_version are fallbacks; both are overridden by
autodetection when the model header is readable.`,
		Args: cobra.ExactArgs(7),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(flags, args)
		},
	}
	cmd.Flags().StringVar(&flags.Root, "root", ".", "root directory holding journals/, logs/, commands/")
	cmd.Flags().StringVar(&flags.HTMLPath, "html-path", "", "graph output path (default: per-command dir under commands/)")
	cmd.Flags().DurationVar(&flags.Tick, "tick", 0, "poll cadence override (testing)")
	cmd.Flags().DurationVar(&flags.Settle, "settle", 0, "child discovery settle delay override (testing)")
	_ = cmd.Flags().MarkHidden("tick")
	_ = cmd.Flags().MarkHidden("settle")
	return cmd
}

func runJob(flags *RunFlags, args []string) error {
	timeoutSec, err := strconv.Atoi(args[6])
	if err != nil || timeoutSec <= 0 {
		return &exitError{code: exitConfiguration, err: fmt.Errorf("timeout must be a positive whole number of seconds, got %q", args[6])}
	}

	runner, err := rvtbatch.New(flags.Root)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	defer runner.Close()
	if flags.Tick > 0 && flags.Settle > 0 {
		runner.SetIntervals(flags.Tick, flags.Settle)
	}

	log := runner.Logger()
	log.Info("job control started", "command", args[0], "project", args[1])

	res, err := runner.Run(interruptContext(), rvtbatch.RunRequest{
		Command:       args[0],
		ProjectCode:   args[1],
		ModelPath:     args[2],
		ModelFileName: args[3],
		ExePath:       args[4],
		RvtVersion:    args[5],
		Timeout:       time.Duration(timeoutSec) * time.Second,
		HTMLPath:      flags.HTMLPath,
	})
	if err != nil {
		return &exitError{code: classify(err), err: err}
	}

	log.Info("job control ended", "outcome", res.Outcome.Kind.String())
	switch res.Outcome.Kind {
	case rvtbatch.ModelNotFound:
		return &exitError{code: exitModelNotFound, err: errors.New("model not found")}
	case rvtbatch.TimedOut:
		return &exitError{code: exitTimeout, err: errors.New("timeout, worker killed")}
	case rvtbatch.Cancelled:
		return &exitError{code: exitFatal, err: errors.New("run cancelled")}
	default:
		return nil
	}
}

// classify maps error classes onto the exit-code taxonomy.
func classify(err error) int {
	switch {
	case errors.Is(err, rvtbatch.ErrCommandNotFound),
		errors.Is(err, rvtbatch.ErrInvalidPlugin),
		errors.Is(err, rvtbatch.ErrTemplate):
		return exitConfiguration
	default:
		return exitFatal
	}
}

func createCommandsCommand(flags *ListFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List registry-discovered commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := rvtbatch.New(flags.Root)
			if err != nil {
				return &exitError{code: exitFatal, err: err}
			}
			defer runner.Close()
			names, err := runner.Commands()
			if err != nil {
				return &exitError{code: exitFatal, err: err}
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Root, "root", ".", "root directory holding journals/, logs/, commands/")
	return cmd
}

func createHistoryCommand(flags *HistoryFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <project_code>",
		Short: "List stored run history for a project, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := rvtbatch.New(flags.Root)
			if err != nil {
				return &exitError{code: exitFatal, err: err}
			}
			defer runner.Close()
			events, err := runner.History(cmd.Context(), args[0], flags.Limit)
			if err != nil {
				return &exitError{code: exitConfiguration, err: err}
			}
			for _, e := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s pid=%d outcome=%s exit_code=%d\n",
					e.OccurredAt.Format(time.RFC3339), e.Type, e.Record.Command,
					e.Record.PID, e.Record.Outcome, e.Record.ExitCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Root, "root", ".", "root directory holding journals/, logs/, commands/")
	cmd.Flags().IntVar(&flags.Limit, "limit", 20, "maximum events to list (0 for all)")
	return cmd
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rvtbatch version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "rvtbatch "+version)
		},
	}
}
