package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes form the operator-facing result taxonomy.
const (
	exitOK            = 0
	exitFatal         = 1
	exitModelNotFound = 2
	exitConfiguration = 3
	exitTimeout       = 4
)

// exitError carries a taxonomy code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.err != nil {
				_, _ = fmt.Fprintln(os.Stderr, ee.err)
			}
			os.Exit(ee.code)
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}

func buildRoot() *cobra.Command {
	runFlags := &RunFlags{}
	listFlags := &ListFlags{}
	historyFlags := &HistoryFlags{}

	root := &cobra.Command{
		Use:           "rvtbatch",
		Short:         "Batch job control for Revit model processing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		createRunCommand(runFlags),
		createCommandsCommand(listFlags),
		createHistoryCommand(historyFlags),
		createVersionCommand(),
	)
	return root
}
