package supervisor

import "fmt"

// OutcomeKind tags the terminal state of one supervised run.
type OutcomeKind int

const (
	// Completed means the launched process exited with code 0 inside the
	// timeout budget. The sole success path.
	Completed OutcomeKind = iota
	// TimedOut means the budget elapsed without a zero exit; the process
	// group was force-killed.
	TimedOut
	// Cancelled means the context was cancelled during Polling; the
	// process group was force-killed.
	Cancelled
	// ModelNotFound means the target model file did not exist; produced
	// by the caller before any launch.
	ModelNotFound
)

func (k OutcomeKind) String() string {
	switch k {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	case ModelNotFound:
		return "model_not_found"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the tagged terminal result of a run, produced exactly once.
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int // meaningful only for Completed
}
