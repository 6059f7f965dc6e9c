package pipeline

import (
	"time"

	"github.com/vk/matrixci/internal/matrix"
)

// Status is the lifecycle state of one combination's run.
type Status int

const (
	Pending Status = iota
	Running
	Passed
	Failed
	Cancelled
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StepStatus is the recorded outcome of a single step. Steps after a
// failure have no outcome at all; they are absent from the log, not
// skipped.
type StepStatus int

const (
	StepPassed StepStatus = iota
	StepFailed
	StepSkipped
)

// String implements fmt.Stringer.
func (s StepStatus) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// StepOutcome records one executed (or skipped) step.
type StepOutcome struct {
	// Name is the step's configured name.
	Name string

	// Status is the step's terminal outcome.
	Status StepStatus

	// Output is the action's captured combined output. Empty for
	// skipped steps.
	Output string

	// Err is the failure cause for a failed step, nil otherwise.
	Err error

	// InvocationError is true when the action could not be started at
	// all, as opposed to running and exiting non-zero.
	InvocationError bool

	// Duration is the step's wall-clock time. Zero for skipped steps.
	Duration time.Duration
}

// Result is the immutable record of one combination's run, finalized by
// the job runner that owned it.
type Result struct {
	// Combination identifies which matrix cell this result belongs to.
	Combination matrix.Combination

	// Status is the combination's terminal state.
	Status Status

	// FailedStep is the pipeline index of the failing step, or -1.
	FailedStep int

	// FailedStepName is the failing step's name, or empty.
	FailedStepName string

	// Steps holds the per-step outcomes in execution order, up to and
	// including the failing step. Unreached steps are absent.
	Steps []StepOutcome

	// Duration is the combination's total wall-clock time.
	Duration time.Duration
}

// CancelledResult builds the result for a combination whose run was
// aborted externally before or during execution. Partial step outcomes
// are not considered final; the combination reports only Cancelled.
func CancelledResult(c matrix.Combination) *Result {
	return &Result{
		Combination: c,
		Status:      Cancelled,
		FailedStep:  -1,
	}
}
