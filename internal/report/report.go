// Package report assembles the per-combination results into the run
// report: an aggregate status and a human-readable summary. A failing
// combination is always visible alongside the passing ones; nothing is
// hidden by early termination, because there is none.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/vk/matrixci/internal/pipeline"
)

// Report is the immutable outcome of one whole run.
type Report struct {
	// RunID identifies the run in logs and output.
	RunID string

	// Results holds one entry per non-excluded combination, in
	// expansion order.
	Results []*pipeline.Result

	// Duration is the run's total wall-clock time.
	Duration time.Duration
}

// New builds a Report.
func New(runID string, results []*pipeline.Result, duration time.Duration) *Report {
	return &Report{RunID: runID, Results: results, Duration: duration}
}

// Aggregate computes the run-level status. Cancellation supersedes
// everything: a run that was aborted is Cancelled even if some
// combinations had already failed. Otherwise a single failed combination
// makes the run Failed; only a run where every combination passed is
// Passed.
func (r *Report) Aggregate() pipeline.Status {
	status := pipeline.Passed
	for _, res := range r.Results {
		switch res.Status {
		case pipeline.Cancelled:
			return pipeline.Cancelled
		case pipeline.Failed:
			status = pipeline.Failed
		}
	}
	return status
}

// Counts returns how many combinations finished with each status.
func (r *Report) Counts() (passed, failed, cancelled int) {
	for _, res := range r.Results {
		switch res.Status {
		case pipeline.Passed:
			passed++
		case pipeline.Failed:
			failed++
		case pipeline.Cancelled:
			cancelled++
		}
	}
	return passed, failed, cancelled
}

// Render writes the run report as aligned text: one row per combination
// with its terminal status and failing step, then a summary line. With
// verbose set, each combination's per-step outcomes are listed too.
func (r *Report) Render(w io.Writer, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMBINATION\tSTATUS\tFAILED STEP")
	for _, res := range r.Results {
		key := res.Combination.Key()
		if key == "" {
			key = "(no matrix)"
		}
		failed := "-"
		if res.FailedStep >= 0 {
			failed = fmt.Sprintf("%s (#%d)", res.FailedStepName, res.FailedStep)
			if res.FailedStep < len(res.Steps) && res.Steps[res.FailedStep].InvocationError {
				failed += " [invocation error]"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", key, res.Status, failed)

		if verbose {
			for _, step := range res.Steps {
				detail := ""
				if step.Err != nil {
					detail = "  " + step.Err.Error()
				}
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", step.Name, step.Status, detail)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	passed, failed, cancelled := r.Counts()
	_, err := fmt.Fprintf(w, "\nrun %s: %s (%d passed, %d failed, %d cancelled) in %s\n",
		r.RunID, r.Aggregate(), passed, failed, cancelled, r.Duration.Round(time.Millisecond))
	return err
}
