// Package scheduler dispatches one job runner per matrix combination
// through a bounded worker pool. Combinations are independent by
// construction, so there are no ordering constraints between them and no
// fail-fast: every combination runs to its own terminal status, and the
// failure of one never aborts its siblings. Only external cancellation of
// the run context stops work early, marking unfinished combinations
// Cancelled.
package scheduler
