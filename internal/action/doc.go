// Package action invokes a step's opaque external command and reports its
// exit status. The orchestrator never interprets the command's output,
// only whether the process could be started and how it exited; the output
// is captured verbatim as the step's log.
package action
