package history

import (
	"errors"
	"scopecore/internal/evaluator"
	"scopecore/internal/object"
	"time"
)

// NewRun captures the outcome of one Evaluate call that took elapsed. A failed run keeps the
// diagnostic kind and message; its output is empty because failed
// evaluations publish nothing.
func NewRun(program, digest string, startedAt time.Time, elapsed time.Duration, result *evaluator.Result, err error) Run {
	run := Run{
		Program:   program,
		Digest:    digest,
		StartedAt: startedAt,
		Duration:  elapsed,
	}
	if err != nil {
		var diag *object.Error
		if errors.As(err, &diag) {
			run.Kind = string(diag.Kind)
		} else {
			run.Kind = "InternalError"
		}
		run.Diagnostic = err.Error()
		return run
	}
	if result != nil {
		run.Output = result.Output
		if result.Value != nil {
			run.Value = result.Value.Inspect()
		}
	}
	return run
}
