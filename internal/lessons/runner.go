package lessons

import (
	"errors"
	"log/slog"
	"scopecore/internal/evaluator"
	"scopecore/internal/object"
	"scopecore/internal/util/future"
	"time"
)

// Outcome is what one lesson produced. Err is the evaluation diagnostic, if any.
type Outcome struct {
	Lesson    Lesson
	Result    *evaluator.Result
	Err       error
	StartedAt time.Time
	Elapsed   time.Duration
}

// AsExpected reports whether the lesson ended the way it was written to:
// cleanly, or with exactly the diagnostic kind in Expect.
func (o Outcome) AsExpected() bool {
	if o.Lesson.Expect == "" {
		return o.Err == nil
	}
	return object.IsKind(o.Err, o.Lesson.Expect)
}

func (o Outcome) Diagnostic() *object.Error {
	var diag *object.Error
	if errors.As(o.Err, &diag) {
		return diag
	}
	return nil
}

// Run evaluates one lesson with its own evaluator.
func Run(l Lesson, configured map[string]object.Object) Outcome {
	started := time.Now()
	result, err := evaluator.NewEvaluator(l.Constants(configured)).Evaluate(l.Program)
	elapsed := time.Since(started)
	slog.Debug("lesson finished",
		slog.String("lesson", l.Name),
		slog.Duration("elapsed", elapsed),
		slog.Bool("failed", err != nil),
	)
	return Outcome{Lesson: l, Result: result, Err: err, StartedAt: started, Elapsed: elapsed}
}

// Start runs l on its own goroutine.
func Start(l Lesson, configured map[string]object.Object) *future.Future[Outcome] {
	return future.New(func() (Outcome, error) {
		return Run(l, configured), nil
	})
}

// RunAll evaluates the given lessons concurrently and returns their outcomes
// in input order. No state is shared between the runs.
func RunAll(list []Lesson, configured map[string]object.Object) []Outcome {
	futures := make([]*future.Future[Outcome], len(list))
	for i, l := range list {
		futures[i] = Start(l, configured)
	}
	outcomes, _ := future.All(futures...)
	return outcomes
}
