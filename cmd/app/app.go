package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"scopecore/internal/ast"
	"scopecore/internal/codec"
	"scopecore/internal/evaluator"
	"scopecore/internal/history"
	"scopecore/internal/lessons"
	"scopecore/internal/object"
	"scopecore/internal/util"
	"scopecore/internal/util/future"
	"strings"
	"text/tabwriter"
	"time"
)

const (
	exitOK         = 0
	exitDiagnostic = 1
	exitTimeout    = 2
)

var errTimeout = errors.New("evaluation did not finish")

// options select what a single invocation does.
type options struct {
	example string
	list    bool
	all     bool
	recent  int
}

type app struct {
	config util.Configuration
	opts   options
	stdout io.Writer
	stderr io.Writer
	store  *history.Store
}

func (a *app) run(args []string) int {
	ctx := context.Background()

	if a.opts.list {
		a.printLessons()
		return exitOK
	}

	if a.config.History.Enabled || a.opts.recent > 0 {
		store, err := openHistory(ctx, a.config.History)
		if err != nil {
			fmt.Fprintf(a.stderr, "history unavailable: %v\n", err)
			if a.opts.recent > 0 {
				return exitDiagnostic
			}
		} else {
			a.store = store
			defer store.Close()
		}
	}

	if a.opts.recent > 0 {
		return a.printRecent(ctx, a.opts.recent)
	}

	constants, err := a.config.ConstantObjects()
	if err != nil {
		fmt.Fprintf(a.stderr, "configuration error: %v\n", err)
		return exitDiagnostic
	}

	switch {
	case a.opts.all:
		return a.runAll(ctx, constants)
	case a.opts.example != "":
		lesson, err := lessons.Find(a.opts.example)
		if err != nil {
			fmt.Fprintf(a.stderr, "%v; try -list\n", err)
			return exitDiagnostic
		}
		return a.runProgram(ctx, lesson.Name, lesson.Program, lesson.Constants(constants))
	case len(args) > 0:
		program, err := codec.LoadFile(args[0])
		if err != nil {
			fmt.Fprintf(a.stderr, "%v\n", err)
			return exitDiagnostic
		}
		return a.runProgram(ctx, args[0], program, constants)
	default:
		fmt.Fprintln(a.stderr, "no program given; pass a file, -example <name>, -all or -help")
		return exitDiagnostic
	}
}

func openHistory(ctx context.Context, cfg util.History) (*history.Store, error) {
	store, err := history.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// evaluate runs program on a future so a divergent loop can be abandoned
// once the configured timeout passes.
func (a *app) evaluate(program *ast.Program, constants map[string]object.Object) (*evaluator.Result, error) {
	f := future.New(func() (*evaluator.Result, error) {
		return evaluator.NewEvaluator(constants).Evaluate(program)
	})
	result, err, ok := f.AwaitTimeout(a.config.Timeout)
	if !ok {
		slog.Warn("evaluation timed out", slog.Duration("timeout", a.config.Timeout))
		return nil, fmt.Errorf("%w within %s", errTimeout, a.config.Timeout)
	}
	return result, err
}

func (a *app) runProgram(ctx context.Context, name string, program *ast.Program, constants map[string]object.Object) int {
	if a.config.DebugAST {
		a.writeDebugAST(name, program)
	}

	started := time.Now()
	result, err := a.evaluate(program, constants)
	a.record(ctx, name, program, started, time.Since(started), result, err)

	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		if errors.Is(err, errTimeout) {
			return exitTimeout
		}
		return exitDiagnostic
	}
	a.printResult(result)
	return exitOK
}

func (a *app) runAll(ctx context.Context, constants map[string]object.Object) int {
	code := exitOK
	for _, out := range lessons.RunAll(lessons.All(), constants) {
		fmt.Fprintf(a.stdout, "== %s ==\n", out.Lesson.Name)
		a.record(ctx, out.Lesson.Name, out.Lesson.Program, out.StartedAt, out.Elapsed, out.Result, out.Err)

		if out.Err != nil {
			fmt.Fprintf(a.stdout, "!! %v\n", out.Err)
		} else {
			a.printResult(out.Result)
		}
		if !out.AsExpected() {
			fmt.Fprintf(a.stderr, "lesson %s did not end as expected\n", out.Lesson.Name)
			code = exitDiagnostic
		}
	}
	return code
}

func (a *app) printResult(result *evaluator.Result) {
	for _, line := range result.Output {
		fmt.Fprintln(a.stdout, line)
	}
	fmt.Fprintf(a.stdout, "=> %s\n", result.Value.Inspect())
}

func (a *app) printLessons() {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, l := range lessons.All() {
		expect := "ok"
		if l.Expect != "" {
			expect = string(l.Expect)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, expect, l.Description)
	}
	tw.Flush()
}

func (a *app) printRecent(ctx context.Context, n int) int {
	runs, err := a.store.Recent(ctx, n)
	if err != nil {
		fmt.Fprintf(a.stderr, "%v\n", err)
		return exitDiagnostic
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, r := range runs {
		outcome := "=> " + r.Value
		if !r.Succeeded() {
			outcome = r.Kind
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Program, shortDigest(r.Digest), outcome)
	}
	tw.Flush()
	return exitOK
}

func (a *app) record(ctx context.Context, name string, program *ast.Program, started time.Time, elapsed time.Duration, result *evaluator.Result, err error) {
	if a.store == nil {
		return
	}
	digest, derr := codec.Digest(program)
	if derr != nil {
		slog.Warn("could not digest program", slog.String("program", name), slog.Any("error", derr))
	}
	run := history.NewRun(name, digest, started, elapsed, result, err)
	if errors.Is(err, errTimeout) {
		run.Kind = "Timeout"
	}
	if _, err := a.store.Record(ctx, run); err != nil {
		slog.Warn("could not record run", slog.String("program", name), slog.Any("error", err))
	}
}

func (a *app) writeDebugAST(name string, program *ast.Program) {
	data, err := codec.RenderASTAsJSON(program)
	if err != nil {
		slog.Error("failed to render program tree", slog.Any("error", err))
		return
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	path := filepath.Join(a.config.RootPath, filepath.Base(base)+".ast.json")
	if filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		path = base + ".ast.json"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		slog.Error("failed to write program tree", slog.String("path", path), slog.Any("error", err))
		return
	}
	slog.Info("program tree written", slog.String("path", path))
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
