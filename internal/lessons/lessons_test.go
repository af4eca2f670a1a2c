package lessons

import (
	"reflect"
	"scopecore/internal/ast"
	"scopecore/internal/object"
	"strings"
	"testing"
	"time"
)

func TestCatalogueOutputs(t *testing.T) {
	tests := []struct {
		name   string
		output []string
	}{
		{"shadowing", []string{
			"Value of variable x 100",
			"Value of x after shadowing 101",
			"X shadowed all together differnt type Welcome to rust trainig..",
		}},
		{"scope-shadowing", []string{
			"Value of variable x inside the scope500",
			"Value of x inside inner scope 510",
			"Value of variable x after executing inner scope inside the scope500",
			"Value of x 100",
			"Shadowed value of sWe have shadowed s to a string",
			"Value of s 100",
		}},
		{"mutable", []string{"Value of variable x 100", "Value of variable x 500, after mutation"}},
		{"deferred-init", []string{"Value of variable x after initialixation 100"}},
		{"multiple-declaration", []string{"Value of x-10, y-20, z-30", "Value of a-10, b-3.142, c-Hello"}},
		{"type-annotation", []string{"The value of x is: 42", "The value of y is: 3.14", "Hello, Rust!"}},
		{"nested-if", []string{"The number is divisible by 4."}},
		{"loop", []string{"Count: 1", "Count: 2", "Count: 3"}},
		{"while", []string{"Number: 3", "Number: 2", "Number: 1"}},
		{"for-range", []string{"Iteration: 1", "Iteration: 2", "Iteration: 3", "Iteration: 4", "Iteration: 5"}},
		{"nested-loop-break", []string{
			"Outer loop iteration: 1",
			"Inner loop iteration: 1",
			"Inner loop iteration: 2",
			"Outer loop iteration: 2",
			"Inner loop iteration: 1",
			"Inner loop iteration: 2",
		}},
		{"loop-value", []string{"Result from loop: 10"}},
		{"fibonacci", []string{"1", "1", "2", "3", "5", "8", "13", "21", "34", "55"}},
		{"config-parameters", []string{"Maximum points allowed: 100000", "Connecting to server with timeout: 30 seconds"}},
		{"file-paths", []string{
			"Reading configuration from: /etc/myapp/config.json",
			"Processing data files from: /var/lib/myapp/data/",
		}},
		{"conversion-constants", []string{"Length in centimeters: 250", "Weight in grams: 1800"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lesson, err := Find(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			out := Run(lesson, nil)
			if out.Err != nil {
				t.Fatalf("unexpected diagnostic: %v", out.Err)
			}
			if !reflect.DeepEqual(out.Result.Output, tt.output) {
				t.Errorf("output mismatch\n got: %q\nwant: %q", out.Result.Output, tt.output)
			}
			if !out.AsExpected() {
				t.Errorf("lesson %s did not end as expected", tt.name)
			}
		})
	}
}

func TestNestedLoopRunsEveryInnerIteration(t *testing.T) {
	lesson, err := Find("nested-loop")
	if err != nil {
		t.Fatal(err)
	}
	out := Run(lesson, nil)
	if len(out.Result.Output) != 9 {
		t.Fatalf("expected 3 outer and 6 inner lines, got %d", len(out.Result.Output))
	}
}

func TestCatalogueDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		kind object.ErrorKind
		pos  ast.Position
	}{
		{"immutability", object.ImmutableAssignmentError, ast.Position{Line: 14, Column: 5}},
		{"mutable-shadowing", object.ImmutableAssignmentError, ast.Position{Line: 24, Column: 5}},
		{"uninitialized", object.UninitializedReadError, ast.Position{Line: 10, Column: 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lesson, err := Find(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			out := Run(lesson, nil)
			if out.Result != nil {
				t.Errorf("expected no result, got output %q", out.Result.Output)
			}
			diag := out.Diagnostic()
			if diag == nil {
				t.Fatalf("expected %s, got %v", tt.kind, out.Err)
			}
			if diag.Kind != tt.kind || diag.Name != "x" || diag.Position != tt.pos {
				t.Errorf("got %s %q at %s", diag.Kind, diag.Name, diag.Position)
			}
			if !out.AsExpected() {
				t.Errorf("lesson %s did not end as expected", tt.name)
			}
		})
	}
}

func TestConstantsUseConfiguredValues(t *testing.T) {
	lesson, err := Find("constants")
	if err != nil {
		t.Fatal(err)
	}

	defaults := Run(lesson, nil)
	if defaults.Err != nil {
		t.Fatal(defaults.Err)
	}
	if !strings.HasPrefix(defaults.Result.Output[0], "Circumference: 31.41") {
		t.Errorf("unexpected default circumference %q", defaults.Result.Output[0])
	}

	configured := Run(lesson, map[string]object.Object{"PI": &object.Integer{Value: 3}})
	if configured.Err == nil {
		t.Fatal("expected integer PI to be rejected by float arithmetic")
	}
	if !object.IsKind(configured.Err, object.TypeMismatchError) {
		t.Errorf("expected TypeMismatchError, got %v", configured.Err)
	}

	overridden := Run(lesson, map[string]object.Object{"PI": &object.Float{Value: 3}})
	if overridden.Err != nil {
		t.Fatal(overridden.Err)
	}
	if overridden.Result.Output[0] != "Circumference: 30" {
		t.Errorf("expected configured PI to win, got %q", overridden.Result.Output[0])
	}
	if lesson.Defaults["PI"].(*object.Float).Value != 3.14159 {
		t.Error("configured constants must not overwrite lesson defaults")
	}
}

func TestRunAllMatchesSequentialRuns(t *testing.T) {
	list := All()
	outcomes := RunAll(list, nil)
	if len(outcomes) != len(list) {
		t.Fatalf("expected %d outcomes, got %d", len(list), len(outcomes))
	}

	for i, out := range outcomes {
		if out.Lesson.Name != list[i].Name {
			t.Errorf("outcome %d is %s, want %s", i, out.Lesson.Name, list[i].Name)
		}
		if !out.AsExpected() {
			t.Errorf("lesson %s: unexpected result %v", out.Lesson.Name, out.Err)
		}
		seq := Run(list[i], nil)
		if (seq.Err == nil) != (out.Err == nil) {
			t.Errorf("lesson %s: concurrent and sequential runs disagree", out.Lesson.Name)
			continue
		}
		if seq.Err == nil && !reflect.DeepEqual(seq.Result.Output, out.Result.Output) {
			t.Errorf("lesson %s: output differs between runs", out.Lesson.Name)
		}
	}
}

func TestFindAndNames(t *testing.T) {
	if _, err := Find("goto"); err == nil {
		t.Error("expected unknown lesson error")
	}
	names := Names()
	if len(names) != len(All()) {
		t.Errorf("Names() and All() disagree")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted or duplicated at %q", names[i])
		}
	}
}

func TestOutcomeElapsedCoversOnlyItsOwnRun(t *testing.T) {
	before := time.Now()
	outcomes := RunAll(All(), nil)
	total := time.Since(before)

	for _, out := range outcomes {
		if out.StartedAt.Before(before) {
			t.Errorf("lesson %s: start time precedes RunAll", out.Lesson.Name)
		}
		if out.Elapsed < 0 || out.Elapsed > total {
			t.Errorf("lesson %s: elapsed %s outside the %s window", out.Lesson.Name, out.Elapsed, total)
		}
		if end := out.StartedAt.Add(out.Elapsed); end.After(before.Add(total)) {
			t.Errorf("lesson %s: finished after RunAll returned", out.Lesson.Name)
		}
	}
}
