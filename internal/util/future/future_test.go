package future

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAwait(t *testing.T) {
	testCases := []struct {
		name    string
		future  *Future[int]
		wantVal int
		wantErr bool
	}{
		{"completed value", FromValue(42), 42, false},
		{"completed error", FromError[int](errors.New("failure")), 0, true},
		{"goroutine", New(func() (int, error) { return 7, nil }), 7, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.future.Await()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Await() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.wantVal {
				t.Errorf("Await() = %d, want %d", got, tc.wantVal)
			}
		})
	}
}

func TestAwaitTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := New(func() (int, error) {
		<-release
		return 1, nil
	})

	if _, _, ok := slow.AwaitTimeout(10 * time.Millisecond); ok {
		t.Fatal("expected timeout on a blocked future")
	}

	v, err, ok := FromValue(3).AwaitTimeout(time.Second)
	if !ok || err != nil || v != 3 {
		t.Errorf("AwaitTimeout() = (%d, %v, %v), want (3, nil, true)", v, err, ok)
	}

	v, _, ok = FromValue(5).AwaitTimeout(0)
	if !ok || v != 5 {
		t.Errorf("zero timeout should wait without a deadline, got (%d, %v)", v, ok)
	}
}

func TestAwaitContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	never := New(func() (int, error) {
		time.Sleep(time.Second)
		return 0, nil
	})
	if _, err := never.AwaitContext(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAllKeepsOrderAndErrors(t *testing.T) {
	boom := errors.New("boom")
	values, errs := All(
		New(func() (int, error) {
			time.Sleep(5 * time.Millisecond)
			return 1, nil
		}),
		FromError[int](boom),
		FromValue(3),
	)

	if len(values) != 3 || values[0] != 1 || values[2] != 3 {
		t.Errorf("unexpected values %v", values)
	}
	if errs[0] != nil || !errors.Is(errs[1], boom) || errs[2] != nil {
		t.Errorf("unexpected errors %v", errs)
	}
}
