package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{Attempts: 4, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestDoWithResult_FirstTry(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastPolicy(), func() (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("DoWithResult() failed: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoWithResult_RetriesTransientError(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastPolicy(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("dial tcp: connection refused")
		}
		return "up", nil
	})
	if err != nil {
		t.Fatalf("DoWithResult() failed: %v", err)
	}
	if got != "up" {
		t.Errorf("expected %q, got %q", "up", got)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoWithResult_ExhaustsPolicy(t *testing.T) {
	calls := 0
	wantErr := errors.New("read tcp: i/o timeout")
	_, err := DoWithResult(context.Background(), fastPolicy(), func() (int, error) {
		calls++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected last error %v, got %v", wantErr, err)
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestDoWithResult_FailsFastOnPermanentError(t *testing.T) {
	calls := 0
	wantErr := errors.New("password authentication failed")
	_, err := DoWithResult(context.Background(), fastPolicy(), func() (int, error) {
		calls++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
	if calls != 1 {
		t.Errorf("expected a single call for a permanent error, got %d", calls)
	}
}

func TestDoWithResult_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := Policy{Attempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := DoWithResult(ctx, slow, func() (int, error) {
		calls++
		return 0, errors.New("connection reset by peer")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), true},
		{"io timeout", errors.New("read tcp: i/o timeout"), true},
		{"pool exhausted", errors.New("FATAL: too many connections"), true},
		{"unreachable", errors.New("network is unreachable"), true},
		{"bad password", errors.New("password authentication failed"), false},
		{"bad sql", errors.New("syntax error at or near SELECT"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transient(tt.err); got != tt.want {
				t.Errorf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
