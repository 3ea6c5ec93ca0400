package scanner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSettleAll_FallbacksAndPanics(t *testing.T) {
	var ok, failed, panicked int

	settleAll(context.Background(), discardLogger(), "example.com",
		lookup[int]{
			name:     "ok",
			run:      func(context.Context) (int, error) { return 7, nil },
			fallback: -1,
			out:      &ok,
		},
		lookup[int]{
			name:     "failed",
			run:      func(context.Context) (int, error) { return 7, errors.New("upstream down") },
			fallback: -1,
			out:      &failed,
		},
		lookup[int]{
			name:     "panicked",
			run:      func(context.Context) (int, error) { panic("boom") },
			fallback: -1,
			out:      &panicked,
		},
	)

	if ok != 7 {
		t.Errorf("Expected successful lookup value 7, got %d", ok)
	}
	if failed != -1 {
		t.Errorf("Expected fallback for failed lookup, got %d", failed)
	}
	if panicked != -1 {
		t.Errorf("Expected fallback for panicking lookup, got %d", panicked)
	}
}

func TestSettleAll_RunsConcurrently(t *testing.T) {
	var running, peak atomic.Int32
	slow := func(context.Context) (bool, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		running.Add(-1)
		return true, nil
	}

	var a, b, c bool
	start := time.Now()
	settleAll(context.Background(), discardLogger(), "t",
		lookup[bool]{name: "a", run: slow, out: &a},
		lookup[bool]{name: "b", run: slow, out: &b},
		lookup[bool]{name: "c", run: slow, out: &c},
	)

	if !a || !b || !c {
		t.Error("Expected every lookup to settle")
	}
	if peak.Load() < 2 {
		t.Errorf("Expected lookups to overlap, peak concurrency %d", peak.Load())
	}
	if time.Since(start) > 140*time.Millisecond {
		t.Errorf("Expected concurrent execution, took %v", time.Since(start))
	}
}

func TestSettleAll_Empty(t *testing.T) {
	settleAll(context.Background(), discardLogger(), "t")
}
