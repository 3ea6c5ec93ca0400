package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// settler is one entry of a fan-out table.
type settler interface {
	settle(ctx context.Context, log *slog.Logger, target string)
}

// lookup runs one independent upstream call. Whatever happens, exactly one
// value is written to out: the result on success, fallback on error or
// panic. Each lookup owns its out slot so no locking is needed.
type lookup[T any] struct {
	name     string
	run      func(context.Context) (T, error)
	fallback T
	out      *T
}

func (l lookup[T]) settle(ctx context.Context, log *slog.Logger, target string) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			*l.out = l.fallback
			log.Error("lookup panicked",
				slog.String("lookup", l.name),
				slog.String("target", target),
				slog.String("panic", fmt.Sprint(r)),
				slog.Duration("duration", time.Since(start)))
		}
	}()

	v, err := l.run(ctx)
	if err != nil {
		*l.out = l.fallback
		log.Warn("lookup failed",
			slog.String("lookup", l.name),
			slog.String("target", target),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return
	}

	*l.out = v
	log.Debug("lookup completed",
		slog.String("lookup", l.name),
		slog.String("target", target),
		slog.Duration("duration", time.Since(start)))
}

// settleAll runs every task concurrently and returns once all of them have
// settled. A failing task never cancels the others.
func settleAll(ctx context.Context, log *slog.Logger, target string, tasks ...settler) {
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, t := range tasks {
		go func() {
			defer wg.Done()
			t.settle(ctx, log, target)
		}()
	}
	wg.Wait()
}
