package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SafeGo runs fn in a goroutine with panic recovery and a per-task timeout.
// Panics and errors are logged under the task name instead of crashing the
// process. Use it for background work whose failure should never take the
// caller down.
func SafeGo(parentCtx context.Context, timeout time.Duration, name string, log *logrus.Logger, fn func(context.Context) error) {
	if log == nil {
		log = logrus.New()
	}
	go func() {
		ctx, cancel := context.WithTimeout(parentCtx, timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic in %s: %v\n%s", name, r, debug.Stack())
			}
		}()
		if err := fn(ctx); err != nil {
			log.Warnf("%s: %v", name, err)
		}
	}()
}

// Batch runs fn over items with at most workers goroutines. Each invocation
// gets its own timeout and panic recovery; a panic surfaces as an error for
// that item. The returned slice holds every error encountered, in no
// particular order.
func Batch[T any](ctx context.Context, items []T, workers int, timeout time.Duration, fn func(context.Context, T) error) []error {
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}
	if len(items) == 0 {
		return nil
	}

	work := make(chan T)
	errCh := make(chan error, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				if err := runOne(ctx, timeout, item, fn); err != nil {
					errCh <- err
				}
			}
		}()
	}

	for _, item := range items {
		select {
		case work <- item:
		case <-ctx.Done():
			errCh <- ctx.Err()
			goto done
		}
	}
done:
	close(work)
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errs
}

func runOne[T any](ctx context.Context, timeout time.Duration, item T, fn func(context.Context, T) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}
