// Package batch executes a single-item operation across a large item set
// with bounded parallelism and per-item error isolation.
package batch

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultWidth is the worker-pool width when the caller passes 0.
const DefaultWidth = 10

// Failure records one item that did not complete.
type Failure[T any] struct {
	Item T
	Err  error
}

// Result accounts for a whole batch run. Succeeded plus Failed always
// covers every submitted item.
type Result[T any] struct {
	RunID     string
	Total     int
	Succeeded []T
	Failed    []Failure[T]
}

// Progress is called after each item completes (in completion order, which
// is not submission order). The completed counter is strictly monotonic,
// so it is safe to report to a UI directly.
type Progress func(completed, total int)

// Run executes fn for every item with at most width concurrent workers.
// One item's error or panic is recorded as a per-item failure and does not
// cancel or affect sibling items; the batch always runs to completion.
func Run[T any](ctx context.Context, items []T, width int, fn func(context.Context, T) error, onProgress Progress) *Result[T] {
	if width <= 0 {
		width = DefaultWidth
	}

	result := &Result[T]{
		RunID: newRunID(),
		Total: len(items),
	}

	var (
		mu        sync.Mutex
		completed int
	)

	g := &errgroup.Group{}
	g.SetLimit(width)

	for _, item := range items {
		item := item
		g.Go(func() error {
			err := runOne(ctx, item, fn)

			// The progress callback runs under the same lock as the
			// bookkeeping so completed counts arrive strictly in order.
			mu.Lock()
			if err != nil {
				result.Failed = append(result.Failed, Failure[T]{Item: item, Err: err})
			} else {
				result.Succeeded = append(result.Succeeded, item)
			}
			completed++
			if onProgress != nil {
				onProgress(completed, result.Total)
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return result
}

// runOne isolates a single item: a panic inside fn becomes that item's
// failure instead of taking the batch down.
func runOne[T any](ctx context.Context, item T, fn func(context.Context, T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}

// newRunID generates a ULID identifying one batch run in logs and reports.
func newRunID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id.String()
}
