package batch

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_AllSucceed(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	result := Run(context.Background(), items, 2, func(_ context.Context, _ int) error {
		return nil
	}, nil)

	require.Equal(t, 5, result.Total)
	require.Len(t, result.Succeeded, 5)
	require.Empty(t, result.Failed)
	require.NotEmpty(t, result.RunID)
}

// TestRun_FailureIsolated verifies that exactly the failing item is reported
// and its siblings complete.
func TestRun_FailureIsolated(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	result := Run(context.Background(), items, 3, func(_ context.Context, n int) error {
		if n == 3 {
			return fmt.Errorf("item %d broke", n)
		}
		return nil
	}, nil)

	require.Len(t, result.Succeeded, 4)
	require.Len(t, result.Failed, 1)
	require.Equal(t, 3, result.Failed[0].Item)
	require.ErrorContains(t, result.Failed[0].Err, "item 3 broke")
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	result := Run(context.Background(), []string{"ok", "boom"}, 1, func(_ context.Context, s string) error {
		if s == "boom" {
			panic("exploded")
		}
		return nil
	}, nil)

	require.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 1)
	require.Equal(t, "boom", result.Failed[0].Item)
	require.ErrorContains(t, result.Failed[0].Err, "panic")
}

// TestRun_ProgressMonotonic checks the completed counter under real
// concurrency: every value from 1..total exactly once, in order.
func TestRun_ProgressMonotonic(t *testing.T) {
	const total = 50
	items := make([]int, total)
	for i := range items {
		items[i] = i
	}

	var (
		mu   sync.Mutex
		seen []int
	)
	result := Run(context.Background(), items, 8, func(_ context.Context, _ int) error {
		return nil
	}, func(completed, totalItems int) {
		require.Equal(t, total, totalItems)
		mu.Lock()
		seen = append(seen, completed)
		mu.Unlock()
	})

	require.Equal(t, total, result.Total)
	require.Len(t, seen, total)
	for i, v := range seen {
		require.Equal(t, i+1, v, "progress must be strictly monotonic")
	}
}

func TestRun_EmptyInput(t *testing.T) {
	result := Run(context.Background(), nil, 0, func(_ context.Context, _ int) error {
		t.Fatal("fn must not be called")
		return nil
	}, nil)

	require.Zero(t, result.Total)
	require.Empty(t, result.Succeeded)
	require.Empty(t, result.Failed)
}

func TestRun_DefaultWidth(t *testing.T) {
	// width 0 must still run everything
	result := Run(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, _ int) error {
		return nil
	}, nil)
	require.Len(t, result.Succeeded, 3)
}
