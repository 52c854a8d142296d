package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProcess_LinearPlan(t *testing.T) {
	pool, err := NewPool(Config{Parallelism: 4})
	require.NoError(t, err)
	defer pool.Stop()

	source := newFakeSource("linear", []string{"A", "B", "C"}, map[string][]string{
		"B": {"A"},
		"C": {"B"},
	})

	var mu sync.Mutex
	var order []string
	action := func(ctx context.Context, node any) error {
		mu.Lock()
		order = append(order, node.(*fakeNode).id)
		mu.Unlock()
		return nil
	}

	failures, err := pool.Process(context.Background(), source, action)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Equal(t, []string{"A", "B", "C"}, order)
}

func TestProcess_DiamondParallelism(t *testing.T) {
	pool, err := NewPool(Config{Parallelism: 4})
	require.NoError(t, err)
	defer pool.Stop()

	source := newFakeSource("diamond", []string{"A", "B", "C", "D"}, map[string][]string{
		"B": {"A"},
		"C": {"A"},
		"D": {"B", "C"},
	})

	var mu sync.Mutex
	intervals := map[string][2]time.Time{}
	action := func(ctx context.Context, node any) error {
		id := node.(*fakeNode).id
		start := time.Now()
		time.Sleep(20 * time.Millisecond)
		end := time.Now()
		mu.Lock()
		intervals[id] = [2]time.Time{start, end}
		mu.Unlock()
		return nil
	}

	failures, err := pool.Process(context.Background(), source, action)
	require.NoError(t, err)
	require.Empty(t, failures)

	require.True(t, intervals["A"][1].Before(intervals["B"][0]) || intervals["A"][1].Equal(intervals["B"][0]))
	require.True(t, intervals["A"][1].Before(intervals["C"][0]) || intervals["A"][1].Equal(intervals["C"][0]))
	// B and C must overlap.
	bOverlapsC := intervals["B"][0].Before(intervals["C"][1]) && intervals["C"][0].Before(intervals["B"][1])
	require.True(t, bOverlapsC, "expected B and C to run concurrently")
	require.True(t, intervals["D"][0].After(intervals["B"][1]) || intervals["D"][0].Equal(intervals["B"][1]))
	require.True(t, intervals["D"][0].After(intervals["C"][1]) || intervals["D"][0].Equal(intervals["C"][1]))
}

func TestProcess_EmptySourceReturnsImmediately(t *testing.T) {
	pool, err := NewPool(Config{Parallelism: 2})
	require.NoError(t, err)
	defer pool.Stop()

	source := newFakeSource("empty", nil, nil)
	failures, err := pool.Process(context.Background(), source, func(context.Context, any) error { return nil })
	require.NoError(t, err)
	require.Empty(t, failures)
}

func TestProcess_SourceFailureAbortsEveryLiveSource(t *testing.T) {
	pool, err := NewPool(Config{Parallelism: 4})
	require.NoError(t, err)
	defer pool.Stop()

	boom := fmt.Errorf("boom")
	failingSource := newFakeSource("failing", []string{"A"}, nil)
	failingSource.selectErr = boom

	// otherSource's X node blocks on release so it is still running (and
	// its dependent Y still pending, not yet selected) when
	// failingSource's Process call fails — proving the abort reaches a
	// plan sitting only in the pool-wide shared queue, not the private
	// queue the failing call is scanning.
	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	var otherFailures []Failure
	otherSource := newFakeSource("other", []string{"X", "Y"}, map[string][]string{"Y": {"X"}})

	wg.Add(1)
	go func() {
		defer wg.Done()
		fs, _ := pool.Process(context.Background(), otherSource, func(ctx context.Context, n any) error {
			if n.(*fakeNode).id == "X" {
				close(started)
				<-release
			}
			return nil
		})
		otherFailures = fs
	}()

	<-started
	_, err = pool.Process(context.Background(), failingSource, func(context.Context, any) error { return nil })
	require.Error(t, err)

	close(release)
	wg.Wait()

	require.NotEmpty(t, otherFailures, "expected the source failure to abort the other live plan too")
}

func TestProcess_NestedSubmissionReusesLease(t *testing.T) {
	pool, err := NewPool(Config{Parallelism: 1})
	require.NoError(t, err)
	defer pool.Stop()

	outer := newFakeSource("outer", []string{"A"}, nil)
	inner := newFakeSource("inner", []string{"X"}, nil)

	var innerDone bool
	outerAction := func(ctx context.Context, node any) error {
		_, err := pool.Process(ctx, inner, func(ctx context.Context, n any) error {
			innerDone = true
			return nil
		})
		return err
	}

	_, err = pool.Process(context.Background(), outer, outerAction)
	require.NoError(t, err)
	require.True(t, innerDone)
}

func TestPool_InvalidParallelismRejected(t *testing.T) {
	_, err := NewPool(Config{Parallelism: 0})
	require.ErrorIs(t, err, ErrInvalidParallelism)
}

func TestPool_StopIsIdempotent(t *testing.T) {
	pool, err := NewPool(Config{Parallelism: 2})
	require.NoError(t, err)
	pool.Stop()
	pool.Stop()
}

func TestPool_StatsCollected(t *testing.T) {
	pool, err := NewPool(Config{Parallelism: 2, StatsEnabled: true})
	require.NoError(t, err)

	source := newFakeSource("s", []string{"A", "B"}, nil)
	_, err = pool.Process(context.Background(), source, func(context.Context, any) error { return nil })
	require.NoError(t, err)

	report := pool.Stop()
	require.GreaterOrEqual(t, report.Workers, 1)
}
