package util

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWorkerRunsTasksInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	wg := &sync.WaitGroup{}
	w := NewWorker("lane-0", wg, func(task Task) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, task.(int))
		return nil
	}, 10)
	w.Start()

	for i := 0; i < 5; i++ {
		require.True(t, w.TrySend(i))
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 5
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	wg.Wait()
	require.Equal(t, []int{0, 1, 2, 3, 4}, seen)
	require.False(t, w.TrySend(5))
}

func TestWorkerTrySendFull(t *testing.T) {
	w := NewWorker("lane-full", &sync.WaitGroup{}, func(Task) error { return nil }, 1)
	require.True(t, w.TrySend(1))
	require.False(t, w.TrySend(2))
}

func TestTickWorker(t *testing.T) {
	var ticks int32
	wg := &sync.WaitGroup{}
	tw := NewTickWorker("ticker", 5*time.Millisecond, func() { atomic.AddInt32(&ticks, 1) }, wg)
	tw.Start()
	require.True(t, tw.IsRunning())
	require.Eventually(t, func() bool { return atomic.LoadInt32(&ticks) >= 3 }, time.Second, 5*time.Millisecond)
	tw.Stop()
	wg.Wait()
	require.False(t, tw.IsRunning())
}
