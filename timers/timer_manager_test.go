package timers

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerManager(t *testing.T) {
	tm := NewTimerManager(time.Millisecond, 64)
	tm.Start()
	defer tm.Stop()
	require.True(t, tm.IsRunning())

	var fired int32
	start := time.Now()
	done := make(chan time.Duration, 1)
	tm.AddTask(func() {
		atomic.AddInt32(&fired, 1)
		done <- time.Since(start)
	}, 30*time.Millisecond)

	select {
	case elapsed := <-done:
		require.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestTimerManagerCancel(t *testing.T) {
	tm := NewTimerManager(time.Millisecond, 64)
	tm.Start()
	defer tm.Stop()

	var fired int32
	timer := tm.AddTask(func() { atomic.AddInt32(&fired, 1) }, 50*time.Millisecond)
	require.True(t, timer.Stop())
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestTimerManagerRestart(t *testing.T) {
	tm := NewTimerManager(time.Millisecond, 64)
	tm.Start()
	tm.Stop()
	require.False(t, tm.IsRunning())

	tm.Start()
	defer tm.Stop()
	done := make(chan struct{})
	tm.AddTask(func() { close(done) }, 5*time.Millisecond)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire after restart")
	}
}
