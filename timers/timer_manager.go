package timers

import (
	"sync"
	"time"

	"github.com/RussellLuo/timingwheel"
)

const DEFAULT_WHEEL_SIZE int64 = 512

// TimerManager runs delayed tasks on a hierarchical timing wheel. Tasks run on
// their own goroutine once the delay expires, rounded down to the tick.
// A stopped manager can be started again, timers added before the stop are
// dropped.
type TimerManager struct {
	mu        sync.RWMutex
	wheel     *timingwheel.TimingWheel
	tick      time.Duration
	wheelSize int64
	running   bool
	stopped   bool
}

func NewTimerManager(tick time.Duration, wheelSize int64) *TimerManager {
	if tick < time.Millisecond {
		tick = time.Millisecond
	}
	if wheelSize <= 0 {
		wheelSize = DEFAULT_WHEEL_SIZE
	}
	return &TimerManager{
		wheel:     timingwheel.NewTimingWheel(tick, wheelSize),
		tick:      tick,
		wheelSize: wheelSize,
	}
}

func (m *TimerManager) AddTask(task func(), delay time.Duration) *timingwheel.Timer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wheel.AfterFunc(delay, task)
}

func (m *TimerManager) Tick() time.Duration {
	return m.tick
}

func (m *TimerManager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	if m.stopped {
		m.wheel = timingwheel.NewTimingWheel(m.tick, m.wheelSize)
		m.stopped = false
	}
	m.wheel.Start()
	m.running = true
}

func (m *TimerManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.wheel.Stop()
	m.running = false
	m.stopped = true
}

func (m *TimerManager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
