package work

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mohitkumar/flowrt/analytics"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/persistence"
	"github.com/mohitkumar/flowrt/timers"
	"github.com/mohitkumar/flowrt/util"
	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"
)

// MAX_ATTEMPTS is the number of times a work is attempted before its failure
// handler runs.
const MAX_ATTEMPTS = 11

const DEFAULT_DELAY_MILLIS int64 = 1000

// Partitioner assigns invocations to partitions and partitions to nodes.
type Partitioner interface {
	GetPartition(key string) int
	GetLocalPartitions(member string) []int
}

type Options struct {
	Workers     int
	Capacity    int
	DelayMillis int64
	Backoff     BackoffPolicy
	MaxDelay    time.Duration
	// Partitioner and NodeName restrict recovery to the partitions this node
	// owns. Without a partitioner every pending record is recovered.
	Partitioner Partitioner
	NodeName    string
}

type invocation struct {
	record model.WorkRecord
	work   Work
	wc     *Context
}

// RetryingWorkScheduler runs works on its own worker lanes, retrying
// retryable failures after the backoff delay. Retries wait on the timer
// wheel, no goroutine sleeps.
type RetryingWorkScheduler struct {
	registry  *Registry
	store     persistence.WorkStore
	timers    *timers.TimerManager
	collector analytics.WorkDataCollector

	partitioner Partitioner
	nodeName    string

	delayMillis int64
	backoff     BackoffPolicy
	maxDelay    time.Duration
	workerCount int
	capacity    int

	mu      sync.RWMutex
	workers []*util.Worker
	wg      *sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	running int32
}

func NewRetryingWorkScheduler(registry *Registry, store persistence.WorkStore, tm *timers.TimerManager, collector analytics.WorkDataCollector, opts Options) *RetryingWorkScheduler {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Capacity <= 0 {
		opts.Capacity = 1
	}
	if opts.DelayMillis < 0 {
		opts.DelayMillis = DEFAULT_DELAY_MILLIS
	}
	if opts.Backoff == "" {
		opts.Backoff = BACKOFF_FIXED
	}
	if collector == nil {
		collector = analytics.NewNoopDataCollector()
	}
	return &RetryingWorkScheduler{
		registry:    registry,
		store:       store,
		timers:      tm,
		collector:   collector,
		partitioner: opts.Partitioner,
		nodeName:    opts.NodeName,
		delayMillis: opts.DelayMillis,
		backoff:     opts.Backoff,
		maxDelay:    opts.MaxDelay,
		workerCount: opts.Workers,
		capacity:    opts.Capacity,
		wg:          &sync.WaitGroup{},
	}
}

func (s *RetryingWorkScheduler) SetDelay(delayMillis int64) {
	if delayMillis < 0 {
		delayMillis = 0
	}
	atomic.StoreInt64(&s.delayMillis, delayMillis)
	logger.Info("work scheduler delay updated", zap.Int64("delayMillis", delayMillis))
}

func (s *RetryingWorkScheduler) GetDelay() int64 {
	return atomic.LoadInt64(&s.delayMillis)
}

func (s *RetryingWorkScheduler) Registry() *Registry {
	return s.registry
}

// Execute persists the invocation and queues its first attempt. It never waits
// for the work to run.
func (s *RetryingWorkScheduler) Execute(descriptor model.WorkDescriptor) error {
	_, err := s.Submit(descriptor)
	return err
}

// Submit behaves like Execute and returns the id of the new invocation.
func (s *RetryingWorkScheduler) Submit(descriptor model.WorkDescriptor) (string, error) {
	w, err := s.registry.Create(descriptor)
	if err != nil {
		return "", err
	}
	rec := model.NewWorkRecord(descriptor)
	if s.partitioner != nil {
		rec.Partition = s.partitioner.GetPartition(rec.InvocationID)
	}
	inv := &invocation{
		record: rec,
		work:   w,
		wc:     NewContext(rec.InvocationID, descriptor),
	}

	// saving and reading the running flag happen together with respect to
	// Start, so a record is either listed by recovery or dispatched here
	s.mu.RLock()
	if err := s.store.SaveWork(rec); err != nil {
		s.mu.RUnlock()
		return "", errors.Wrapf(err, "persisting work %s", descriptor.Type)
	}
	running := s.IsRunning()
	s.mu.RUnlock()

	if !running {
		logger.Warn("work scheduler not running, work will run on start", zap.String("type", descriptor.Type), zap.String("invocationId", rec.InvocationID))
		return rec.InvocationID, nil
	}
	s.dispatch(inv)
	return rec.InvocationID, nil
}

// Start lists the pending work of the local partitions and starts the worker
// lanes. Nothing is started when listing fails.
func (s *RetryingWorkScheduler) Start() error {
	s.mu.Lock()
	if s.IsRunning() {
		s.mu.Unlock()
		return nil
	}
	records, err := s.store.ListPendingWork(s.localPartitions())
	if err != nil {
		s.mu.Unlock()
		return errors.Wrap(err, "listing pending work")
	}
	s.timers.Start()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.workers = make([]*util.Worker, s.workerCount)
	for i := range s.workers {
		s.workers[i] = util.NewWorker(fmt.Sprintf("work-scheduler-%d", i), s.wg, s.handle, s.capacity)
		s.workers[i].Start()
	}
	atomic.StoreInt32(&s.running, 1)
	s.mu.Unlock()

	s.recover(records)
	return nil
}

func (s *RetryingWorkScheduler) localPartitions() []int {
	if s.partitioner == nil {
		return nil
	}
	return s.partitioner.GetLocalPartitions(s.nodeName)
}

func (s *RetryingWorkScheduler) recover(records []model.WorkRecord) {
	now := time.Now()
	for _, rec := range records {
		w, err := s.registry.Create(rec.Descriptor)
		if err != nil {
			logger.Error("can not recover work", zap.String("type", rec.Descriptor.Type), zap.String("invocationId", rec.InvocationID), zap.Error(err))
			continue
		}
		inv := &invocation{
			record: rec,
			work:   w,
			wc:     NewContext(rec.InvocationID, rec.Descriptor),
		}
		inv.wc.Attempt = rec.Attempt
		if wait := rec.NextAttemptAt.Sub(now); wait > 0 {
			s.timers.AddTask(func() { s.dispatch(inv) }, wait)
		} else {
			s.dispatch(inv)
		}
	}
	if len(records) > 0 {
		logger.Info("recovered pending work", zap.Int("count", len(records)), zap.String("node", s.nodeName))
	}
}

// Stop waits for running attempts and leaves pending records in the store.
func (s *RetryingWorkScheduler) Stop() error {
	s.mu.Lock()
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		s.mu.Unlock()
		return nil
	}
	s.timers.Stop()
	for _, w := range s.workers {
		w.Stop()
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.cancel()
	logger.Info("work scheduler stopped")
	return nil
}

func (s *RetryingWorkScheduler) IsRunning() bool {
	return atomic.LoadInt32(&s.running) == 1
}

func (s *RetryingWorkScheduler) dispatch(inv *invocation) {
	if !s.IsRunning() {
		return
	}
	s.mu.RLock()
	lane := s.workers[murmur3.Sum32([]byte(inv.record.InvocationID))%uint32(len(s.workers))]
	s.mu.RUnlock()
	if lane.TrySend(inv) {
		return
	}
	logger.Debug("worker lane full, deferring work", zap.String("worker", lane.Name()), zap.String("invocationId", inv.record.InvocationID))
	s.timers.AddTask(func() { s.dispatch(inv) }, s.timers.Tick())
}

func (s *RetryingWorkScheduler) handle(task util.Task) error {
	inv := task.(*invocation)
	workType := inv.record.Descriptor.Type
	if inv.record.Attempt >= MAX_ATTEMPTS {
		s.fail(inv, ErrAttemptsExhausted)
		return nil
	}

	inv.record.Attempt++
	inv.wc.Attempt = inv.record.Attempt
	attempt := inv.record.Attempt
	s.collector.RecordAttempt(workType, attempt)

	start := time.Now()
	err := s.execute(inv)
	switch Classify(err) {
	case OUTCOME_SUCCESS:
		s.collector.RecordSuccess(workType, attempt, time.Since(start))
		logger.Debug("work succeeded", zap.String("work", inv.work.Describe()), zap.Int("attempt", attempt))
		if err := s.store.DeleteWork(inv.record.InvocationID); err != nil {
			logger.Error("error deleting completed work", zap.String("invocationId", inv.record.InvocationID), zap.Error(err))
		}
	case OUTCOME_RETRY:
		if attempt >= MAX_ATTEMPTS {
			s.fail(inv, err)
			return nil
		}
		delay := s.backoff.Delay(time.Duration(s.GetDelay())*time.Millisecond, attempt, s.maxDelay)
		now := time.Now()
		inv.record.NextAttemptAt = now.Add(delay)
		inv.record.UpdatedAt = now
		if err := s.store.SaveWork(inv.record); err != nil {
			logger.Error("error persisting work attempt", zap.String("invocationId", inv.record.InvocationID), zap.Error(err))
		}
		s.collector.RecordRetry(workType, attempt, delay)
		logger.Info("work failed, retrying", zap.String("work", inv.work.Describe()), zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		s.timers.AddTask(func() { s.dispatch(inv) }, delay)
	default:
		s.fail(inv, err)
	}
	return nil
}

func (s *RetryingWorkScheduler) execute(inv *invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("work panicked", zap.String("work", inv.work.Describe()), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = PanicError{Value: r}
		}
	}()
	return inv.work.Execute(s.ctx, inv.wc)
}

func (s *RetryingWorkScheduler) fail(inv *invocation, cause error) {
	workType := inv.record.Descriptor.Type
	s.collector.RecordFailure(workType, inv.record.Attempt, cause.Error())
	logger.Error("work failed", zap.String("work", inv.work.Describe()), zap.Int("attempt", inv.record.Attempt), zap.Error(cause))
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("failure handler panicked", zap.String("work", inv.work.Describe()), zap.Any("panic", r))
			}
		}()
		if err := inv.work.OnFailure(s.ctx, inv.wc, cause); err != nil {
			logger.Error("failure handler returned error", zap.String("work", inv.work.Describe()), zap.Error(err))
		}
	}()
	if err := s.store.DeleteWork(inv.record.InvocationID); err != nil {
		logger.Error("error deleting failed work", zap.String("invocationId", inv.record.InvocationID), zap.Error(err))
	}
}
