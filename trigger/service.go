package trigger

import (
	"container/heap"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/util"
	"go.uber.org/zap"
)

const PARAM_TRIGGER_NAME = "triggerName"
const PARAM_FIRE_TIME = "triggerFireTime"

const DEFAULT_TICK = 100 * time.Millisecond

type WorkSubmitter interface {
	Execute(descriptor model.WorkDescriptor) error
}

type firing struct {
	at       time.Time
	priority int
	seq      uint64
	name     string
	desc     model.WorkDescriptor
}

// Service fires work descriptors on the schedule of their trigger. Entries due
// at the same instant fire by priority, higher first, then in the order they
// were scheduled.
type Service struct {
	submitter WorkSubmitter
	tick      time.Duration
	now       func() time.Time

	mu      sync.Mutex
	queue   fireQueue
	byName  map[string]*entry
	seq     uint64
	worker  *util.TickWorker
	wg      sync.WaitGroup
	running bool
}

func NewService(submitter WorkSubmitter, tick time.Duration) *Service {
	if tick <= 0 {
		tick = DEFAULT_TICK
	}
	return &Service{
		submitter: submitter,
		tick:      tick,
		now:       time.Now,
		byName:    make(map[string]*entry),
	}
}

func (s *Service) Schedule(trigger model.Trigger, descriptor model.WorkDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[trigger.Name()]; ok {
		return fmt.Errorf("trigger %s already scheduled", trigger.Name())
	}
	s.seq++
	e := &entry{
		trigger:    trigger,
		descriptor: descriptor,
		fireAt:     trigger.FirstFireTime(),
		seq:        s.seq,
	}
	heap.Push(&s.queue, e)
	s.byName[trigger.Name()] = e
	logger.Info("trigger scheduled", zap.String("trigger", trigger.String()), zap.Time("firstFire", e.fireAt))
	return nil
}

func (s *Service) Unschedule(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byName[name]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, e.index)
	delete(s.byName, name)
	logger.Info("trigger unscheduled", zap.String("trigger", name))
	return true
}

// NextFireTime reports when the named trigger fires next.
func (s *Service) NextFireTime(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byName[name]
	if !ok {
		return time.Time{}, false
	}
	return e.fireAt, true
}

func (s *Service) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.worker = util.NewTickWorker("trigger-service", s.tick, func() { s.fireDue(s.now()) }, &s.wg)
	s.worker.Start()
	return nil
}

func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.worker.Stop()
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

func (s *Service) fireDue(now time.Time) {
	firings := s.collectDue(now)
	for _, f := range firings {
		d := f.desc.With(PARAM_TRIGGER_NAME, f.name).With(PARAM_FIRE_TIME, f.at.UnixMilli())
		if err := s.submitter.Execute(d); err != nil {
			logger.Error("error submitting triggered work", zap.String("trigger", f.name), zap.String("type", d.Type), zap.Error(err))
		}
	}
}

// collectDue pops every entry due at now, applies its misfire policy and puts
// back what is left of its schedule. A fire time older than one tick counts
// as missed.
func (s *Service) collectDue(now time.Time) []firing {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firings []firing
	var rescheduled []*entry
	missedBefore := now.Add(-s.tick)
	for e := s.queue.peek(); e != nil && !e.fireAt.After(now); e = s.queue.peek() {
		heap.Pop(&s.queue)
		due := append([]time.Time{e.fireAt}, e.trigger.FireTimesBetween(e.fireAt, now)...)
		last := due[len(due)-1]
		for _, at := range s.applyMisfirePolicy(e, due, missedBefore) {
			firings = append(firings, firing{
				at:       at,
				priority: e.trigger.Priority(),
				seq:      e.seq,
				name:     e.trigger.Name(),
				desc:     e.descriptor,
			})
		}
		next, ok := e.trigger.Rescheduled(last)
		if !ok {
			delete(s.byName, e.trigger.Name())
			logger.Info("trigger exhausted", zap.String("trigger", e.trigger.Name()))
			continue
		}
		e.trigger = next
		e.fireAt = next.StartDate()
		rescheduled = append(rescheduled, e)
	}
	for _, e := range rescheduled {
		heap.Push(&s.queue, e)
	}

	sort.SliceStable(firings, func(i, j int) bool {
		if !firings[i].at.Equal(firings[j].at) {
			return firings[i].at.Before(firings[j].at)
		}
		if firings[i].priority != firings[j].priority {
			return firings[i].priority > firings[j].priority
		}
		return firings[i].seq < firings[j].seq
	})
	return firings
}

func (s *Service) applyMisfirePolicy(e *entry, due []time.Time, missedBefore time.Time) []time.Time {
	var missed, onTime []time.Time
	for _, at := range due {
		if at.Before(missedBefore) {
			missed = append(missed, at)
		} else {
			onTime = append(onTime, at)
		}
	}
	if len(missed) == 0 {
		return onTime
	}
	logger.Warn("trigger misfired", zap.String("trigger", e.trigger.Name()), zap.Int("missed", len(missed)), zap.String("policy", string(e.trigger.MisfirePolicy())))
	switch e.trigger.MisfirePolicy() {
	case model.MISFIRE_NONE:
		return onTime
	case model.MISFIRE_ONE:
		return append(missed[len(missed)-1:], onTime...)
	default:
		return append(missed, onTime...)
	}
}
