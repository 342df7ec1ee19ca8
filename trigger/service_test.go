package trigger

import (
	"sync"
	"testing"
	"time"

	"github.com/mohitkumar/flowrt/model"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recordingSubmitter struct {
	mu    sync.Mutex
	fired []model.WorkDescriptor
}

func (r *recordingSubmitter) Execute(d model.WorkDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, d)
	return nil
}

func (r *recordingSubmitter) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, d := range r.fired {
		v, _ := d.Parameter(PARAM_TRIGGER_NAME)
		names = append(names, v.(string))
	}
	return names
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func oneShot(t *testing.T, name string, at time.Time, priority int) model.Trigger {
	tr, err := model.NewOneShotTrigger(name, at, priority, model.MISFIRE_ALL)
	require.NoError(t, err)
	return tr
}

func repeating(t *testing.T, name string, policy model.MisfirePolicy, count int) model.Trigger {
	tr, err := model.NewRepeatTrigger(name, epoch, 0, policy, count, 1000)
	require.NoError(t, err)
	return tr
}

func TestService(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T, s *Service, sub *recordingSubmitter){
		"fires when due":                      testFiresWhenDue,
		"same instant fires by priority":      testPriorityOrder,
		"equal priority keeps schedule order": testStableOrder,
		"duplicate name rejected":             testDuplicateName,
		"unschedule removes trigger":          testUnschedule,
		"repeat rescheduled after firing":     testRepeatRescheduled,
		"misfire all replays every firing":    testMisfireAll,
		"misfire one replays once":            testMisfireOne,
		"misfire none drops missed":           testMisfireNone,
	} {
		t.Run(scenario, func(t *testing.T) {
			sub := &recordingSubmitter{}
			fn(t, NewService(sub, 100*time.Millisecond), sub)
		})
	}
}

func testFiresWhenDue(t *testing.T, s *Service, sub *recordingSubmitter) {
	require.NoError(t, s.Schedule(oneShot(t, "a", epoch, 0), model.NewWorkDescriptor("noop")))

	s.fireDue(epoch.Add(-time.Millisecond))
	require.Equal(t, 0, sub.count())

	s.fireDue(epoch)
	require.Equal(t, []string{"a"}, sub.names())
	fireTime, ok := sub.fired[0].Parameter(PARAM_FIRE_TIME)
	require.True(t, ok)
	require.Equal(t, epoch.UnixMilli(), fireTime)

	_, ok = s.NextFireTime("a")
	require.False(t, ok)
	require.Empty(t, s.Names())
}

func testPriorityOrder(t *testing.T, s *Service, sub *recordingSubmitter) {
	require.NoError(t, s.Schedule(oneShot(t, "low", epoch, 1), model.NewWorkDescriptor("noop")))
	require.NoError(t, s.Schedule(oneShot(t, "high", epoch, 9), model.NewWorkDescriptor("noop")))
	require.NoError(t, s.Schedule(oneShot(t, "earlier", epoch.Add(-50*time.Millisecond), 0), model.NewWorkDescriptor("noop")))

	s.fireDue(epoch)
	require.Equal(t, []string{"earlier", "high", "low"}, sub.names())
}

func testStableOrder(t *testing.T, s *Service, sub *recordingSubmitter) {
	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, s.Schedule(oneShot(t, name, epoch, 5), model.NewWorkDescriptor("noop")))
	}
	s.fireDue(epoch)
	require.Equal(t, []string{"first", "second", "third"}, sub.names())
}

func testDuplicateName(t *testing.T, s *Service, sub *recordingSubmitter) {
	require.NoError(t, s.Schedule(oneShot(t, "a", epoch, 0), model.NewWorkDescriptor("noop")))
	require.Error(t, s.Schedule(oneShot(t, "a", epoch.Add(time.Hour), 0), model.NewWorkDescriptor("noop")))
}

func testUnschedule(t *testing.T, s *Service, sub *recordingSubmitter) {
	require.NoError(t, s.Schedule(oneShot(t, "a", epoch, 0), model.NewWorkDescriptor("noop")))
	require.NoError(t, s.Schedule(oneShot(t, "b", epoch, 0), model.NewWorkDescriptor("noop")))
	require.True(t, s.Unschedule("a"))
	require.False(t, s.Unschedule("a"))

	s.fireDue(epoch)
	require.Equal(t, []string{"b"}, sub.names())
}

func testRepeatRescheduled(t *testing.T, s *Service, sub *recordingSubmitter) {
	require.NoError(t, s.Schedule(repeating(t, "r", model.MISFIRE_ALL, 2), model.NewWorkDescriptor("noop")))

	s.fireDue(epoch)
	next, ok := s.NextFireTime("r")
	require.True(t, ok)
	require.Equal(t, epoch.Add(time.Second), next)

	s.fireDue(epoch.Add(time.Second))
	require.Equal(t, 2, sub.count())
	_, ok = s.NextFireTime("r")
	require.False(t, ok)
}

func testMisfireAll(t *testing.T, s *Service, sub *recordingSubmitter) {
	require.NoError(t, s.Schedule(repeating(t, "r", model.MISFIRE_ALL, 10), model.NewWorkDescriptor("noop")))

	s.fireDue(epoch.Add(3 * time.Second))
	require.Equal(t, 4, sub.count())
	next, ok := s.NextFireTime("r")
	require.True(t, ok)
	require.Equal(t, epoch.Add(4*time.Second), next)
}

func testMisfireOne(t *testing.T, s *Service, sub *recordingSubmitter) {
	require.NoError(t, s.Schedule(repeating(t, "r", model.MISFIRE_ONE, 10), model.NewWorkDescriptor("noop")))

	// three firings missed, the one at 3s is on time
	s.fireDue(epoch.Add(3 * time.Second))
	require.Equal(t, 2, sub.count())
	next, ok := s.NextFireTime("r")
	require.True(t, ok)
	require.Equal(t, epoch.Add(4*time.Second), next)
}

func testMisfireNone(t *testing.T, s *Service, sub *recordingSubmitter) {
	require.NoError(t, s.Schedule(repeating(t, "r", model.MISFIRE_NONE, 10), model.NewWorkDescriptor("noop")))

	s.fireDue(epoch.Add(2500 * time.Millisecond))
	require.Equal(t, 0, sub.count())
	next, ok := s.NextFireTime("r")
	require.True(t, ok)
	require.Equal(t, epoch.Add(3*time.Second), next)
}

func TestServiceStartStop(t *testing.T) {
	sub := &recordingSubmitter{}
	s := NewService(sub, 10*time.Millisecond)
	require.NoError(t, s.Start())
	require.NoError(t, s.Schedule(oneShot(t, "soon", time.Now().Add(20*time.Millisecond), 0), model.NewWorkDescriptor("noop")))

	require.Eventually(t, func() bool { return sub.count() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}
