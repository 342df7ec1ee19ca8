package agent

import (
	"testing"
	"time"

	"github.com/mohitkumar/flowrt/action"
	"github.com/mohitkumar/flowrt/config"
	"github.com/mohitkumar/flowrt/model"
	"github.com/stretchr/testify/require"
)

func TestAgentLifecycle(t *testing.T) {
	conf := config.Default()
	conf.HttpPort = 0
	conf.SchedulerConfig.TimerTick = time.Millisecond
	conf.TriggerConfig.Tick = 10 * time.Millisecond

	a, err := New(conf)
	require.NoError(t, err)
	require.NoError(t, a.Start())

	d := model.NewWorkDescriptor(action.SCRIPT_WORK, model.Parameter{Name: action.PARAM_SCRIPT, Value: "$.done = true;"})
	_, err = a.Scheduler().Submit(d)
	require.NoError(t, err)

	trig, err := model.NewOneShotTrigger("soon", time.Now().Add(20*time.Millisecond), 0, model.MISFIRE_ALL)
	require.NoError(t, err)
	require.NoError(t, a.Container().GetTriggerService().Schedule(trig, d))

	require.Eventually(t, func() bool {
		_, scheduled := a.Container().GetTriggerService().NextFireTime("soon")
		pending, err := a.Container().GetStorage().ListPendingWork(nil)
		return err == nil && len(pending) == 0 && !scheduled
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Shutdown())
	require.NoError(t, a.Shutdown())
	select {
	case <-a.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}
