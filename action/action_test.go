package action

import (
	"context"
	"testing"
	"time"

	"github.com/mohitkumar/flowrt/executor"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/work"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func scriptDescriptor(script string, input, data map[string]any) model.WorkDescriptor {
	return model.NewWorkDescriptor(SCRIPT_WORK,
		model.Parameter{Name: PARAM_SCRIPT, Value: script},
		model.Parameter{Name: PARAM_INPUT, Value: input},
		model.Parameter{Name: PARAM_DATA, Value: data},
	)
}

func TestScriptOutputIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	defer logger.Set(zap.NewNop())

	d := scriptDescriptor("$.greeting = 'hello ' + $.name;", map[string]any{"name": "{$.user}"}, map[string]any{"user": "ada"})
	w, err := NewScriptAction(d)
	require.NoError(t, err)
	require.NoError(t, w.Execute(context.Background(), work.NewContext("inv-log", d)))

	entries := logs.FilterMessage("script output").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "inv-log", fields["invocationId"])
	require.Equal(t, map[string]any{"name": "ada", "greeting": "hello ada"}, fields["output"])
}

func TestScriptAction(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"output is $ after the script": func(t *testing.T) {
			d := scriptDescriptor("$.total = $.price * $.qty;",
				map[string]any{"price": "{$.order.price}", "qty": "{$.order.qty}"},
				map[string]any{"order": map[string]any{"price": 5, "qty": 3}},
			)
			w, err := NewScriptAction(d)
			require.NoError(t, err)
			wc := work.NewContext("inv-1", d)
			require.NoError(t, w.Execute(context.Background(), wc))
			out, ok := wc.Get(OUTPUT_KEY)
			require.True(t, ok)
			require.Equal(t, float64(15), out.(map[string]any)["total"])
		},
		"thrown retryable object asks for a retry": func(t *testing.T) {
			d := scriptDescriptor(`throw {retryable: true, message: "busy"};`, nil, nil)
			w, err := NewScriptAction(d)
			require.NoError(t, err)
			err = w.Execute(context.Background(), work.NewContext("inv-2", d))
			require.Error(t, err)
			require.True(t, work.IsRetryable(err))
		},
		"syntax error is permanent": func(t *testing.T) {
			d := scriptDescriptor(`this is not javascript`, nil, nil)
			w, err := NewScriptAction(d)
			require.NoError(t, err)
			err = w.Execute(context.Background(), work.NewContext("inv-3", d))
			require.Error(t, err)
			require.False(t, work.IsRetryable(err))
		},
		"thrown string is permanent": func(t *testing.T) {
			d := scriptDescriptor(`throw "bad";`, nil, nil)
			w, err := NewScriptAction(d)
			require.NoError(t, err)
			err = w.Execute(context.Background(), work.NewContext("inv-4", d))
			require.Error(t, err)
			require.False(t, work.IsRetryable(err))
		},
		"cancelled context interrupts the script": func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err := RunScript(ctx, "for (;;) {}", nil)
			require.Error(t, err)
			require.True(t, work.IsRetryable(err))
		},
		"empty script is rejected": func(t *testing.T) {
			_, err := NewScriptAction(scriptDescriptor("", nil, nil))
			require.Error(t, err)
		},
		"missing script is rejected": func(t *testing.T) {
			_, err := NewScriptAction(model.NewWorkDescriptor(SCRIPT_WORK))
			require.Error(t, err)
		},
	} {
		t.Run(scenario, fn)
	}
}

func TestRegister(t *testing.T) {
	registry := work.NewRegistry()
	Register(registry)
	require.True(t, registry.Has(SCRIPT_WORK))
}

func TestScriptConnectorRunner(t *testing.T) {
	runner := NewScriptConnectorRunner(map[string]string{
		"ok":    `if ($.flowNode.id !== 7) { throw "wrong flow node"; }`,
		"flaky": `throw {retryable: true, message: "later"};`,
	})
	fni := &model.FlowNodeInstance{ID: 7, Name: "task", Type: model.AUTOMATIC_TASK}

	require.NoError(t, runner.RunConnector(context.Background(), fni, model.ConnectorInstance{ID: 1, Name: "ok"}))

	err := runner.RunConnector(context.Background(), fni, model.ConnectorInstance{ID: 2, Name: "flaky"})
	require.True(t, work.IsRetryable(err))

	require.Error(t, runner.RunConnector(context.Background(), fni, model.ConnectorInstance{ID: 3, Name: "missing"}))

	var _ executor.ConnectorRunner = runner
}
