package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dop251/goja"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/util"
	"github.com/mohitkumar/flowrt/work"
	"go.uber.org/zap"
)

var _ work.Work = new(scriptAction)

// scriptAction runs javascript with $ bound to the resolved input. The value
// of $ once the script ends is the output. Throwing an object with
// retryable: true asks for another attempt.
type scriptAction struct {
	*baseAction
	invocation string
	script     string
}

func NewScriptAction(descriptor model.WorkDescriptor) (work.Work, error) {
	script, err := descriptor.String(PARAM_SCRIPT)
	if err != nil {
		return nil, err
	}
	if len(script) == 0 {
		return nil, errors.Newf("work %s: script can not be empty", descriptor.ID)
	}
	base, err := newBaseAction(descriptor)
	if err != nil {
		return nil, err
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &scriptAction{
		baseAction: base,
		invocation: descriptor.ID,
		script:     script,
	}, nil
}

func (d *scriptAction) Describe() string {
	return fmt.Sprintf("%s[%s]", d.name, d.invocation)
}

func (d *scriptAction) Execute(ctx context.Context, wc *work.Context) error {
	logger.Debug("running script", zap.String("invocationId", wc.InvocationID), zap.Int("attempt", wc.Attempt))
	input := util.ResolveInputParams(d.data, d.inputParams)
	output, err := RunScript(ctx, d.script, input)
	if err != nil {
		return err
	}
	logger.Debug("script output", zap.String("invocationId", wc.InvocationID), zap.Any("output", output))
	wc.Set(OUTPUT_KEY, output)
	return nil
}

func (d *scriptAction) OnFailure(ctx context.Context, wc *work.Context, cause error) error {
	logger.Error("script failed", zap.String("invocationId", wc.InvocationID), zap.Int("attempts", wc.Attempt), zap.Error(cause))
	return nil
}

// RunScript evaluates script with $ holding input and returns $ afterwards.
func RunScript(ctx context.Context, script string, input map[string]any) (map[string]any, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	vm := goja.New()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	if _, err := vm.RunString(fmt.Sprintf("var $ = %s;\n%s", data, script)); err != nil {
		return nil, scriptError(err)
	}
	val := vm.Get("$")
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return map[string]any{}, nil
	}
	res, err := json.Marshal(val.Export())
	if err != nil {
		return nil, err
	}
	var output map[string]any
	if err := json.Unmarshal(res, &output); err != nil {
		return nil, errors.Wrap(err, "script result should be an object")
	}
	return output, nil
}

func scriptError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return work.Retryable(errors.Wrap(err, "script interrupted"))
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		if thrown, ok := exception.Value().Export().(map[string]any); ok {
			if retryable, _ := thrown["retryable"].(bool); retryable {
				return work.Retryable(errors.Newf("error executing javascript %v", thrown["message"]))
			}
		}
	}
	return errors.Wrap(err, "error executing javascript")
}
