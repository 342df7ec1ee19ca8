package action

import (
	"fmt"
	"strings"

	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/work"
	"github.com/oliveagle/jsonpath"
)

const SCRIPT_WORK = "script"

const PARAM_SCRIPT = "script"
const PARAM_INPUT = "input"
const PARAM_DATA = "data"

// OUTPUT_KEY is where the script result is kept in the work context.
const OUTPUT_KEY = "output"

type baseAction struct {
	name        string
	inputParams map[string]any
	data        map[string]any
}

func newBaseAction(descriptor model.WorkDescriptor) (*baseAction, error) {
	input, err := descriptor.Map(PARAM_INPUT)
	if err != nil {
		return nil, err
	}
	data, err := descriptor.Map(PARAM_DATA)
	if err != nil {
		return nil, err
	}
	return &baseAction{
		name:        descriptor.Type,
		inputParams: input,
		data:        data,
	}, nil
}

// Validate checks every {$...} token of the input is a valid jsonpath.
func (ba *baseAction) Validate() error {
	return validateTokens(ba.inputParams)
}

func validateTokens(params map[string]any) error {
	for k, v := range params {
		switch val := v.(type) {
		case map[string]any:
			if err := validateTokens(val); err != nil {
				return err
			}
		case string:
			if !strings.HasPrefix(val, "{$") || !strings.HasSuffix(val, "}") {
				continue
			}
			if _, err := jsonpath.Compile(strings.TrimSuffix(strings.TrimPrefix(val, "{"), "}")); err != nil {
				return fmt.Errorf("input %s should be a valid jsonpath expression: %w", k, err)
			}
		}
	}
	return nil
}

// Register adds the script work to the registry.
func Register(registry *work.Registry) {
	registry.Register(SCRIPT_WORK, NewScriptAction)
}
