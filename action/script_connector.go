package action

import (
	"context"
	"fmt"

	"github.com/mohitkumar/flowrt/executor"
	"github.com/mohitkumar/flowrt/model"
)

var _ executor.ConnectorRunner = new(ScriptConnectorRunner)

// ScriptConnectorRunner runs connectors as scripts, looked up by connector
// name. $ holds the flow node the connector belongs to.
type ScriptConnectorRunner struct {
	scripts map[string]string
}

func NewScriptConnectorRunner(scripts map[string]string) *ScriptConnectorRunner {
	return &ScriptConnectorRunner{scripts: scripts}
}

func (r *ScriptConnectorRunner) RunConnector(ctx context.Context, fni *model.FlowNodeInstance, connector model.ConnectorInstance) error {
	script, ok := r.scripts[connector.Name]
	if !ok {
		return fmt.Errorf("no script for connector %s", connector.Name)
	}
	input := map[string]any{
		"flowNode": map[string]any{
			"id":                  fni.ID,
			"name":                fni.Name,
			"type":                string(fni.Type),
			"processDefinitionId": fni.ProcessDefinitionID,
		},
		"connector": map[string]any{
			"id":   connector.ID,
			"name": connector.Name,
		},
	}
	_, err := RunScript(ctx, script, input)
	return err
}
