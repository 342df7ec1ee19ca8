package flownode

import (
	"context"

	"github.com/mohitkumar/flowrt/model"
)

type ActivityReadService interface {
	GetFlowNodeInstance(ctx context.Context, flowNodeInstanceID int64) (*model.FlowNodeInstance, error)
}

type FlowNodeExecutor interface {
	// SetStateByStateID overwrites the current state without running any
	// transition.
	SetStateByStateID(ctx context.Context, processDefinitionID int64, flowNodeInstanceID int64, stateID int) error
	ExecuteFlowNode(ctx context.Context, processDefinitionID int64, parentProcessInstanceID int64, flowNodeInstanceID int64) error
}

type ConnectorResetStrategy interface {
	ResetConnectorsOf(ctx context.Context, flowNodeInstanceID int64) error
}

type StateManager interface {
	GetState(stateID int) (model.FlowNodeState, error)
}
