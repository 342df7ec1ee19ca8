package executor

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mohitkumar/flowrt/flownode"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/persistence"
	"go.uber.org/zap"
)

const EXECUTE_FLOW_NODE_WORK = "execute-flownode"

const PARAM_PROCESS_DEFINITION_ID = "processDefinitionId"
const PARAM_PARENT_PROCESS_INSTANCE_ID = "parentProcessInstanceId"
const PARAM_FLOW_NODE_INSTANCE_ID = "flowNodeInstanceId"

type WorkSubmitter interface {
	Execute(descriptor model.WorkDescriptor) error
}

var _ flownode.FlowNodeExecutor = new(FlowNodeExecutor)
var _ flownode.ActivityReadService = new(FlowNodeExecutor)

// FlowNodeExecutor gives access to flow node instances and hands their
// execution to the work scheduler.
type FlowNodeExecutor struct {
	store     persistence.FlowNodeInstanceStore
	submitter WorkSubmitter
}

func NewFlowNodeExecutor(store persistence.FlowNodeInstanceStore, submitter WorkSubmitter) *FlowNodeExecutor {
	return &FlowNodeExecutor{
		store:     store,
		submitter: submitter,
	}
}

func (e *FlowNodeExecutor) GetFlowNodeInstance(ctx context.Context, flowNodeInstanceID int64) (*model.FlowNodeInstance, error) {
	return e.store.GetFlowNodeInstance(flowNodeInstanceID)
}

func (e *FlowNodeExecutor) SetStateByStateID(ctx context.Context, processDefinitionID int64, flowNodeInstanceID int64, stateID int) error {
	fni, err := e.store.GetFlowNodeInstance(flowNodeInstanceID)
	if err != nil {
		return err
	}
	if fni.ProcessDefinitionID != processDefinitionID {
		return errors.Newf("flow node instance %d belongs to process definition %d, not %d", flowNodeInstanceID, fni.ProcessDefinitionID, processDefinitionID)
	}
	logger.Info("overwriting flow node state", zap.Int64("flowNodeInstanceId", fni.ID), zap.Int("from", fni.StateID), zap.Int("to", stateID))
	fni.PreviousStateID = fni.StateID
	fni.StateID = stateID
	fni.StateExecuting = false
	fni.LastUpdate = time.Now()
	return e.store.SaveFlowNodeInstance(*fni)
}

func (e *FlowNodeExecutor) ExecuteFlowNode(ctx context.Context, processDefinitionID int64, parentProcessInstanceID int64, flowNodeInstanceID int64) error {
	descriptor := model.NewWorkDescriptor(EXECUTE_FLOW_NODE_WORK,
		model.Parameter{Name: PARAM_PROCESS_DEFINITION_ID, Value: processDefinitionID},
		model.Parameter{Name: PARAM_PARENT_PROCESS_INSTANCE_ID, Value: parentProcessInstanceID},
		model.Parameter{Name: PARAM_FLOW_NODE_INSTANCE_ID, Value: flowNodeInstanceID},
	)
	if err := e.submitter.Execute(descriptor); err != nil {
		return errors.Wrapf(err, "submitting execution of flow node %d", flowNodeInstanceID)
	}
	return nil
}

// CreateFlowNodeInstance stores a new instance in the first normal state of
// its type.
func (e *FlowNodeExecutor) CreateFlowNodeInstance(ctx context.Context, sequences *flownode.SequenceRegistry, fni model.FlowNodeInstance) (*model.FlowNodeInstance, error) {
	first, err := sequences.FirstState(fni.Type, model.NORMAL)
	if err != nil {
		return nil, err
	}
	fni.StateID = first.ID
	fni.PreviousStateID = 0
	fni.StateExecuting = false
	fni.LastUpdate = time.Now()
	if err := e.store.SaveFlowNodeInstance(fni); err != nil {
		return nil, err
	}
	return &fni, nil
}
