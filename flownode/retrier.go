package flownode

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/mohitkumar/flowrt/analytics"
	api "github.com/mohitkumar/flowrt/api/v1"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"go.uber.org/zap"
)

// FlowNodeRetrier resumes a flow node stuck in the failed state from the state
// it was in before failing. It does not lock the instance, callers make sure
// nothing else advances it meanwhile.
type FlowNodeRetrier struct {
	activities ActivityReadService
	executor   FlowNodeExecutor
	connectors ConnectorResetStrategy
	states     StateManager
	collector  analytics.WorkDataCollector
}

func NewFlowNodeRetrier(activities ActivityReadService, executor FlowNodeExecutor, connectors ConnectorResetStrategy, states StateManager, collector analytics.WorkDataCollector) *FlowNodeRetrier {
	if collector == nil {
		collector = analytics.NewNoopDataCollector()
	}
	return &FlowNodeRetrier{
		activities: activities,
		executor:   executor,
		connectors: connectors,
		states:     states,
		collector:  collector,
	}
}

func (r *FlowNodeRetrier) Retry(ctx context.Context, flowNodeInstanceID int64) error {
	err := r.retry(ctx, flowNodeInstanceID)
	r.collector.RecordFlowNodeRetry(flowNodeInstanceID, retryResult(err))
	if err != nil {
		logger.Error("flow node retry failed", zap.Int64("flowNodeInstanceId", flowNodeInstanceID), zap.Error(err))
		return err
	}
	logger.Info("flow node retried", zap.Int64("flowNodeInstanceId", flowNodeInstanceID))
	return nil
}

func (r *FlowNodeRetrier) retry(ctx context.Context, flowNodeInstanceID int64) error {
	fni, err := r.activities.GetFlowNodeInstance(ctx, flowNodeInstanceID)
	if err != nil {
		return api.NotFoundError{Entity: "flow node instance", ID: strconv.FormatInt(flowNodeInstanceID, 10), Cause: err}
	}

	current, err := r.states.GetState(fni.StateID)
	if err != nil {
		return executionError(fni.ID, errors.Wrapf(err, "resolving current state %d", fni.StateID))
	}
	if current.Name != model.STATE_FAILED {
		return api.InvalidStateError{
			FlowNodeName:       fni.Name,
			FlowNodeInstanceID: fni.ID,
			Expected:           model.STATE_FAILED,
			Actual:             current.Name,
		}
	}

	previous, err := r.states.GetState(fni.PreviousStateID)
	if err != nil {
		return executionError(fni.ID, errors.Wrapf(err, "resolving previous state %d", fni.PreviousStateID))
	}
	if err := r.connectors.ResetConnectorsOf(ctx, fni.ID); err != nil {
		return executionError(fni.ID, errors.Wrap(err, "resetting connectors"))
	}
	if err := r.executor.SetStateByStateID(ctx, fni.ProcessDefinitionID, fni.ID, previous.ID); err != nil {
		return executionError(fni.ID, errors.Wrapf(err, "rewinding to state %s", previous))
	}
	if previous.Terminal {
		return nil
	}
	if err := r.executor.ExecuteFlowNode(ctx, fni.ProcessDefinitionID, fni.ParentProcessInstanceID, fni.ID); err != nil {
		return executionError(fni.ID, errors.Wrap(err, "re-executing flow node"))
	}
	return nil
}

func executionError(flowNodeInstanceID int64, cause error) error {
	return api.ExecutionError{FlowNodeInstanceID: flowNodeInstanceID, Cause: cause}
}

func retryResult(err error) string {
	if err == nil {
		return analytics.FLOW_NODE_RETRY_OK
	}
	var ee api.ExecutionError
	if errors.As(err, &ee) {
		return analytics.FLOW_NODE_RETRY_ERROR
	}
	var nf api.NotFoundError
	if errors.As(err, &nf) {
		return analytics.FLOW_NODE_RETRY_NOT_FOUND
	}
	var is api.InvalidStateError
	if errors.As(err, &is) {
		return analytics.FLOW_NODE_RETRY_INVALID_STATE
	}
	return analytics.FLOW_NODE_RETRY_ERROR
}
