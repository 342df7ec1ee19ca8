package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/mohitkumar/flowrt/flownode"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/persistence"
	"github.com/mohitkumar/flowrt/work"
	"go.uber.org/zap"
)

var _ work.Work = new(executeFlowNodeWork)

type executeFlowNodeWork struct {
	flowNodeInstanceID int64
	store              persistence.FlowNodeInstanceStore
	sequences          *flownode.SequenceRegistry
	states             flownode.StateManager
	behaviors          *StateBehaviorContainer
}

// NewExecuteFlowNodeWorkFactory builds the work advancing a flow node through
// its sequence until it reaches a stable or terminal state.
func NewExecuteFlowNodeWorkFactory(store persistence.FlowNodeInstanceStore, sequences *flownode.SequenceRegistry, states flownode.StateManager, behaviors *StateBehaviorContainer) work.Factory {
	return func(descriptor model.WorkDescriptor) (work.Work, error) {
		id, err := descriptor.Int64(PARAM_FLOW_NODE_INSTANCE_ID)
		if err != nil {
			return nil, err
		}
		return &executeFlowNodeWork{
			flowNodeInstanceID: id,
			store:              store,
			sequences:          sequences,
			states:             states,
			behaviors:          behaviors,
		}, nil
	}
}

func (w *executeFlowNodeWork) Describe() string {
	return fmt.Sprintf("%s[%d]", EXECUTE_FLOW_NODE_WORK, w.flowNodeInstanceID)
}

func (w *executeFlowNodeWork) Execute(ctx context.Context, wc *work.Context) error {
	fni, err := w.store.GetFlowNodeInstance(w.flowNodeInstanceID)
	if err != nil {
		return err
	}
	state, err := w.states.GetState(fni.StateID)
	if err != nil {
		return err
	}
	if state.IsFailed() {
		return fmt.Errorf("flow node %d is failed, it has to be retried first", fni.ID)
	}
	if state.Terminal {
		return nil
	}
	for {
		fni.StateExecuting = true
		if err := w.save(fni); err != nil {
			return work.Retryable(err)
		}
		if err := w.behaviors.GetBehavior(state.Name)(ctx, fni); err != nil {
			return err
		}
		next, ok := w.sequences.StateAfter(fni.Type, state.Category, state.ID)
		if !ok {
			fni.StateExecuting = false
			return w.save(fni)
		}
		logger.Debug("flow node state changed", zap.Int64("flowNodeInstanceId", fni.ID), zap.Stringer("from", state), zap.Stringer("to", next))
		fni.PreviousStateID = fni.StateID
		fni.StateID = next.ID
		fni.StateExecuting = false
		if err := w.save(fni); err != nil {
			return work.Retryable(err)
		}
		if next.Terminal || next.Stable {
			return nil
		}
		state = next
	}
}

// OnFailure moves the flow node to the failed state, the state it failed in
// becomes its previous state.
func (w *executeFlowNodeWork) OnFailure(ctx context.Context, wc *work.Context, cause error) error {
	fni, err := w.store.GetFlowNodeInstance(w.flowNodeInstanceID)
	if err != nil {
		return err
	}
	if fni.StateID == flownode.Failed.ID {
		return nil
	}
	logger.Warn("flow node failed", zap.Int64("flowNodeInstanceId", fni.ID), zap.Int("stateId", fni.StateID), zap.Int("attempt", wc.Attempt), zap.Error(cause))
	fni.PreviousStateID = fni.StateID
	fni.StateID = flownode.Failed.ID
	fni.StateExecuting = false
	return w.save(fni)
}

func (w *executeFlowNodeWork) save(fni *model.FlowNodeInstance) error {
	fni.LastUpdate = time.Now()
	return w.store.SaveFlowNodeInstance(*fni)
}
