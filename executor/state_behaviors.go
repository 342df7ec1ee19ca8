package executor

import (
	"context"
	"fmt"

	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"go.uber.org/zap"
)

// StateBehavior is what a flow node does while in a state. Returning a
// retryable error makes the scheduler run the state again later.
type StateBehavior func(ctx context.Context, fni *model.FlowNodeInstance) error

type StateBehaviorContainer struct {
	behaviors map[string]StateBehavior
}

func NewStateBehaviorContainer() *StateBehaviorContainer {
	return &StateBehaviorContainer{
		behaviors: make(map[string]StateBehavior),
	}
}

func (c *StateBehaviorContainer) Register(stateName string, behavior StateBehavior) {
	if _, ok := c.behaviors[stateName]; ok {
		panic(fmt.Sprintf("behavior for state %s already registered", stateName))
	}
	c.behaviors[stateName] = behavior
}

func (c *StateBehaviorContainer) GetBehavior(stateName string) StateBehavior {
	behavior, ok := c.behaviors[stateName]
	if ok {
		return behavior
	}
	return noop
}

func noop(ctx context.Context, fni *model.FlowNodeInstance) error {
	logger.Debug("no behavior for state", zap.Int64("flowNodeInstanceId", fni.ID), zap.Int("stateId", fni.StateID))
	return nil
}
