package executor

import (
	"context"
	"sort"

	"github.com/mohitkumar/flowrt/flownode"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/persistence"
	"github.com/mohitkumar/flowrt/work"
	"go.uber.org/zap"
)

var _ flownode.ConnectorResetStrategy = new(ConnectorResetter)

// ConnectorResetter makes the connectors that were running or failed run
// again on the next execution of their flow node.
type ConnectorResetter struct {
	store persistence.ConnectorStore
}

func NewConnectorResetter(store persistence.ConnectorStore) *ConnectorResetter {
	return &ConnectorResetter{store: store}
}

func (r *ConnectorResetter) ResetConnectorsOf(ctx context.Context, flowNodeInstanceID int64) error {
	connectors, err := r.store.GetConnectorsOf(flowNodeInstanceID)
	if err != nil {
		return err
	}
	for _, c := range connectors {
		if c.State != model.CONNECTOR_EXECUTING && c.State != model.CONNECTOR_FAILED {
			continue
		}
		logger.Info("resetting connector", zap.Int64("connectorId", c.ID), zap.String("name", c.Name), zap.String("from", string(c.State)))
		c.State = model.CONNECTOR_TO_RE_EXECUTE
		if err := r.store.SaveConnector(c); err != nil {
			return err
		}
	}
	return nil
}

type ConnectorRunner interface {
	RunConnector(ctx context.Context, fni *model.FlowNodeInstance, connector model.ConnectorInstance) error
}

// ConnectorBehavior runs the pending connectors of the flow node in id order.
// A connector failing with a retryable error is run again on the next
// attempt, any other failure leaves it failed.
func ConnectorBehavior(store persistence.ConnectorStore, runner ConnectorRunner) StateBehavior {
	return func(ctx context.Context, fni *model.FlowNodeInstance) error {
		connectors, err := store.GetConnectorsOf(fni.ID)
		if err != nil {
			return work.Retryable(err)
		}
		sort.Slice(connectors, func(i, j int) bool { return connectors[i].ID < connectors[j].ID })
		for _, c := range connectors {
			if c.State != model.CONNECTOR_TO_BE_EXECUTED && c.State != model.CONNECTOR_TO_RE_EXECUTE {
				continue
			}
			c.State = model.CONNECTOR_EXECUTING
			if err := store.SaveConnector(c); err != nil {
				return work.Retryable(err)
			}
			runErr := runner.RunConnector(ctx, fni, c)
			switch {
			case runErr == nil:
				c.State = model.CONNECTOR_DONE
			case work.IsRetryable(runErr):
				c.State = model.CONNECTOR_TO_RE_EXECUTE
			default:
				c.State = model.CONNECTOR_FAILED
			}
			if err := store.SaveConnector(c); err != nil {
				return work.Retryable(err)
			}
			if runErr != nil {
				return runErr
			}
		}
		return nil
	}
}
