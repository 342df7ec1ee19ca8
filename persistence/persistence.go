package persistence

import (
	"fmt"

	"github.com/mohitkumar/flowrt/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

const ENTITY_WORK = "work"
const ENTITY_FLOW_NODE = "flow node instance"
const ENTITY_CONNECTOR = "connector instance"

// WorkStore keeps the records of invocations that did not reach a terminal
// outcome yet. ListPendingWork with nil partitions lists every partition.
type WorkStore interface {
	SaveWork(rec model.WorkRecord) error
	DeleteWork(invocationID string) error
	ListPendingWork(partitions []int) ([]model.WorkRecord, error)
}

type FlowNodeInstanceStore interface {
	SaveFlowNodeInstance(fni model.FlowNodeInstance) error
	GetFlowNodeInstance(id int64) (*model.FlowNodeInstance, error)
	DeleteFlowNodeInstance(id int64) error
}

type ConnectorStore interface {
	SaveConnector(c model.ConnectorInstance) error
	GetConnectorsOf(flowNodeInstanceID int64) ([]model.ConnectorInstance, error)
}

type Storage interface {
	WorkStore
	FlowNodeInstanceStore
	ConnectorStore
	Close() error
}
