package model

import "time"

type FlowNodeType string

const AUTOMATIC_TASK FlowNodeType = "AUTOMATIC_TASK"
const USER_TASK FlowNodeType = "USER_TASK"
const GATEWAY FlowNodeType = "GATEWAY"
const START_EVENT FlowNodeType = "START_EVENT"
const END_EVENT FlowNodeType = "END_EVENT"
const INTERMEDIATE_CATCH_EVENT FlowNodeType = "INTERMEDIATE_CATCH_EVENT"

type FlowNodeInstance struct {
	ID                      int64        `json:"id"`
	Name                    string       `json:"name"`
	Type                    FlowNodeType `json:"type"`
	StateID                 int          `json:"stateId"`
	PreviousStateID         int          `json:"previousStateId"`
	StateExecuting          bool         `json:"stateExecuting"`
	ProcessDefinitionID     int64        `json:"processDefinitionId"`
	RootProcessInstanceID   int64        `json:"rootProcessInstanceId"`
	ParentProcessInstanceID int64        `json:"parentProcessInstanceId"`
	ParentContainerID       int64        `json:"parentContainerId"`
	LastUpdate              time.Time    `json:"lastUpdate"`
}

type ConnectorState string

const CONNECTOR_TO_BE_EXECUTED ConnectorState = "TO_BE_EXECUTED"
const CONNECTOR_EXECUTING ConnectorState = "EXECUTING"
const CONNECTOR_DONE ConnectorState = "DONE"
const CONNECTOR_FAILED ConnectorState = "FAILED"
const CONNECTOR_TO_RE_EXECUTE ConnectorState = "TO_RE_EXECUTE"

type ConnectorInstance struct {
	ID                 int64          `json:"id"`
	FlowNodeInstanceID int64          `json:"flowNodeInstanceId"`
	Name               string         `json:"name"`
	State              ConnectorState `json:"state"`
}
