package model

import "fmt"

type StateCategory string

const NORMAL StateCategory = "NORMAL"
const CANCELLING StateCategory = "CANCELLING"
const ABORTING StateCategory = "ABORTING"

func (c StateCategory) Valid() bool {
	switch c {
	case NORMAL, CANCELLING, ABORTING:
		return true
	}
	return false
}

const STATE_INITIALIZING = "initializing"
const STATE_EXECUTING = "executing"
const STATE_READY = "ready"
const STATE_WAITING = "waiting"
const STATE_COMPLETED = "completed"
const STATE_FAILED = "failed"
const STATE_CANCELLING = "cancelling"
const STATE_CANCELLED = "cancelled"
const STATE_ABORTING = "aborting"
const STATE_ABORTED = "aborted"

// FlowNodeState is one step of a flow-node lifecycle. ID is what gets
// persisted on the instance, Name is the label used by callers.
type FlowNodeState struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Category StateCategory `json:"category"`
	Terminal bool          `json:"terminal"`
	// Stable states wait for an external signal instead of being advanced
	// by the executor.
	Stable bool `json:"stable"`
}

func NewState(id int, name string, category StateCategory, terminal bool) FlowNodeState {
	return FlowNodeState{
		ID:       id,
		Name:     name,
		Category: category,
		Terminal: terminal,
	}
}

func NewStableState(id int, name string, category StateCategory) FlowNodeState {
	st := NewState(id, name, category, false)
	st.Stable = true
	return st
}

func (s FlowNodeState) IsFailed() bool {
	return s.Name == STATE_FAILED
}

func (s FlowNodeState) String() string {
	return fmt.Sprintf("%s(%d)", s.Name, s.ID)
}
