package flownode

import (
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
	api "github.com/mohitkumar/flowrt/api/v1"
	"github.com/mohitkumar/flowrt/model"
)

var _ StateManager = new(DefaultStateManager)

// DefaultStateManager resolves state ids against every state of every
// registered flow node type plus the extra states given at creation.
type DefaultStateManager struct {
	states map[int]model.FlowNodeState
}

func NewDefaultStateManager(registry *SequenceRegistry, extra ...model.FlowNodeState) (*DefaultStateManager, error) {
	m := &DefaultStateManager{
		states: make(map[int]model.FlowNodeState),
	}
	for _, t := range registry.Types() {
		seq, _ := registry.Sequences(t)
		for _, category := range []model.StateCategory{model.NORMAL, model.CANCELLING, model.ABORTING} {
			for _, st := range seq.States(category) {
				if err := m.add(st); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, st := range extra {
		if err := m.add(st); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DefaultStateManager) add(st model.FlowNodeState) error {
	if existing, ok := m.states[st.ID]; ok {
		if existing != st {
			return errors.Newf("state id %d is used by %+v and %+v", st.ID, existing, st)
		}
		return nil
	}
	m.states[st.ID] = st
	return nil
}

func (m *DefaultStateManager) GetState(stateID int) (model.FlowNodeState, error) {
	st, ok := m.states[stateID]
	if !ok {
		return model.FlowNodeState{}, api.NotFoundError{Entity: "flow node state", ID: strconv.Itoa(stateID)}
	}
	return st, nil
}

func (m *DefaultStateManager) States() []model.FlowNodeState {
	states := make([]model.FlowNodeState, 0, len(m.states))
	for _, st := range m.states {
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}
