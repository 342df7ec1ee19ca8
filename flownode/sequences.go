package flownode

import (
	"github.com/cockroachdb/errors"
	api "github.com/mohitkumar/flowrt/api/v1"
	"github.com/mohitkumar/flowrt/model"
)

var (
	ErrSequenceAlreadyDefined = errors.New("state sequence already defined")
	ErrInvalidSequence        = errors.New("invalid state sequence")
)

// FlowNodeStateSequences holds the ordered states a flow node goes through in
// each category. Sequences are defined at startup, lookups are safe for
// concurrent use afterwards.
type FlowNodeStateSequences struct {
	flowNodeType model.FlowNodeType
	sequences    map[model.StateCategory][]model.FlowNodeState
}

func NewFlowNodeStateSequences(flowNodeType model.FlowNodeType) *FlowNodeStateSequences {
	return &FlowNodeStateSequences{
		flowNodeType: flowNodeType,
		sequences:    make(map[model.StateCategory][]model.FlowNodeState),
	}
}

func (s *FlowNodeStateSequences) DefineNormalSequence(states ...model.FlowNodeState) error {
	return s.define(model.NORMAL, states)
}

func (s *FlowNodeStateSequences) DefineCancelSequence(states ...model.FlowNodeState) error {
	return s.define(model.CANCELLING, states)
}

func (s *FlowNodeStateSequences) DefineAbortSequence(states ...model.FlowNodeState) error {
	return s.define(model.ABORTING, states)
}

func (s *FlowNodeStateSequences) MustDefineNormalSequence(states ...model.FlowNodeState) {
	must(s.DefineNormalSequence(states...))
}

func (s *FlowNodeStateSequences) MustDefineCancelSequence(states ...model.FlowNodeState) {
	must(s.DefineCancelSequence(states...))
}

func (s *FlowNodeStateSequences) MustDefineAbortSequence(states ...model.FlowNodeState) {
	must(s.DefineAbortSequence(states...))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func (s *FlowNodeStateSequences) define(category model.StateCategory, states []model.FlowNodeState) error {
	if _, ok := s.sequences[category]; ok {
		return errors.Wrapf(ErrSequenceAlreadyDefined, "%s sequence of %s", category, s.flowNodeType)
	}
	if len(states) == 0 {
		return errors.Wrapf(ErrInvalidSequence, "%s sequence of %s can not be empty", category, s.flowNodeType)
	}
	seen := make(map[int]bool, len(states))
	for _, st := range states {
		if st.Category != category {
			return errors.Wrapf(ErrInvalidSequence, "state %s belongs to category %s, can not be part of the %s sequence of %s", st, st.Category, category, s.flowNodeType)
		}
		if seen[st.ID] {
			return errors.Wrapf(ErrInvalidSequence, "state id %d appears twice in the %s sequence of %s", st.ID, category, s.flowNodeType)
		}
		seen[st.ID] = true
	}
	if last := states[len(states)-1]; !last.Terminal {
		return errors.Wrapf(ErrInvalidSequence, "last state %s of the %s sequence of %s should be terminal", last, category, s.flowNodeType)
	}
	sequence := make([]model.FlowNodeState, len(states))
	copy(sequence, states)
	s.sequences[category] = sequence
	return nil
}

func (s *FlowNodeStateSequences) FirstState(category model.StateCategory) (model.FlowNodeState, error) {
	sequence, ok := s.sequences[category]
	if !ok {
		return model.FlowNodeState{}, api.UnknownCategoryError{FlowNodeType: string(s.flowNodeType), Category: string(category)}
	}
	return sequence[0], nil
}

// StateAfter returns the state following currentStateID in the category
// sequence. It returns false when the id is the last one or is not part of
// the sequence.
func (s *FlowNodeStateSequences) StateAfter(category model.StateCategory, currentStateID int) (model.FlowNodeState, bool) {
	sequence := s.sequences[category]
	for i, st := range sequence {
		if st.ID != currentStateID {
			continue
		}
		if i+1 < len(sequence) {
			return sequence[i+1], true
		}
		return model.FlowNodeState{}, false
	}
	return model.FlowNodeState{}, false
}

func (s *FlowNodeStateSequences) States(category model.StateCategory) []model.FlowNodeState {
	sequence := s.sequences[category]
	out := make([]model.FlowNodeState, len(sequence))
	copy(out, sequence)
	return out
}

func (s *FlowNodeStateSequences) FlowNodeType() model.FlowNodeType {
	return s.flowNodeType
}
