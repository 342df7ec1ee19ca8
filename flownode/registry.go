package flownode

import (
	"sort"

	api "github.com/mohitkumar/flowrt/api/v1"
	"github.com/mohitkumar/flowrt/model"
)

type SequenceRegistry struct {
	types map[model.FlowNodeType]*FlowNodeStateSequences
}

func NewSequenceRegistry() *SequenceRegistry {
	return &SequenceRegistry{
		types: make(map[model.FlowNodeType]*FlowNodeStateSequences),
	}
}

// Define returns the sequences of the flow node type, creating them on the
// first call.
func (r *SequenceRegistry) Define(flowNodeType model.FlowNodeType) *FlowNodeStateSequences {
	if seq, ok := r.types[flowNodeType]; ok {
		return seq
	}
	seq := NewFlowNodeStateSequences(flowNodeType)
	r.types[flowNodeType] = seq
	return seq
}

func (r *SequenceRegistry) Sequences(flowNodeType model.FlowNodeType) (*FlowNodeStateSequences, bool) {
	seq, ok := r.types[flowNodeType]
	return seq, ok
}

func (r *SequenceRegistry) FirstState(flowNodeType model.FlowNodeType, category model.StateCategory) (model.FlowNodeState, error) {
	seq, ok := r.types[flowNodeType]
	if !ok {
		return model.FlowNodeState{}, api.UnknownCategoryError{FlowNodeType: string(flowNodeType), Category: string(category)}
	}
	return seq.FirstState(category)
}

func (r *SequenceRegistry) StateAfter(flowNodeType model.FlowNodeType, category model.StateCategory, currentStateID int) (model.FlowNodeState, bool) {
	seq, ok := r.types[flowNodeType]
	if !ok {
		return model.FlowNodeState{}, false
	}
	return seq.StateAfter(category, currentStateID)
}

func (r *SequenceRegistry) Types() []model.FlowNodeType {
	types := make([]model.FlowNodeType, 0, len(r.types))
	for t := range r.types {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
