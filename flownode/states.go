package flownode

import "github.com/mohitkumar/flowrt/model"

const STATE_ID_INITIALIZING = 1
const STATE_ID_EXECUTING = 2
const STATE_ID_FAILED = 3
const STATE_ID_READY = 4
const STATE_ID_COMPLETED = 5
const STATE_ID_WAITING = 6
const STATE_ID_CANCELLING = 7
const STATE_ID_CANCELLED = 8
const STATE_ID_ABORTING = 9
const STATE_ID_ABORTED = 10

var (
	Initializing = model.NewState(STATE_ID_INITIALIZING, model.STATE_INITIALIZING, model.NORMAL, false)
	Executing    = model.NewState(STATE_ID_EXECUTING, model.STATE_EXECUTING, model.NORMAL, false)
	Ready        = model.NewStableState(STATE_ID_READY, model.STATE_READY, model.NORMAL)
	Waiting      = model.NewStableState(STATE_ID_WAITING, model.STATE_WAITING, model.NORMAL)
	Completed    = model.NewState(STATE_ID_COMPLETED, model.STATE_COMPLETED, model.NORMAL, true)
	Cancelling   = model.NewState(STATE_ID_CANCELLING, model.STATE_CANCELLING, model.CANCELLING, false)
	Cancelled    = model.NewState(STATE_ID_CANCELLED, model.STATE_CANCELLED, model.CANCELLING, true)
	Aborting     = model.NewState(STATE_ID_ABORTING, model.STATE_ABORTING, model.ABORTING, false)
	Aborted      = model.NewState(STATE_ID_ABORTED, model.STATE_ABORTED, model.ABORTING, true)
	// Failed is outside of every sequence, instances land in it when their
	// execution failed for good.
	Failed = model.NewState(STATE_ID_FAILED, model.STATE_FAILED, model.NORMAL, false)
)

// DefaultSequences registers the standard lifecycle of every flow node type.
func DefaultSequences() *SequenceRegistry {
	r := NewSequenceRegistry()

	task := r.Define(model.AUTOMATIC_TASK)
	task.MustDefineNormalSequence(Initializing, Executing, Completed)
	defineInterruptions(task)

	user := r.Define(model.USER_TASK)
	user.MustDefineNormalSequence(Initializing, Ready, Executing, Completed)
	defineInterruptions(user)

	for _, t := range []model.FlowNodeType{model.GATEWAY, model.START_EVENT, model.END_EVENT} {
		seq := r.Define(t)
		seq.MustDefineNormalSequence(Initializing, Completed)
		defineInterruptions(seq)
	}

	catch := r.Define(model.INTERMEDIATE_CATCH_EVENT)
	catch.MustDefineNormalSequence(Initializing, Waiting, Completed)
	defineInterruptions(catch)
	return r
}

func defineInterruptions(seq *FlowNodeStateSequences) {
	seq.MustDefineCancelSequence(Cancelling, Cancelled)
	seq.MustDefineAbortSequence(Aborting, Aborted)
}

func NewDefaultStateManagerFor(registry *SequenceRegistry) (*DefaultStateManager, error) {
	return NewDefaultStateManager(registry, Failed)
}
