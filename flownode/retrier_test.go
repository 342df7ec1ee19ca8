package flownode

import (
	"context"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	api "github.com/mohitkumar/flowrt/api/v1"
	"github.com/mohitkumar/flowrt/model"
	"github.com/stretchr/testify/require"
)

type fakeActivities struct {
	instances map[int64]model.FlowNodeInstance
}

func (f *fakeActivities) GetFlowNodeInstance(ctx context.Context, id int64) (*model.FlowNodeInstance, error) {
	fni, ok := f.instances[id]
	if !ok {
		return nil, fmt.Errorf("no flow node instance %d", id)
	}
	return &fni, nil
}

type setStateCall struct {
	processDefinitionID int64
	flowNodeInstanceID  int64
	stateID             int
}

type executeCall struct {
	processDefinitionID     int64
	parentProcessInstanceID int64
	flowNodeInstanceID      int64
}

type fakeExecutor struct {
	activities  *fakeActivities
	setStates   []setStateCall
	executions  []executeCall
	setStateErr error
	executeErr  error
}

func (f *fakeExecutor) SetStateByStateID(ctx context.Context, processDefinitionID int64, flowNodeInstanceID int64, stateID int) error {
	if f.setStateErr != nil {
		return f.setStateErr
	}
	f.setStates = append(f.setStates, setStateCall{processDefinitionID, flowNodeInstanceID, stateID})
	fni := f.activities.instances[flowNodeInstanceID]
	fni.PreviousStateID = fni.StateID
	fni.StateID = stateID
	f.activities.instances[flowNodeInstanceID] = fni
	return nil
}

func (f *fakeExecutor) ExecuteFlowNode(ctx context.Context, processDefinitionID int64, parentProcessInstanceID int64, flowNodeInstanceID int64) error {
	f.executions = append(f.executions, executeCall{processDefinitionID, parentProcessInstanceID, flowNodeInstanceID})
	return f.executeErr
}

type fakeConnectors struct {
	resets []int64
	err    error
}

func (f *fakeConnectors) ResetConnectorsOf(ctx context.Context, flowNodeInstanceID int64) error {
	if f.err != nil {
		return f.err
	}
	f.resets = append(f.resets, flowNodeInstanceID)
	return nil
}

type retrierFixture struct {
	retrier    *FlowNodeRetrier
	activities *fakeActivities
	executor   *fakeExecutor
	connectors *fakeConnectors
}

func newRetrierFixture(t *testing.T, instances ...model.FlowNodeInstance) *retrierFixture {
	states, err := NewDefaultStateManagerFor(DefaultSequences())
	require.NoError(t, err)
	activities := &fakeActivities{instances: make(map[int64]model.FlowNodeInstance)}
	for _, fni := range instances {
		activities.instances[fni.ID] = fni
	}
	executor := &fakeExecutor{activities: activities}
	connectors := &fakeConnectors{}
	return &retrierFixture{
		retrier:    NewFlowNodeRetrier(activities, executor, connectors, states, nil),
		activities: activities,
		executor:   executor,
		connectors: connectors,
	}
}

func failedInstance(id int64, previous int) model.FlowNodeInstance {
	return model.FlowNodeInstance{
		ID:                      id,
		Name:                    "charge card",
		Type:                    model.AUTOMATIC_TASK,
		StateID:                 STATE_ID_FAILED,
		PreviousStateID:         previous,
		ProcessDefinitionID:     500,
		ParentProcessInstanceID: 600,
	}
}

func TestFlowNodeRetrier(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"rewind and resume":               testRewindAndResume,
		"rewind without resume":           testRewindWithoutResume,
		"not failed is rejected":          testNotFailed,
		"unknown instance":                testUnknownInstance,
		"connector reset failure":         testConnectorResetFailure,
		"execution failure":               testExecutionFailure,
		"unknown previous state":          testUnknownPreviousState,
		"second retry after resume fails": testSecondRetry,
	} {
		t.Run(scenario, fn)
	}
}

func testRewindAndResume(t *testing.T) {
	f := newRetrierFixture(t, failedInstance(7, STATE_ID_EXECUTING))

	require.NoError(t, f.retrier.Retry(context.Background(), 7))
	require.Equal(t, []int64{7}, f.connectors.resets)
	require.Equal(t, []setStateCall{{500, 7, STATE_ID_EXECUTING}}, f.executor.setStates)
	require.Equal(t, []executeCall{{500, 600, 7}}, f.executor.executions)
	require.Equal(t, STATE_ID_EXECUTING, f.activities.instances[7].StateID)
}

func testRewindWithoutResume(t *testing.T) {
	f := newRetrierFixture(t, failedInstance(7, STATE_ID_COMPLETED))

	require.NoError(t, f.retrier.Retry(context.Background(), 7))
	require.Equal(t, []setStateCall{{500, 7, STATE_ID_COMPLETED}}, f.executor.setStates)
	require.Empty(t, f.executor.executions)
}

func testNotFailed(t *testing.T) {
	fni := failedInstance(7, STATE_ID_INITIALIZING)
	fni.StateID = STATE_ID_EXECUTING
	f := newRetrierFixture(t, fni)

	err := f.retrier.Retry(context.Background(), 7)
	var invalid api.InvalidStateError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, "charge card", invalid.FlowNodeName)
	require.Equal(t, int64(7), invalid.FlowNodeInstanceID)
	require.Equal(t, model.STATE_EXECUTING, invalid.Actual)
	require.Contains(t, err.Error(), "executing")

	require.Empty(t, f.connectors.resets)
	require.Empty(t, f.executor.setStates)
	require.Empty(t, f.executor.executions)
}

func testUnknownInstance(t *testing.T) {
	f := newRetrierFixture(t)

	err := f.retrier.Retry(context.Background(), 99)
	var nf api.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "99", nf.ID)
	require.Empty(t, f.connectors.resets)
	require.Empty(t, f.executor.setStates)
	require.Empty(t, f.executor.executions)
}

func testConnectorResetFailure(t *testing.T) {
	f := newRetrierFixture(t, failedInstance(7, STATE_ID_EXECUTING))
	cause := fmt.Errorf("connector store down")
	f.connectors.err = cause

	err := f.retrier.Retry(context.Background(), 7)
	var execErr api.ExecutionError
	require.True(t, errors.As(err, &execErr))
	require.True(t, errors.Is(err, cause))
	require.Empty(t, f.executor.setStates)
	require.Empty(t, f.executor.executions)
}

func testExecutionFailure(t *testing.T) {
	f := newRetrierFixture(t, failedInstance(7, STATE_ID_EXECUTING))
	cause := fmt.Errorf("scheduler stopped")
	f.executor.executeErr = cause

	err := f.retrier.Retry(context.Background(), 7)
	var execErr api.ExecutionError
	require.True(t, errors.As(err, &execErr))
	require.Equal(t, int64(7), execErr.FlowNodeInstanceID)
	require.True(t, errors.Is(err, cause))
}

func testUnknownPreviousState(t *testing.T) {
	f := newRetrierFixture(t, failedInstance(7, 4242))

	err := f.retrier.Retry(context.Background(), 7)
	var execErr api.ExecutionError
	require.True(t, errors.As(err, &execErr))
	require.Empty(t, f.connectors.resets)
	require.Empty(t, f.executor.setStates)
}

func testSecondRetry(t *testing.T) {
	f := newRetrierFixture(t, failedInstance(7, STATE_ID_EXECUTING))

	require.NoError(t, f.retrier.Retry(context.Background(), 7))
	err := f.retrier.Retry(context.Background(), 7)
	var invalid api.InvalidStateError
	require.True(t, errors.As(err, &invalid))
	require.Len(t, f.executor.executions, 1)
}
