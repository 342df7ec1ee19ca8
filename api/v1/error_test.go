package api_v1

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorStatus(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	for name, tc := range map[string]struct {
		err  error
		code codes.Code
	}{
		"not found":         {NotFoundError{Entity: "flow node", ID: "7", Cause: cause}, codes.NotFound},
		"invalid state":     {InvalidStateError{FlowNodeName: "step1", FlowNodeInstanceID: 7, Expected: "failed", Actual: "executing"}, codes.FailedPrecondition},
		"execution":         {ExecutionError{FlowNodeInstanceID: 7, Cause: cause}, codes.Internal},
		"unknown category":  {UnknownCategoryError{Category: "ABORTING"}, codes.InvalidArgument},
		"unknown work type": {UnknownWorkTypeError{Type: "mail"}, codes.NotFound},
	} {
		t.Run(name, func(t *testing.T) {
			st, ok := status.FromError(tc.err)
			require.True(t, ok)
			require.Equal(t, tc.code, st.Code())
			require.Len(t, st.Details(), 1)
			_, ok = st.Details()[0].(*errdetails.LocalizedMessage)
			require.True(t, ok)
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := errors.Wrap(ExecutionError{FlowNodeInstanceID: 3, Cause: cause}, "retry")
	require.True(t, errors.Is(err, cause))

	var execErr ExecutionError
	require.True(t, errors.As(err, &execErr))
	require.Equal(t, int64(3), execErr.FlowNodeInstanceID)

	msg := InvalidStateError{FlowNodeName: "step1", FlowNodeInstanceID: 7, Expected: "failed", Actual: "executing"}.Error()
	require.Contains(t, msg, "step1")
	require.Contains(t, msg, "7")
	require.Contains(t, msg, "executing")
}
