package api_v1

import (
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

func localizedStatus(code codes.Code, msg string) *status.Status {
	st := status.New(code, msg)
	d := &errdetails.LocalizedMessage{
		Locale:  "en-US",
		Message: msg,
	}
	std, err := st.WithDetails(d)
	if err != nil {
		return st
	}
	return std
}

type NotFoundError struct {
	Entity string
	ID     string
	Cause  error
}

func (e NotFoundError) GRPCStatus() *status.Status {
	msg := fmt.Sprintf("%s %s not found", e.Entity, e.ID)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return localizedStatus(codes.NotFound, msg)
}

func (e NotFoundError) Error() string {
	return e.GRPCStatus().Err().Error()
}

func (e NotFoundError) Unwrap() error {
	return e.Cause
}

// InvalidStateError is returned when an operation requires the flow node to be
// in a state other than the one it is in.
type InvalidStateError struct {
	FlowNodeName       string
	FlowNodeInstanceID int64
	Expected           string
	Actual             string
}

func (e InvalidStateError) GRPCStatus() *status.Status {
	msg := fmt.Sprintf("flow node %s with id %d should be in state %s but is in state %s", e.FlowNodeName, e.FlowNodeInstanceID, e.Expected, e.Actual)
	return localizedStatus(codes.FailedPrecondition, msg)
}

func (e InvalidStateError) Error() string {
	return e.GRPCStatus().Err().Error()
}

type ExecutionError struct {
	FlowNodeInstanceID int64
	Cause              error
}

func (e ExecutionError) GRPCStatus() *status.Status {
	msg := fmt.Sprintf("error executing flow node %d", e.FlowNodeInstanceID)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return localizedStatus(codes.Internal, msg)
}

func (e ExecutionError) Error() string {
	return e.GRPCStatus().Err().Error()
}

func (e ExecutionError) Unwrap() error {
	return e.Cause
}

type UnknownCategoryError struct {
	FlowNodeType string
	Category     string
}

func (e UnknownCategoryError) GRPCStatus() *status.Status {
	msg := fmt.Sprintf("no state sequence defined for category %s", e.Category)
	if len(e.FlowNodeType) != 0 {
		msg = fmt.Sprintf("%s of flow node type %s", msg, e.FlowNodeType)
	}
	return localizedStatus(codes.InvalidArgument, msg)
}

func (e UnknownCategoryError) Error() string {
	return e.GRPCStatus().Err().Error()
}

type UnknownWorkTypeError struct {
	Type string
}

func (e UnknownWorkTypeError) GRPCStatus() *status.Status {
	return localizedStatus(codes.NotFound, fmt.Sprintf("no work registered for type %s", e.Type))
}

func (e UnknownWorkTypeError) Error() string {
	return e.GRPCStatus().Err().Error()
}
