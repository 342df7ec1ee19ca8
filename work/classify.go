package work

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

type Outcome int

const OUTCOME_SUCCESS Outcome = 1
const OUTCOME_RETRY Outcome = 2
const OUTCOME_FAIL Outcome = 3

func (o Outcome) String() string {
	switch o {
	case OUTCOME_SUCCESS:
		return "SUCCESS"
	case OUTCOME_RETRY:
		return "RETRY"
	case OUTCOME_FAIL:
		return "FAIL"
	}
	return "UNKNOWN"
}

type retryableError struct {
	cause error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.cause)
}

func (e *retryableError) Unwrap() error {
	return e.cause
}

// Retryable marks err as a transient failure. Wrapping a retryable error again
// keeps it retryable.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{cause: err}
}

func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

func Classify(err error) Outcome {
	if err == nil {
		return OUTCOME_SUCCESS
	}
	if IsRetryable(err) {
		return OUTCOME_RETRY
	}
	return OUTCOME_FAIL
}

// PanicError carries a value recovered from a panicking work.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("work panicked: %v", e.Value)
}

var ErrAttemptsExhausted = errors.New("work attempts exhausted")
