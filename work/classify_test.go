package work

import (
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	api "github.com/mohitkumar/flowrt/api/v1"
	"github.com/mohitkumar/flowrt/model"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	require.Equal(t, OUTCOME_SUCCESS, Classify(nil))
	require.Equal(t, OUTCOME_FAIL, Classify(cause))
	require.Equal(t, OUTCOME_RETRY, Classify(Retryable(cause)))
	require.Equal(t, OUTCOME_RETRY, Classify(errors.Wrap(Retryable(cause), "calling service")))
	require.Equal(t, OUTCOME_FAIL, Classify(PanicError{Value: "x"}))
	require.True(t, errors.Is(Retryable(cause), cause))
	require.Nil(t, Retryable(nil))
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	for name, tc := range map[string]struct {
		policy  BackoffPolicy
		attempt int
		max     time.Duration
		want    time.Duration
	}{
		"fixed first":           {BACKOFF_FIXED, 1, 0, base},
		"fixed tenth":           {BACKOFF_FIXED, 10, 0, base},
		"exponential first":     {BACKOFF_EXPONENTIAL, 1, 0, base},
		"exponential third":     {BACKOFF_EXPONENTIAL, 3, 0, 4 * base},
		"exponential capped":    {BACKOFF_EXPONENTIAL, 10, time.Second, time.Second},
		"exponential under cap": {BACKOFF_EXPONENTIAL, 2, time.Second, 2 * base},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.policy.Delay(base, tc.attempt, tc.max))
		})
	}
	require.Equal(t, BACKOFF_EXPONENTIAL, ToBackoffPolicy("exponential"))
	require.Equal(t, BACKOFF_FIXED, ToBackoffPolicy("whatever"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	factory := func(model.WorkDescriptor) (Work, error) { return &funcWork{}, nil }
	r.Register("b", factory)
	r.Register("a", factory)
	require.Panics(t, func() { r.Register("a", factory) })
	require.Equal(t, []string{"a", "b"}, r.Types())
	require.True(t, r.Has("a"))
	require.False(t, r.Has("c"))

	_, err := r.Create(model.NewWorkDescriptor("c"))
	var unknown api.UnknownWorkTypeError
	require.True(t, errors.As(err, &unknown))

	w, err := r.Create(model.NewWorkDescriptor("a"))
	require.NoError(t, err)
	require.Equal(t, "func", w.Describe())
}
