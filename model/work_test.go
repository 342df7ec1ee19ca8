package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkDescriptor(t *testing.T) {
	d := NewWorkDescriptor("script",
		Parameter{Name: "script", Value: "return 1"},
		Parameter{Name: "count", Value: 3},
		Parameter{Name: "script", Value: "return 2"},
	)
	require.NotEmpty(t, d.ID)
	require.Equal(t, []string{"script", "count"}, d.Names())

	s, err := d.String("script")
	require.NoError(t, err)
	require.Equal(t, "return 2", s)

	n, err := d.Int64("count")
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	_, err = d.String("count")
	require.Error(t, err)
	_, err = d.Int64("missing")
	require.Error(t, err)

	d2 := d.With("count", float64(7))
	n, err = d2.Int64("count")
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	n, err = d.Int64("count")
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, d.ID, d2.ID)

	m, err := d.Map("input")
	require.NoError(t, err)
	require.Empty(t, m)
}

func TestWorkRecordJson(t *testing.T) {
	rec := NewWorkRecord(NewWorkDescriptor("noop", Parameter{Name: "flowNodeInstanceId", Value: 12}))
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded WorkRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, rec.InvocationID, decoded.InvocationID)
	require.Equal(t, rec.Descriptor.Type, decoded.Descriptor.Type)

	id, err := decoded.Descriptor.Int64("flowNodeInstanceId")
	require.NoError(t, err)
	require.Equal(t, int64(12), id)
}
