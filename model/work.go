package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Parameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// WorkDescriptor names a unit of work and carries the parameters it needs.
// It is a value: every modification returns a copy.
type WorkDescriptor struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Parameters []Parameter `json:"parameters"`
}

func NewWorkDescriptor(workType string, params ...Parameter) WorkDescriptor {
	return WorkDescriptor{
		ID:         uuid.New().String(),
		Type:       workType,
		Parameters: dedupParameters(params),
	}
}

func dedupParameters(params []Parameter) []Parameter {
	out := make([]Parameter, 0, len(params))
	index := make(map[string]int, len(params))
	for _, p := range params {
		if i, ok := index[p.Name]; ok {
			out[i].Value = p.Value
			continue
		}
		index[p.Name] = len(out)
		out = append(out, p)
	}
	return out
}

func (d WorkDescriptor) With(name string, value any) WorkDescriptor {
	params := make([]Parameter, len(d.Parameters), len(d.Parameters)+1)
	copy(params, d.Parameters)
	params = append(params, Parameter{Name: name, Value: value})
	return WorkDescriptor{
		ID:         d.ID,
		Type:       d.Type,
		Parameters: dedupParameters(params),
	}
}

func (d WorkDescriptor) Parameter(name string) (any, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

func (d WorkDescriptor) Names() []string {
	names := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		names = append(names, p.Name)
	}
	return names
}

func (d WorkDescriptor) String(name string) (string, error) {
	v, ok := d.Parameter(name)
	if !ok {
		return "", fmt.Errorf("parameter %s not found in work %s", name, d.Type)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s of work %s is not a string", name, d.Type)
	}
	return s, nil
}

func (d WorkDescriptor) Int64(name string) (int64, error) {
	v, ok := d.Parameter(name)
	if !ok {
		return 0, fmt.Errorf("parameter %s not found in work %s", name, d.Type)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("parameter %s of work %s is not a number", name, d.Type)
}

func (d WorkDescriptor) Map(name string) (map[string]any, error) {
	v, ok := d.Parameter(name)
	if !ok {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parameter %s of work %s is not an object", name, d.Type)
	}
	return m, nil
}

// WorkRecord is the durable form of one scheduled invocation of a descriptor.
type WorkRecord struct {
	InvocationID  string         `json:"invocationId"`
	Descriptor    WorkDescriptor `json:"descriptor"`
	Partition     int            `json:"partition"`
	Attempt       int            `json:"attempt"`
	NextAttemptAt time.Time      `json:"nextAttemptAt"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func NewWorkRecord(descriptor WorkDescriptor) WorkRecord {
	now := time.Now()
	return WorkRecord{
		InvocationID:  uuid.New().String(),
		Descriptor:    descriptor,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
