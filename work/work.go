package work

import (
	"context"
	"sync"

	"github.com/mohitkumar/flowrt/model"
)

// Work is one executable unit built from a WorkDescriptor.
type Work interface {
	Describe() string
	Execute(ctx context.Context, wc *Context) error
	// OnFailure is called once when the work failed for good.
	OnFailure(ctx context.Context, wc *Context, cause error) error
}

// Context is handed to every attempt of one invocation. Values set by an
// attempt are visible to the following attempts and to OnFailure.
type Context struct {
	Descriptor   model.WorkDescriptor
	InvocationID string
	Attempt      int

	mu     sync.Mutex
	values map[string]any
}

func NewContext(invocationID string, descriptor model.WorkDescriptor) *Context {
	return &Context{
		Descriptor:   descriptor,
		InvocationID: invocationID,
		values:       make(map[string]any),
	}
}

func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}
