package work

import (
	"fmt"
	"sort"
	"sync"

	api "github.com/mohitkumar/flowrt/api/v1"
	"github.com/mohitkumar/flowrt/model"
)

type Factory func(descriptor model.WorkDescriptor) (Work, error)

// Registry maps work types to the factories building them.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register panics when the type is already registered.
func (r *Registry) Register(workType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[workType]; ok {
		panic(fmt.Sprintf("work type %s already registered", workType))
	}
	r.factories[workType] = factory
}

func (r *Registry) Create(descriptor model.WorkDescriptor) (Work, error) {
	r.mu.RLock()
	factory, ok := r.factories[descriptor.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, api.UnknownWorkTypeError{Type: descriptor.Type}
	}
	return factory(descriptor)
}

func (r *Registry) Has(workType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[workType]
	return ok
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
