// Package tools holds the tool catalog and the registry that maps tool names
// to their handlers.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

// HandlerFunc executes one tool call. The returned value must be JSON
// serializable.
type HandlerFunc func(ctx context.Context, args domain.Arguments) (any, error)

type entry struct {
	descriptor domain.ToolDescriptor
	handler    HandlerFunc
}

// Registry stores tool handlers keyed by tool name. Descriptors are listed in
// registration order.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds a handler for a descriptor.
func (r *Registry) Register(desc domain.ToolDescriptor, handler HandlerFunc) error {
	if desc.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if handler == nil {
		return fmt.Errorf("handler is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[desc.Name]; exists {
		return fmt.Errorf("handler already registered for %s", desc.Name)
	}
	r.entries[desc.Name] = entry{descriptor: desc, handler: handler}
	r.order = append(r.order, desc.Name)
	return nil
}

// MustRegister adds a handler or panics.
func (r *Registry) MustRegister(desc domain.ToolDescriptor, handler HandlerFunc) {
	if err := r.Register(desc, handler); err != nil {
		panic(err)
	}
}

// Lookup returns the handler for name.
func (r *Registry) Lookup(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.handler, ok
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []domain.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].descriptor)
	}
	return out
}
