package toolhandler

import (
	"context"
	"fmt"
)

// ToolHandler is one operation in the closed tool set: a schema plus an
// invocation. Arguments arrive as decoded JSON and are validated before any
// remote call.
type ToolHandler interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// Registry dispatches invocations by tool name.
type Registry struct {
	handlers map[string]ToolHandler
	order    []string
}

func (r *Registry) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.handlers[name].Spec())
	}
	return specs
}

func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return handler.Invoke(ctx, args)
}

func NewRegistry(handlers ...ToolHandler) *Registry {
	r := &Registry{
		handlers: map[string]ToolHandler{},
	}
	for _, handler := range handlers {
		name := handler.Spec().Name
		if _, exists := r.handlers[name]; exists {
			continue
		}
		r.handlers[name] = handler
		r.order = append(r.order, name)
	}
	return r
}
