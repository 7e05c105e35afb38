package normalizr

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// CustomHandler handles a schema node type the built-in variants cannot express.
//
// Normalize assigns identity: it returns one EntityID-shaped value for a scalar
// or object input, and a []any of EntityIDs of the same length for an array
// input. The engine, not the handler, stores the original value(s).
//
// Denormalization is split in two explicit entry points: Resolve reconstructs
// from a reference (an EntityID or a slice of them) and Present passes through a
// value that is already materialized.
type CustomHandler interface {
	Normalize(ctx context.Context, value any, node *CustomSchema, store EntityStore) (any, error)
	Resolve(ctx context.Context, ref any, node *CustomSchema, store EntityStore) (any, error)
	Present(ctx context.Context, value any, node *CustomSchema) (any, error)
}

// HandlerFuncs adapts plain functions to CustomHandler. A nil ResolveFunc reads
// back the originals the engine stored; a nil PresentFunc returns the value
// unchanged.
type HandlerFuncs struct {
	NormalizeFunc func(ctx context.Context, value any, node *CustomSchema, store EntityStore) (any, error)
	ResolveFunc   func(ctx context.Context, ref any, node *CustomSchema, store EntityStore) (any, error)
	PresentFunc   func(ctx context.Context, value any, node *CustomSchema) (any, error)
}

func (h HandlerFuncs) Normalize(ctx context.Context, value any, node *CustomSchema, store EntityStore) (any, error) {
	if h.NormalizeFunc == nil {
		return nil, errors.New("normalize not implemented")
	}
	return h.NormalizeFunc(ctx, value, node, store)
}

func (h HandlerFuncs) Resolve(ctx context.Context, ref any, node *CustomSchema, store EntityStore) (any, error) {
	if h.ResolveFunc == nil {
		return ResolveStored(ctx, ref, node, store)
	}
	return h.ResolveFunc(ctx, ref, node, store)
}

func (h HandlerFuncs) Present(ctx context.Context, value any, node *CustomSchema) (any, error) {
	if h.PresentFunc == nil {
		return value, nil
	}
	return h.PresentFunc(ctx, value, node)
}

// ResolveStored returns the original value(s) stored under node.Name for ref.
func ResolveStored(_ context.Context, ref any, node *CustomSchema, store EntityStore) (any, error) {
	if arr, ok := asSlice(ref); ok {
		out := make([]any, len(arr))
		for i, r := range arr {
			v, err := lookupStored(r, node, store)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return lookupStored(ref, node, store)
}

func lookupStored(ref any, node *CustomSchema, store EntityStore) (any, error) {
	id, ok := AsEntityID(ref)
	if !ok {
		return nil, rootPath().Issue(CodeInvalidReference, "entity", node.Name, "value", ref)
	}
	v, typeOK, idOK := store.Get(node.Name, id)
	if !typeOK || !idOK {
		return nil, rootPath().Issue(CodeMissingEntity, "entity", node.Name, "id", id.Value())
	}
	return v, nil
}

// Registry maps custom type names to handlers. Instances are passed to each
// call through Options.Registry.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]CustomHandler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]CustomHandler)}
}

// Register associates name with h, replacing any previous handler.
func (r *Registry) Register(name string, h CustomHandler) error {
	if name == "" {
		return errors.New("normalizr: custom handler name is empty")
	}
	if h == nil {
		return errors.New("normalizr: custom handler is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = make(map[string]CustomHandler)
	}
	r.handlers[name] = h
	return nil
}

// Lookup returns the handler registered as name.
func (r *Registry) Lookup(name string) (CustomHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Clear removes every handler.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.handlers = make(map[string]CustomHandler)
	r.mu.Unlock()
}

// Names lists registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var defaultRegistry = NewRegistry()

// DefaultRegistry is used when Options.Registry is nil.
func DefaultRegistry() *Registry { return defaultRegistry }

// RegisterCustomSchemaHandler registers h on the default registry.
func RegisterCustomSchemaHandler(name string, h CustomHandler) error {
	return defaultRegistry.Register(name, h)
}

// ClearCustomSchemaHandlers empties the default registry.
func ClearCustomSchemaHandlers() { defaultRegistry.Clear() }
