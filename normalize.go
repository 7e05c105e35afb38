package normalizr

import (
	"context"
)

type normalizer struct {
	ctx   context.Context
	reg   *Registry
	store EntityStore
	// maps and struct pointers currently being walked; re-entering one
	// emits its id
	walking map[uintptr]struct{}
}

func normalize(ctx context.Context, data any, schema Schema, opt Options) (nd NormalizedData, err error) {
	defer func() {
		if r := recover(); r != nil {
			nd, err = NormalizedData{}, wrapNormalization(recoverInternal(r))
		}
	}()
	if !opt.SkipValidation {
		if err := opt.Validator.Validate(schema); err != nil {
			return NormalizedData{}, wrapNormalization(err)
		}
	}
	if opt.Redactor != nil {
		if data, err = opt.Redactor.Redact(ctx, data); err != nil {
			return NormalizedData{}, wrapNormalization(rootPath().Wrap(CodeInternal, err, "stage", "redact"))
		}
	}
	if _, ok := asObject(data); !ok {
		if _, ok := asSlice(data); !ok {
			return NormalizedData{}, wrapNormalization(rootPath().Issue(CodeInvalidInput, "actual", typeName(data)))
		}
	}
	root, err := schema.Root()
	if err != nil {
		return NormalizedData{}, wrapNormalization(err)
	}
	n := &normalizer{ctx: ctx, reg: opt.Registry, store: NewEntityStore(), walking: map[uintptr]struct{}{}}
	res, err := n.visit(rootPath(), data, root.Entity)
	if err != nil {
		return NormalizedData{}, wrapNormalization(err)
	}
	return NormalizedData{Entities: n.store, Result: res}, nil
}

func (n *normalizer) visit(p *pathRef, v any, e SchemaEntity) (any, error) {
	switch s := e.(type) {
	case *ObjectSchema:
		return n.object(p, v, s)
	case *ArraySchema:
		return n.array(p, v, s)
	case *StringSchema:
		return checkPrimitive(p, v, s)
	case *NumberSchema:
		return checkPrimitive(p, v, s)
	case *BooleanSchema:
		return checkPrimitive(p, v, s)
	case *CustomSchema:
		return n.custom(p, v, s)
	case nil:
		return nil, p.Issue(CodeInvalidSchema, "reason", "missing schema entity")
	default:
		return nil, p.Issue(CodeInvalidSchema, "reason", "unsupported schema entity")
	}
}

func (n *normalizer) object(p *pathRef, v any, s *ObjectSchema) (any, error) {
	obj, ok := asObject(v)
	if !ok {
		// an id in place of an identified object is an existing reference
		if id, isID := AsEntityID(v); isID && s.Name != "" && !inlineOnly(s) {
			return id.Value(), nil
		}
		return nil, p.Issue(CodeInvalidType, "expected", "object", "actual", typeName(v), "entity", s.entityName())
	}
	addr := identityOf(v)
	_, busy := n.walking[addr]
	id, identified, err := s.identity().Identify(obj)
	if err != nil {
		return nil, p.Wrap(CodeInvalidReference, err, "entity", s.entityName())
	}
	if identified && s.Name == "" {
		return nil, p.Issue(CodeUnnamedEntity, "id", id.Value())
	}
	if busy {
		if !identified {
			// no id to refer back with
			return nil, p.Issue(CodeInvalidInput, "reason", "cyclic inline value", "entity", s.entityName())
		}
		return id.Value(), nil
	}
	if addr != 0 {
		n.walking[addr] = struct{}{}
		defer delete(n.walking, addr)
	}
	if !identified {
		return n.properties(p, obj, s)
	}
	rec, err := n.properties(p, obj, s)
	if err != nil {
		return nil, err
	}
	n.store.Set(s.Name, id, rec)
	return id.Value(), nil
}

func inlineOnly(s *ObjectSchema) bool {
	_, ok := s.Identity.(noIdentity)
	return ok
}

func (n *normalizer) properties(p *pathRef, obj map[string]any, s *ObjectSchema) (map[string]any, error) {
	rec := make(map[string]any, len(s.Properties))
	for _, prop := range s.Properties {
		pp := p.Field(prop.Name)
		val, present := obj[prop.Name]
		if !present || val == nil {
			if s.IsRequired(prop.Name) {
				return nil, pp.Issue(CodeRequired, "property", prop.Name, "entity", s.entityName())
			}
			if present {
				rec[prop.Name] = nil
			}
			continue
		}
		out, err := n.visit(pp, val, prop.Schema)
		if err != nil {
			return nil, err
		}
		rec[prop.Name] = out
	}
	return rec, nil
}

func (n *normalizer) array(p *pathRef, v any, s *ArraySchema) (any, error) {
	arr, ok := asSlice(v)
	if !ok {
		return nil, p.Issue(CodeInvalidType, "expected", "array", "actual", typeName(v))
	}
	out := make([]any, len(arr))
	for i, el := range arr {
		ip := p.Index(i)
		r, err := n.visit(ip, el, s.Items)
		if err != nil {
			return nil, err
		}
		// the array slot only holds a flat list of references
		if _, ok := AsEntityID(r); !ok {
			return nil, ip.Issue(CodeInvalidReference, "index", i, "actual", typeName(r))
		}
		out[i] = r
	}
	return out, nil
}

func (n *normalizer) custom(p *pathRef, v any, s *CustomSchema) (any, error) {
	if s.Name == "" {
		return nil, p.Issue(CodeInvalidSchema, "reason", "custom schema has no name")
	}
	h, ok := n.reg.Lookup(s.Name)
	if !ok {
		return nil, p.Issue(CodeUnknownHandler, "handler", s.Name)
	}
	res, err := callHandler(p, s, func() (any, error) { return h.Normalize(n.ctx, v, s, n.store) })
	if err != nil {
		return nil, err
	}
	if arr, isArr := asSlice(v); isArr {
		ids, ok := asSlice(res)
		if !ok {
			return nil, contractIssue(p, s, "array input must yield an array of entity ids", res)
		}
		if len(ids) != len(arr) {
			return nil, contractIssue(p, s, "array input must yield one entity id per element", res, "want", len(arr), "got", len(ids))
		}
		out := make([]any, len(ids))
		for i, raw := range ids {
			id, ok := AsEntityID(raw)
			if !ok {
				return nil, contractIssue(p.Index(i), s, "every element must be an entity id", raw, "index", i)
			}
			n.store.Set(s.Name, id, arr[i])
			out[i] = id.Value()
		}
		return out, nil
	}
	if _, isArr := asSlice(res); isArr {
		return nil, contractIssue(p, s, "non-array input must yield exactly one entity id", res)
	}
	id, ok := AsEntityID(res)
	if !ok {
		return nil, contractIssue(p, s, "non-array input must yield an entity id", res)
	}
	n.store.Set(s.Name, id, v)
	return id.Value(), nil
}

func contractIssue(p *pathRef, s *CustomSchema, contract string, got any, kv ...any) *Issue {
	it := p.Issue(CodeCustomHandler, append([]any{"handler", s.Name, "contract", contract, "actual", typeName(got)}, kv...)...)
	it.Message = it.Message + ": " + contract
	return it
}

// callHandler runs user code; returned errors and panics become handler issues.
func callHandler(p *pathRef, s *CustomSchema, fn func() (any, error)) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, p.Wrap(CodeCustomHandler, recoverInternal(r), "handler", s.Name, "panic", true)
		}
	}()
	res, err = fn()
	if err != nil {
		return nil, p.Wrap(CodeCustomHandler, err, "handler", s.Name)
	}
	return res, nil
}
