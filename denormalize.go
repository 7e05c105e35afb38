package normalizr

import (
	"context"
)

type denormalizer struct {
	ctx   context.Context
	reg   *Registry
	store EntityStore
	// entities currently being expanded, keyed by type and id key
	expanding map[entityKey]struct{}
}

type entityKey struct {
	entity string
	id     string
}

func denormalize(ctx context.Context, nd NormalizedData, schema Schema, opt Options) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, wrapDenormalization(recoverInternal(r))
		}
	}()
	root, err := schema.Root()
	if err != nil {
		return nil, wrapDenormalization(err)
	}
	store := nd.Entities
	if store == nil {
		store = NewEntityStore()
	}
	d := &denormalizer{ctx: ctx, reg: opt.Registry, store: store, expanding: map[entityKey]struct{}{}}

	p := rootPath()
	if _, rootIsArray := root.Entity.(*ArraySchema); !rootIsArray {
		if arr, ok := asSlice(nd.Result); ok {
			res := make([]any, len(arr))
			for i, el := range arr {
				v, err := d.visit(p.Index(i), el, root.Entity)
				if err != nil {
					return nil, wrapDenormalization(err)
				}
				res[i] = v
			}
			return d.present(ctx, res, opt)
		}
	}
	res, err := d.visit(p, nd.Result, root.Entity)
	if err != nil {
		return nil, wrapDenormalization(err)
	}
	return d.present(ctx, res, opt)
}

func (d *denormalizer) present(ctx context.Context, v any, opt Options) (any, error) {
	if opt.PresentRedactor == nil {
		return v, nil
	}
	out, err := opt.PresentRedactor.Redact(ctx, v)
	if err != nil {
		return nil, wrapDenormalization(rootPath().Wrap(CodeInternal, err, "stage", "redact"))
	}
	return out, nil
}

func (d *denormalizer) visit(p *pathRef, v any, e SchemaEntity) (any, error) {
	switch s := e.(type) {
	case *ObjectSchema:
		return d.object(p, v, s)
	case *ArraySchema:
		return d.array(p, v, s)
	case *StringSchema:
		return checkPrimitive(p, v, s)
	case *NumberSchema:
		return checkPrimitive(p, v, s)
	case *BooleanSchema:
		return checkPrimitive(p, v, s)
	case *CustomSchema:
		return d.custom(p, v, s)
	case nil:
		return nil, p.Issue(CodeInvalidSchema, "reason", "missing schema entity")
	default:
		return nil, p.Issue(CodeInvalidSchema, "reason", "unsupported schema entity")
	}
}

func (d *denormalizer) object(p *pathRef, v any, s *ObjectSchema) (any, error) {
	// inline values are expanded in place without a store lookup
	if obj, ok := asObject(v); ok {
		return d.properties(p, obj, s)
	}
	id, ok := AsEntityID(v)
	if !ok {
		return nil, p.Issue(CodeInvalidReference, "entity", s.entityName(), "actual", typeName(v))
	}
	if s.Name == "" {
		return nil, p.Issue(CodeUnnamedEntity, "id", id.Value())
	}
	key := entityKey{entity: s.Name, id: id.Key()}
	if _, busy := d.expanding[key]; busy {
		return v, nil
	}
	rec, typeOK, idOK := d.store.Get(s.Name, id)
	if !typeOK || !idOK {
		return nil, p.Issue(CodeMissingEntity, "entity", s.Name, "id", id.Value(), "typePresent", typeOK)
	}
	obj, ok := asObject(rec)
	if !ok {
		return nil, p.Issue(CodeInvalidType, "expected", "object", "actual", typeName(rec), "entity", s.Name, "id", id.Value())
	}
	d.expanding[key] = struct{}{}
	defer delete(d.expanding, key)
	return d.properties(p, obj, s)
}

func (d *denormalizer) properties(p *pathRef, rec map[string]any, s *ObjectSchema) (map[string]any, error) {
	out := make(map[string]any, len(s.Properties))
	for _, prop := range s.Properties {
		pp := p.Field(prop.Name)
		val, present := rec[prop.Name]
		if !present || val == nil {
			if s.IsRequired(prop.Name) {
				return nil, pp.Issue(CodeRequired, "property", prop.Name, "entity", s.entityName())
			}
			if present {
				out[prop.Name] = nil
			}
			continue
		}
		// primitives are copied verbatim after re-validation
		if ps, ok := prop.Schema.(Primitive); ok {
			cp, err := checkPrimitive(pp, val, ps)
			if err != nil {
				return nil, err
			}
			out[prop.Name] = cp
			continue
		}
		res, err := d.visit(pp, val, prop.Schema)
		if err != nil {
			return nil, err
		}
		out[prop.Name] = res
	}
	return out, nil
}

func (d *denormalizer) array(p *pathRef, v any, s *ArraySchema) (any, error) {
	arr, ok := asSlice(v)
	if !ok {
		return nil, p.Issue(CodeInvalidType, "expected", "array", "actual", typeName(v))
	}
	out := make([]any, len(arr))
	for i, el := range arr {
		r, err := d.visit(p.Index(i), el, s.Items)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (d *denormalizer) custom(p *pathRef, v any, s *CustomSchema) (any, error) {
	if s.Name == "" {
		return nil, p.Issue(CodeInvalidSchema, "reason", "custom schema has no name")
	}
	h, ok := d.reg.Lookup(s.Name)
	if !ok {
		return nil, p.Issue(CodeUnknownHandler, "handler", s.Name)
	}
	// references are resolved; anything else is already materialized
	if isReference(v) {
		return callHandler(p, s, func() (any, error) { return h.Resolve(d.ctx, v, s, d.store) })
	}
	return callHandler(p, s, func() (any, error) { return h.Present(d.ctx, v, s) })
}
