package normalizr

import "sort"

// EntityStore maps entity type name -> id key -> normalized value.
type EntityStore map[string]map[string]any

// NewEntityStore returns an empty store.
func NewEntityStore() EntityStore { return EntityStore{} }

// Set writes the canonical value for (entity, id). Later writes for the same
// pair replace earlier ones; fields are never merged.
func (s EntityStore) Set(entity string, id EntityID, v any) {
	part, ok := s[entity]
	if !ok {
		part = map[string]any{}
		s[entity] = part
	}
	part[id.Key()] = v
}

// Get returns the stored value. typeOK reports whether the partition exists.
func (s EntityStore) Get(entity string, id EntityID) (v any, typeOK, idOK bool) {
	part, ok := s[entity]
	if !ok {
		return nil, false, false
	}
	v, idOK = part[id.Key()]
	return v, true, idOK
}

// Types lists partition names in ascending order.
func (s EntityStore) Types() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len counts stored entities across all partitions.
func (s EntityStore) Len() int {
	n := 0
	for _, part := range s {
		n += len(part)
	}
	return n
}
