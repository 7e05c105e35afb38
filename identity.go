package normalizr

import "fmt"

// Identity decides whether an object is an entity and extracts its id.
// ok=false means the object is an inline value and is not stored.
type Identity interface {
	Identify(obj map[string]any) (id EntityID, ok bool, err error)
	// Describe returns a stable textual form used in schema fingerprints and documents.
	Describe() string
}

// ByField identifies objects by the value of a property. An absent or null
// property means "no identity"; a present value that is not a string or an
// integer is an error.
func ByField(name string) Identity { return fieldIdentity(name) }

// NoIdentity marks an object schema as inline-only.
func NoIdentity() Identity { return noIdentity{} }

type fieldIdentity string

func (f fieldIdentity) Identify(obj map[string]any) (EntityID, bool, error) {
	v, ok := obj[string(f)]
	if !ok || v == nil {
		return EntityID{}, false, nil
	}
	id, ok := AsEntityID(v)
	if !ok {
		return EntityID{}, false, fmt.Errorf("identity field %q holds %s, want string or integer", string(f), typeName(v))
	}
	return id, true, nil
}

func (f fieldIdentity) Describe() string { return "field:" + string(f) }

type noIdentity struct{}

func (noIdentity) Identify(map[string]any) (EntityID, bool, error) { return EntityID{}, false, nil }
func (noIdentity) Describe() string                                { return "none" }

// IdentityFunc adapts a function to Identity.
type IdentityFunc func(obj map[string]any) (EntityID, bool, error)

func (f IdentityFunc) Identify(obj map[string]any) (EntityID, bool, error) { return f(obj) }

// Describe cannot distinguish two functions; schemas that differ only by an
// IdentityFunc share a fingerprint.
func (f IdentityFunc) Describe() string { return "func" }
