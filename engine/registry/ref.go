package registry

import "errors"

// Ref is a weak reference to an asset by name. It is resolved through a
// Lookup on every access and never owns the asset.
type Ref[T any] struct {
	name string
}

// RefTo returns a reference to a.
func RefTo[T Asset](a T) Ref[T] {
	return Ref[T]{name: a.Name()}
}

// RefNamed returns a reference to the asset registered under name.
func RefNamed[T any](name string) Ref[T] {
	return Ref[T]{name: name}
}

func (r Ref[T]) Name() string { return r.name }

// IsZero reports whether the reference points at nothing.
func (r Ref[T]) IsZero() bool { return r.name == "" }

// Resolve looks the referenced asset up.
func (r Ref[T]) Resolve(l Lookup) (T, error) {
	if r.name == "" {
		var zero T
		return zero, errors.New("empty asset reference")
	}
	return LookupAs[T](l, r.name)
}

// Is reports whether r points at a.
func (r Ref[T]) Is(a Asset) bool {
	return a != nil && a.Name() == r.name
}

func (r Ref[T]) MarshalText() ([]byte, error) {
	return []byte(r.name), nil
}

func (r *Ref[T]) UnmarshalText(text []byte) error {
	r.name = string(text)
	return nil
}
