package reflector

import (
	"reflect"
	"strings"
)

// Key is an opaque identity token for a concrete Go type. Keys are
// comparable and can be used as map keys: two keys are equal exactly when
// they were derived from the same type. Unlike [TypeInfo], a Key never
// unwraps pointers, so T and *T yield different keys.
type Key struct {
	t reflect.Type
}

// KeyFor returns the Key of type parameter T.
func KeyFor[T any]() Key {
	return Key{t: reflect.TypeFor[T]()}
}

// KeyOf returns the Key of the dynamic type of x. A nil interface yields the
// zero Key.
func KeyOf(x any) Key {
	return Key{t: reflect.TypeOf(x)}
}

// IsZero reports whether k was derived from no type.
func (k Key) IsZero() bool { return k.t == nil }

// Type returns the reflect.Type the key was derived from.
func (k Key) Type() reflect.Type { return k.t }

// String returns a readable, fully qualified name, suitable for logs and
// metric labels. Distinct types may share a String (e.g. two unexported
// types declared inside different functions); use Key equality for identity.
func (k Key) String() string {
	if k.t == nil {
		return "<nil>"
	}
	prefix := ""
	t := k.t
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		prefix += "*"
		t = t.Elem()
	}
	return prefix + qualifiedName(t)
}

// Compare orders keys by their qualified name, then by the reflect string
// form. It returns 0 only for equal keys.
func (k Key) Compare(other Key) int {
	if k == other {
		return 0
	}
	if c := strings.Compare(k.String(), other.String()); c != 0 {
		return c
	}
	var a, b string
	if k.t != nil {
		a = k.t.String()
	}
	if other.t != nil {
		b = other.t.String()
	}
	if c := strings.Compare(a, b); c != 0 {
		return c
	}
	// Same names, different types: fall back to a stable per-process order.
	if reflect.ValueOf(k.t).Pointer() < reflect.ValueOf(other.t).Pointer() {
		return -1
	}
	return 1
}

// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool { return k.Compare(other) < 0 }
