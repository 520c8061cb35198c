package chain

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Reserved record keys.
const (
	idKey    = "_id"
	altIDKey = "id"
	prevKey  = "prev"
	nextKey  = "next"
	valueKey = "value"
)

// IdentityFunc derives the identity of a payload. It is called once, when
// the payload is inserted; the result is fixed for the node's lifetime.
type IdentityFunc[K comparable] func(payload any) (K, error)

// DefaultIdentity resolves an identity in this order:
//
//  1. a struct field tagged `json:"_id"`
//  2. a struct field tagged `json:"id"` or named ID
//  3. the "_id" entry, then the "id" entry, of a map[string]any or Record
//  4. the payload itself, when it is a K
//
// "_id" is the list's own reserved key: Import stamps it on every record it
// loads, so a payload taken from an imported node resolves to the same
// identity when inserted again.
//
// Numeric values convert between numeric kinds so ids decoded from JSON as
// float64 resolve to integer identities. A nil field falls through to the
// next rule.
func DefaultIdentity[K comparable](payload any) (K, error) {
	var zero K
	if payload == nil {
		return zero, fmt.Errorf("%w: nil payload", ErrInvalidIdentity)
	}

	candidates := make([]any, 0, 2)
	if v, ok := structField(payload, idKey); ok {
		candidates = append(candidates, v)
	}
	if v, ok := structField(payload, altIDKey); ok {
		candidates = append(candidates, v)
	}
	if m, ok := asMapping(payload); ok {
		candidates = append(candidates, m[idKey], m[altIDKey])
	}

	for _, v := range candidates {
		if v == nil {
			continue
		}
		k, ok := asIdentity[K](v)
		if !ok {
			return zero, fmt.Errorf("%w: %v (%T)", ErrInvalidIdentity, v, v)
		}
		return k, nil
	}

	if k, ok := asIdentity[K](payload); ok {
		return k, nil
	}
	return zero, fmt.Errorf("%w: %T", ErrInvalidIdentity, payload)
}

func asMapping(payload any) (map[string]any, bool) {
	switch p := payload.(type) {
	case Record:
		return p, true
	case map[string]any:
		return p, true
	}
	return nil, false
}

// structField finds an exported field by its JSON name. For "id" an
// untagged field named ID also matches.
func structField(payload any, name string) (any, bool) {
	rv := reflect.ValueOf(payload)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == name || (tag == "" && name == altIDKey && strings.EqualFold(f.Name, altIDKey)) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

// asIdentity converts v to K. It refuses values that cannot be map keys and
// fractional or negative floats headed for integer kinds.
func asIdentity[K comparable](v any) (K, bool) {
	var zero K
	if v == nil {
		return zero, false
	}
	if k, ok := v.(K); ok {
		return k, reflect.TypeOf(v).Comparable()
	}

	rv := reflect.ValueOf(v)
	kt := reflect.TypeFor[K]()
	if !isNumeric(rv.Kind()) || !isNumeric(kt.Kind()) {
		return zero, false
	}
	if isFloat(rv.Kind()) && !isFloat(kt.Kind()) {
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return zero, false
		}
		if f < 0 && isUnsigned(kt.Kind()) {
			return zero, false
		}
	}
	if isSigned(rv.Kind()) && rv.Int() < 0 && isUnsigned(kt.Kind()) {
		return zero, false
	}
	return rv.Convert(kt).Interface().(K), true
}

// usableKey reports whether k can be stored as a map key. Only interface
// key types can hold an incomparable dynamic value.
func usableKey[K comparable](k K) bool {
	if reflect.TypeFor[K]().Kind() != reflect.Interface {
		return true
	}
	t := reflect.TypeOf(any(k))
	return t != nil && t.Comparable()
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || isFloat(k)
}
