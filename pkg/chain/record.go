package chain

import (
	"encoding/json"
	"maps"
	"reflect"
)

// Record is the map form of a node's data: arbitrary payload fields plus
// the reserved "prev" and "next" neighbor identities.
type Record map[string]any

// Prev returns the declared predecessor identity, or nil.
func (r Record) Prev() any { return r[prevKey] }

// Next returns the declared successor identity, or nil.
func (r Record) Next() any { return r[nextKey] }

// Clone returns a shallow copy of r. A nil Record clones to an empty one.
func (r Record) Clone() Record {
	out := make(Record, len(r)+2)
	maps.Copy(out, r)
	return out
}

// storePayload keeps raw mappings as copied Records so later edits by the
// caller do not leak into the list.
func storePayload(payload any) any {
	switch p := payload.(type) {
	case Record:
		return p.Clone()
	case map[string]any:
		return Record(p).Clone()
	}
	return payload
}

// recordOf flattens a stored payload into a fresh Record without the
// internal identity key. Structs go through their JSON encoding; anything
// else lands under "value".
func recordOf(payload any) Record {
	if r, ok := payload.(Record); ok {
		out := r.Clone()
		delete(out, idKey)
		return out
	}

	rv := reflect.ValueOf(payload)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct || rv.Kind() == reflect.Map {
		if b, err := json.Marshal(payload); err == nil {
			out := make(Record)
			if json.Unmarshal(b, &out) == nil {
				delete(out, idKey)
				return out
			}
		}
	}
	return Record{valueKey: payload}
}
