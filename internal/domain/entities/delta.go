package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// FieldDelta is the [old, new] pair of one versioned field.
type FieldDelta struct {
	Name string
	Old  any
	New  any
}

// Changed reports whether the two sides differ. Typed and untyped nils are
// treated as equal.
func (f FieldDelta) Changed() bool {
	if isNil(f.Old) && isNil(f.New) {
		return false
	}
	return !reflect.DeepEqual(f.Old, f.New)
}

// Delta is a total, ordered field-by-field comparison of two snapshots.
type Delta struct {
	Fields []FieldDelta
}

// Get returns the pair for a field name.
func (d Delta) Get(name string) (FieldDelta, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDelta{}, false
}

// Changed returns the names of fields whose sides differ.
func (d Delta) Changed() []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.Changed() {
			names = append(names, f.Name)
		}
	}
	return names
}

// MarshalJSON encodes the delta as {"field": [old, new], ...} in field order.
func (d Delta) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		pair, err := json.Marshal([2]any{f.Old, f.New})
		if err != nil {
			return nil, fmt.Errorf("marshaling field %s: %w", f.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(pair)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
