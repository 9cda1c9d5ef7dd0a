// Package types holds small value types shared across every layer of the
// core (item, condition, device, pack, model, target, codegen) to avoid
// import cycles — the Go equivalent of the teacher's cross-cutting
// internal/types package, scoped down to what the RTE domain needs.
package types

import "strconv"

// AttributeMap is an ordered string->string map, matching spec §3.1's
// "ordered string->string attribute map". Insertion order is preserved so
// round-tripping through xmltree.Element is lossless.
type AttributeMap struct {
	keys   []string
	values map[string]string
}

// NewAttributeMap returns an empty ordered attribute map.
func NewAttributeMap() *AttributeMap {
	return &AttributeMap{values: make(map[string]string)}
}

// Get returns the value and presence of a key.
func (m *AttributeMap) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[name]
	return v, ok
}

// GetDefault returns the value or a fallback if absent.
func (m *AttributeMap) GetDefault(name, fallback string) string {
	if v, ok := m.Get(name); ok {
		return v
	}
	return fallback
}

// GetUint64 parses a well-known numeric attribute (spec §9, "Dynamic
// typing"): typed accessors parse on demand, no caching needed at this
// scale. Supports plain decimal and 0x-prefixed hex, as CMSIS attributes
// commonly encode sizes/addresses in hex.
func (m *AttributeMap) GetUint64(name string) (uint64, bool) {
	v, ok := m.Get(name)
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetBool parses "0"/"1"/"true"/"false"; CMSIS XML commonly uses "1"/"0".
func (m *AttributeMap) GetBool(name string) bool {
	v, ok := m.Get(name)
	if !ok {
		return false
	}
	switch v {
	case "1", "true", "True", "TRUE":
		return true
	default:
		return false
	}
}

// Set inserts or overwrites a key, optionally refusing to overwrite an
// existing value (spec §4.1 add_attribute(name, value, overwrite=true)).
func (m *AttributeMap) Set(name, value string, overwrite bool) {
	if _, exists := m.values[name]; exists {
		if !overwrite {
			return
		}
		m.values[name] = value
		return
	}
	m.keys = append(m.keys, name)
	m.values[name] = value
}

// Keys returns attribute names in insertion order.
func (m *AttributeMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len reports the number of attributes.
func (m *AttributeMap) Len() int { return len(m.keys) }

// Clone returns a deep (value) copy.
func (m *AttributeMap) Clone() *AttributeMap {
	out := NewAttributeMap()
	for _, k := range m.keys {
		out.Set(k, m.values[k], true)
	}
	return out
}

// Merge overlays other's keys on top of m, child-overrides-parent per the
// device-hierarchy inheritance rule of spec §3.4 (child attribute wins on
// equal key).
func (m *AttributeMap) Merge(other *AttributeMap) *AttributeMap {
	out := m.Clone()
	if other == nil {
		return out
	}
	for _, k := range other.keys {
		out.Set(k, other.values[k], true)
	}
	return out
}
