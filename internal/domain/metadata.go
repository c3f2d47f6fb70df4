package domain

// Metadata accumulates MetadataEntry key/value pairs for one Record or Workout.
// A key seen once is a scalar; repeats turn it into an ordered list. An entry
// without a value attribute is kept as null, distinct from an empty string.
type Metadata struct {
	keys   []string
	values map[string][]*string
}

// NewMetadata constructs an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string][]*string)}
}

// Add records value under key. Entries without a key are dropped.
func (m *Metadata) Add(key, value *string) {
	if key == nil || *key == "" {
		return
	}
	existing, ok := m.values[*key]
	if !ok {
		m.keys = append(m.keys, *key)
	}
	m.values[*key] = append(existing, value)
}

// Len reports the number of distinct keys.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns keys in order of first appearance.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Value returns the *string or []*string stored under key. A nil *string
// marks an entry that had no value.
func (m *Metadata) Value(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	vals, ok := m.values[key]
	if !ok {
		return nil, false
	}
	if len(vals) == 1 {
		return vals[0], true
	}
	return append([]*string(nil), vals...), true
}

// MarshalJSON encodes the accumulated entries as an object with sorted keys.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, m.Len())
	for _, key := range m.Keys() {
		v, _ := m.Value(key)
		out[key] = v
	}
	return CanonicalJSON(out)
}
