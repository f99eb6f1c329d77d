package domain

// RawRecord is an ordered field-name → value mapping decoded from one source
// row or object. Field order follows the source file, which matters for
// positional diagnostics and for preserving the first-header BOM quirk.
type RawRecord struct {
	keys   []string
	values map[string]string
}

// NewRawRecord returns an empty record.
func NewRawRecord() *RawRecord {
	return &RawRecord{values: make(map[string]string)}
}

// Set stores value under key, keeping first-seen key order. Setting an
// existing key overwrites its value without changing its position.
func (r *RawRecord) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether it was present.
func (r *RawRecord) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in source order.
func (r *RawRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *RawRecord) Len() int { return len(r.keys) }

// Empty reports whether every value is blank.
func (r *RawRecord) Empty() bool {
	for _, k := range r.keys {
		if r.values[k] != "" {
			return false
		}
	}
	return true
}
