package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Record is a flat key/value bag holding strings and string lists, the
// shape a platform saved-state bundle offers. It marshals to a flat JSON
// object.
type Record struct {
	strings map[string]string
	lists   map[string][]string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{
		strings: make(map[string]string),
		lists:   make(map[string][]string),
	}
}

// PutString stores a string value under key, replacing any list value.
func (r *Record) PutString(key, value string) {
	r.init()
	delete(r.lists, key)
	r.strings[key] = value
}

// PutStrings stores a copy of values under key, replacing any string value.
func (r *Record) PutStrings(key string, values []string) {
	r.init()
	delete(r.strings, key)
	r.lists[key] = append([]string{}, values...)
}

// GetString returns the string stored under key.
func (r *Record) GetString(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.strings[key]
	return v, ok
}

// GetStrings returns the list stored under key.
func (r *Record) GetStrings(key string) ([]string, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.lists[key]
	return v, ok
}

// Has reports whether key holds any value.
func (r *Record) Has(key string) bool {
	_, s := r.GetString(key)
	_, l := r.GetStrings(key)
	return s || l
}

// Keys returns all keys in sorted order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.strings)+len(r.lists))
	for k := range r.strings {
		keys = append(keys, k)
	}
	for k := range r.lists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.strings) + len(r.lists)
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := NewRecord()
	if r == nil {
		return c
	}
	for k, v := range r.strings {
		c.strings[k] = v
	}
	for k, v := range r.lists {
		c.lists[k] = append([]string{}, v...)
	}
	return c
}

func (r *Record) init() {
	if r.strings == nil {
		r.strings = make(map[string]string)
	}
	if r.lists == nil {
		r.lists = make(map[string][]string)
	}
}

// MarshalJSON encodes the record as a flat object.
func (r *Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, r.Len())
	if r != nil {
		for k, v := range r.strings {
			flat[k] = v
		}
		for k, v := range r.lists {
			flat[k] = v
		}
	}
	return json.Marshal(flat)
}

// UnmarshalJSON decodes a flat object whose values are strings or arrays
// of strings. Any other value type is rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	r.strings = make(map[string]string)
	r.lists = make(map[string][]string)
	for k, raw := range flat {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			var list []string
			if err := json.Unmarshal(raw, &list); err != nil {
				return fmt.Errorf("record key %q: %w", k, err)
			}
			if list == nil {
				list = []string{}
			}
			r.lists[k] = list
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("record key %q: expected string or string list", k)
		}
		r.strings[k] = s
	}
	return nil
}
