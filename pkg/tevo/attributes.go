package tevo

import (
	"bytes"
	"encoding/json"
)

// Attributes is an insertion-ordered bag of extra endpoint options.
type Attributes struct {
	keys   []string
	values map[string]interface{}
}

// NewAttributes creates a bag from alternating key/value pairs. A trailing key
// without a value is stored as nil.
func NewAttributes(pairs ...interface{}) *Attributes {
	attrs := &Attributes{values: make(map[string]interface{})}

	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}

		var value interface{}
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}

		attrs.Set(key, value)
	}

	return attrs
}

// Get returns the value stored under key.
func (a *Attributes) Get(key string) (interface{}, bool) {
	if a == nil {
		return nil, false
	}

	value, ok := a.values[key]

	return value, ok
}

// Set stores value under key, keeping the original position of existing keys.
func (a *Attributes) Set(key string, value interface{}) {
	if a.values == nil {
		a.values = make(map[string]interface{})
	}

	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}

	a.values[key] = value
}

// Keys returns the keys in insertion order.
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}

	keys := make([]string, len(a.keys))
	copy(keys, a.keys)

	return keys
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}

	return len(a.keys)
}

// Clone returns a shallow copy.
func (a *Attributes) Clone() *Attributes {
	clone := &Attributes{values: make(map[string]interface{}, a.Len())}

	for _, key := range a.Keys() {
		clone.Set(key, a.values[key])
	}

	return clone
}

// MarshalJSON writes the attributes as an object in insertion order.
func (a *Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range a.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		encodedValue, err := json.Marshal(a.values[key])
		if err != nil {
			return nil, err
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
