// Package options holds the key/value bag shared between the argument
// parser and the routine of a single run.
package options

import (
	"fmt"
	"sort"
)

// Store is a loosely shaped option bag. Keys are chosen by the parser
// configuration; values are usually bool or string. It is not safe for
// concurrent use.
type Store struct {
	values map[string]any
}

// New returns an empty store.
func New() *Store {
	return &Store{values: map[string]any{}}
}

// Get returns the value stored under key and whether it was present.
func (s *Store) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value any) {
	if s.values == nil {
		s.values = map[string]any{}
	}
	s.values[key] = value
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Delete removes key.
func (s *Store) Delete(key string) {
	if s == nil {
		return
	}
	delete(s.values, key)
}

// String returns the value under key rendered as a string, or "" when absent.
func (s *Store) String(key string) string {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Bool reports whether key holds true or the string "true".
func (s *Store) Bool(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "true"
	}
	return false
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the stored values.
func (s *Store) Snapshot() map[string]any {
	out := make(map[string]any, len(s.Keys()))
	for _, k := range s.Keys() {
		out[k] = s.values[k]
	}
	return out
}

// Merge copies every entry of values into the store.
func (s *Store) Merge(values map[string]any) {
	for k, v := range values {
		s.Set(k, v)
	}
}
