package types

import (
	"sort"
	"strings"
)

// Section is one flat configuration section: option name to value.
// Part options handed to a recipe use the same shape.
type Section map[string]string

// Get returns the value for key and whether it was present.
func (s Section) Get(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// GetDefault returns the value for key, or def when the key is absent.
func (s Section) GetDefault(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// Clone returns an independent copy. A nil section clones to an empty one.
func (s Section) Clone() Section {
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the option names in sorted order.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List splits a multi-value option on whitespace, the way buildout
// reads options such as "parts".
func (s Section) List(key string) []string {
	return strings.Fields(s[key])
}
