package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKeyNotFound is matched by every *KeyError via errors.Is.
var ErrKeyNotFound = errors.New("key not found")

// KeyError reports a path segment that could not be resolved while walking a
// nested map. Path holds the full path that was requested.
type KeyError struct {
	Key  string
	Path []string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %q not found (path: %s)", e.Key, strings.Join(e.Path, "."))
}

// Is lets callers test for ErrKeyNotFound without caring about the key.
func (e *KeyError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// AccessNestedMap walks nestedMap along path and returns the value found at
// the end of it.
//
// Every intermediate value must itself be a map; if it is not, or if a key is
// absent, a *KeyError naming the offending key is returned. An empty path
// returns nestedMap unchanged.
//
// Example:
//
//	AccessNestedMap(map[string]any{"a": map[string]any{"b": 2}}, []string{"a", "b"}) // 2, nil
func AccessNestedMap(nestedMap map[string]any, path []string) (any, error) {
	var current any = nestedMap
	for _, key := range path {
		m, ok := asMap(current)
		if !ok {
			return nil, &KeyError{Key: key, Path: path}
		}
		next, ok := m[key]
		if !ok {
			return nil, &KeyError{Key: key, Path: path}
		}
		current = next
	}
	return current, nil
}

// SplitPath turns a dotted path such as "owner.login" into its segments.
// Empty segments are dropped.
func SplitPath(dotted string) []string {
	var path []string
	for _, p := range strings.Split(dotted, ".") {
		if p = strings.TrimSpace(p); p != "" {
			path = append(path, p)
		}
	}
	return path
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
