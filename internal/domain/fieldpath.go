package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FieldPath is a parsed dot-path expression over nested JSON values, e.g.
// "a.b.c" or "items.0.name". Numeric segments index into arrays. A zero
// FieldPath resolves nothing.
type FieldPath struct {
	raw      string
	segments []pathSegment
}

type pathSegment struct {
	key     string
	index   int
	isIndex bool
}

// ParseFieldPath validates and parses a dot-path expression. Empty input
// yields the zero path; empty segments ("a..b", leading or trailing dots)
// are rejected.
func ParseFieldPath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, nil
	}
	parts := strings.Split(path, ".")
	segments := make([]pathSegment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid field path %q: empty segment", path)
		}
		seg := pathSegment{key: part}
		if idx, err := strconv.Atoi(part); err == nil && idx >= 0 {
			seg.index = idx
			seg.isIndex = true
		}
		segments = append(segments, seg)
	}
	return FieldPath{raw: path, segments: segments}, nil
}

// MustFieldPath parses a path and panics on error. For fixed strategy
// defaults and tests only.
func MustFieldPath(path string) FieldPath {
	p, err := ParseFieldPath(path)
	if err != nil {
		panic(err)
	}
	return p
}

// IsZero reports whether the path is empty.
func (p FieldPath) IsZero() bool { return len(p.segments) == 0 }

// String returns the original dot-path expression.
func (p FieldPath) String() string { return p.raw }

// Resolve walks the path through an arbitrary decoded JSON value. It
// returns (nil, false) when any segment is missing, an index is out of
// range, or an intermediate value is neither an object nor an array.
// Absence is a normal outcome, never an error.
func (p FieldPath) Resolve(v any) (any, bool) {
	if p.IsZero() {
		return nil, false
	}
	current := v
	for _, seg := range p.segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[seg.key]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			if !seg.isIndex || seg.index >= len(node) {
				return nil, false
			}
			current = node[seg.index]
		default:
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// ResolveString resolves the path and renders the value as a string.
// Numbers decoded as float64 are formatted without a trailing ".0".
func (p FieldPath) ResolveString(v any) (string, bool) {
	val, ok := p.Resolve(v)
	if !ok {
		return "", false
	}
	switch s := val.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return "", false
	}
}

// MarshalJSON renders the path as its source expression so mapping
// documents round-trip unchanged.
func (p FieldPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.raw)
}

// UnmarshalJSON parses a path from a JSON string, rejecting malformed
// expressions at configuration time.
func (p *FieldPath) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseFieldPath(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
