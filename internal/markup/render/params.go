package render

import (
	"maps"

	"github.com/spf13/cast"
)

// Recognized parameter keys.
const (
	ParamFallbackFolders      = "fallbackFolders"
	ParamShouldFixID          = "shouldFixId"
	ParamBrokenReferenceClass = "brokenReferenceClass"
	ParamCodeClassPrefix      = "codeClassPrefix"
)

// Parameters is the loosely typed configuration shared by providers,
// customizers and the engine builder. Lookups take a default; values of an
// unexpected shape are treated as absent.
type Parameters map[string]any

// Lookup returns the raw value stored under key.
func (p Parameters) Lookup(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	value, ok := p[key]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// String returns key as a string, or def when absent or malformed.
func (p Parameters) String(key, def string) string {
	value, ok := p.Lookup(key)
	if !ok {
		return def
	}
	out, err := cast.ToStringE(value)
	if err != nil {
		return def
	}
	return out
}

// Bool returns key as a bool, or def when absent or malformed.
func (p Parameters) Bool(key string, def bool) bool {
	value, ok := p.Lookup(key)
	if !ok {
		return def
	}
	out, err := cast.ToBoolE(value)
	if err != nil {
		return def
	}
	return out
}

// Int returns key as an int, or def when absent or malformed.
func (p Parameters) Int(key string, def int) int {
	value, ok := p.Lookup(key)
	if !ok {
		return def
	}
	out, err := cast.ToIntE(value)
	if err != nil {
		return def
	}
	return out
}

// StringSlice returns key as a list of strings. Only []string and []any
// holding strings are accepted; anything else reports false.
func (p Parameters) StringSlice(key string) ([]string, bool) {
	value, ok := p.Lookup(key)
	if !ok {
		return nil, false
	}
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...), true
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Clone returns a shallow copy.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return Parameters{}
	}
	return maps.Clone(p)
}
