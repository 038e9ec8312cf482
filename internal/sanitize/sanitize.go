package sanitize

import (
	"net/url"
	"strings"
)

// htmlReplacer escapes the characters that are significant in HTML. It runs a
// single pass over the original string, so entities it introduces are never
// escaped a second time.
var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeHTML replaces & < > " ' / with their HTML entity equivalents.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// Value walks a decoded JSON value and escapes every string leaf in place,
// preserving the shape of maps and slices. Non-string scalars and nil pass
// through unchanged.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return EscapeHTML(t)
	case []any:
		for i := range t {
			t[i] = Value(t[i])
		}
		return t
	case map[string]any:
		for k, val := range t {
			t[k] = Value(val)
		}
		return t
	default:
		return v
	}
}

// Query escapes every value of a URL query in place.
func Query(q url.Values) {
	for key, vals := range q {
		for i := range vals {
			vals[i] = EscapeHTML(vals[i])
		}
		q[key] = vals
	}
}

// Vars escapes every value of a path-parameter map, returning a new map.
func Vars(vars map[string]string) map[string]string {
	if len(vars) == 0 {
		return vars
	}
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = EscapeHTML(v)
	}
	return out
}
