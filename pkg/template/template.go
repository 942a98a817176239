// Package template provides {{name}} placeholder substitution over the
// execution variable map.
package template

import (
	"encoding/json"
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Interpolate replaces every {{name}} occurrence with the stringified value
// of variables[name]. Unresolved placeholders are left in place verbatim, so
// a template with a missing key round-trips unchanged.
func Interpolate(tmpl string, variables map[string]any) string {
	if tmpl == "" || len(variables) == 0 && !placeholderPattern.MatchString(tmpl) {
		return tmpl
	}

	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]

		value, ok := variables[name]
		if !ok {
			return match
		}

		return Stringify(value)
	})
}

// Stringify renders a variable value the way it reads inside a template:
// integral floats without a trailing fraction, maps and slices as JSON.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(encoded)
	}
}
