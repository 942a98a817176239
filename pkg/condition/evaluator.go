// Package condition evaluates the edge-condition comparison grammar.
package condition

import (
	"strconv"
	"strings"

	"github.com/flowd-sh/flowd/pkg/template"
)

// operators in fixed priority order; the first one found in the expression
// determines the comparison.
var operators = []string{"===", "!==", ">", "<"}

// Evaluate interpolates expr against the variable map and applies the tiny
// comparison grammar: ===/!== compare raw strings, >/< compare as floats
// (NaN yields false), and an expression with no operator is truthy when the
// interpolated string is non-empty. Evaluation never fails; anything
// malformed yields false.
func Evaluate(expr string, variables map[string]any) bool {
	interpolated := template.Interpolate(expr, variables)

	for _, op := range operators {
		idx := strings.Index(interpolated, op)
		if idx < 0 {
			continue
		}

		left := strings.TrimSpace(interpolated[:idx])
		right := strings.TrimSpace(interpolated[idx+len(op):])

		switch op {
		case "===":
			return left == right
		case "!==":
			return left != right
		case ">", "<":
			lv, lerr := strconv.ParseFloat(left, 64)
			rv, rerr := strconv.ParseFloat(right, 64)

			if lerr != nil || rerr != nil {
				return false
			}

			if op == ">" {
				return lv > rv
			}

			return lv < rv
		}
	}

	// No operator: JavaScript-style truthiness of the interpolated string.
	// "0" is non-empty and therefore truthy.
	return interpolated != ""
}
