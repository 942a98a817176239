package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		variables map[string]any
		want      bool
	}{
		{name: "numeric greater than", expr: "5 > 3", want: true},
		{name: "numeric less than false", expr: "2 < 1", want: false},
		{name: "strict string equality", expr: "abc === abc", want: true},
		{name: "strict string inequality", expr: "abc !== abc", want: false},
		{name: "no coercion across types", expr: "1 === 1.0", want: false},
		{name: "unresolved placeholder is truthy", expr: "{{missing}}", want: true},
		{name: "empty expression is falsy", expr: "", want: false},
		{name: "zero string is truthy", expr: "0", want: true},
		{name: "nan comparison is false", expr: "abc > 1", want: false},
		{name: "both sides nan is false", expr: "abc < def", want: false},
		{
			name:      "interpolated numeric comparison",
			expr:      "{{score}} > 50",
			variables: map[string]any{"score": float64(70)},
			want:      true,
		},
		{
			name:      "interpolated comparison false branch",
			expr:      "{{score}} > 50",
			variables: map[string]any{"score": float64(30)},
			want:      false,
		},
		{
			name:      "interpolated string equality",
			expr:      "{{status}} === active",
			variables: map[string]any{"status": "active"},
			want:      true,
		},
		{
			name: "first operator wins over later ones",
			// === is checked before >, so this is a string comparison
			expr: "a > b === a > b",
			want: true,
		},
		{name: "operands are trimmed", expr: "  5   >  3  ", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.expr, tt.variables))
		})
	}
}
