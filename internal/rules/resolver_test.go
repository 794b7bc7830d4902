package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_FormValueExpressions(t *testing.T) {
	values := FormValues{
		"DOORTYPE": "sliding",
		"WIDTH":    float64(900),
	}

	tests := []struct {
		name string
		expr string
		want any
	}{
		{"field with value suffix", "$DOORTYPE.value", "sliding"},
		{"field without suffix", "$WIDTH", float64(900)},
		{"case-insensitive field token", "$doortype.value", "sliding"},
		{"unknown field", "$MISSING.value", nil},
		{"plain literal", "sliding", "sliding"},
		{"empty literal", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.expr, values, nil))
		})
	}
}

func TestResolve_AttributeExpressions(t *testing.T) {
	opt := &Option{
		Value:      "d-100",
		Attributes: map[string]any{"category": "doors,windows", "Finish": "oak"},
	}

	// Inside an option context attribute references resolve.
	assert.Equal(t, "doors,windows", Resolve("$attributes.category", FormValues{}, opt))
	assert.Equal(t, "oak", Resolve("$attributes.finish", FormValues{}, opt))
	assert.Nil(t, Resolve("$attributes.missing", FormValues{}, opt))

	// Outside an option context the expression stays a literal. Both call
	// sites depend on this asymmetry.
	assert.Equal(t, "$attributes.category", Resolve("$attributes.category", FormValues{}, nil))
}
