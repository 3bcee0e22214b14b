package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
		want  int64
	}{
		{"plain", "12.34", "USD", 1234},
		{"whole", "100", "USD", 10000},
		{"one decimal", "0.5", "USD", 50},
		{"leading zero", "0.07", "USD", 7},
		{"negative", "-25.00", "USD", -2500},
		{"whitespace", "  9.99 ", "USD", 999},
		{"zero-decimal currency", "1500", "JPY", 1500},
		{"three-decimal currency", "1.234", "KWD", 1234},
		{"unknown currency defaults to two", "3.21", "ZZZ", 321},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountRejects(t *testing.T) {
	badInputs := []struct {
		input string
		code  string
	}{
		{"", "USD"},
		{"abc", "USD"},
		{"12.345", "USD"},
		{"0.5", "JPY"},
		{"12,34", "USD"},
		{"99999999999999999999999", "USD"},
	}
	for _, tt := range badInputs {
		_, err := ParseAmount(tt.input, tt.code)
		assert.Error(t, err, "expected error for %q (%s)", tt.input, tt.code)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.56", Format(123456, "USD"))
	assert.Equal(t, "-$0.07", Format(-7, "USD"))
	assert.Equal(t, "¥1,500", Format(1500, "JPY"))
	assert.Equal(t, "ZZZ 3.21", Format(321, "ZZZ"))
}
