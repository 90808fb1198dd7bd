package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.34", "12.34"},
		{"12,34", "12.34"},
		{" 7 ", "7"},
		{"", "0"},
		{"-3,5", "-3.5"},
		{"0,05", "0.05"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, "Parse(%q)", tt.in)
		assert.True(t, got.Equal(dec(tt.want)), "Parse(%q) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"abc", "1,2,3", "1.2,3", "12e", "€5"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "Parse(%q)", in)
	}
}

func TestParseNonNegative(t *testing.T) {
	d, err := ParseNonNegative("4,20")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("4.2")))

	_, err = ParseNonNegative("-1")
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.50", Format(dec("1234.5"), "USD"))
	assert.Equal(t, "-$40.00", Format(dec("-40"), "USD"))
	assert.Equal(t, "$0.01", Format(dec("0.005"), "USD"))
	assert.Equal(t, "12.30 XYZ", Format(dec("12.3"), "XYZ"))
	assert.Equal(t, "12.30", Format(dec("12.3"), ""))
}
