package day

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Day
		wantErr bool
	}{
		{"01-01-2024", New(2024, time.January, 1), false},
		{" 29-02-2024 ", New(2024, time.February, 29), false},
		{"31-12-1999", New(1999, time.December, 31), false},
		{"1-1-2024", Day{}, true},
		{"2024-01-01", Day{}, true},
		{"30-02-2024", Day{}, true},
		{"", Day{}, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "Parse(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "Parse(%q)", tt.in)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.in)
	}
}

func TestStringRoundTrip(t *testing.T) {
	d := New(2024, time.March, 5)
	assert.Equal(t, "05-03-2024", d.String())
	assert.Equal(t, "2024-03-05", d.ISO())

	got, err := Parse(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, got)

	got, err = ParseISO(d.ISO())
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestNewNormalizes(t *testing.T) {
	assert.Equal(t, New(2024, time.February, 1), New(2024, time.January, 32))
}

func TestCompare(t *testing.T) {
	a := New(2024, time.January, 31)
	b := New(2024, time.February, 1)
	c := New(2025, time.January, 1)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(New(2024, time.January, 31)))
	assert.True(t, b.Before(c))
	assert.True(t, c.After(a))
	assert.False(t, a.After(a))
}

func TestIsZero(t *testing.T) {
	assert.True(t, Day{}.IsZero())
	assert.False(t, New(2024, time.January, 1).IsZero())
}
