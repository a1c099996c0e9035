package typing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"10", 10, true},
		{" 42.5 ", 42.5, true},
		{"1.234,56", 1234.56, true},
		{"1 234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"3,14", 3.14, true},
		{"(15)", -15, true},
		{"85%", 85, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{"", 0, false},
		{"12/01/2024", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumeric(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.input)
		}
	}
}

func TestParseDatetimeDayFirst(t *testing.T) {
	// 02/01/2006 must read as the 2nd of January, not February 1st.
	got, ok := ParseDatetime("02/01/2024")
	require.True(t, ok)
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 2, got.Day())
}

func TestParseDatetimeFormats(t *testing.T) {
	for _, input := range []string{
		"15/03/2024",
		"15/03/2024 10:30:00",
		"15-03-2024",
		"2024-03-15",
		"2024-03-15 10:30:00",
		"2024-03-15T10:30:00Z",
	} {
		_, ok := ParseDatetime(input)
		assert.True(t, ok, "input %q", input)
	}
	for _, input := range []string{"", "not a date", "123abc"} {
		_, ok := ParseDatetime(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestParseBooleanTokenTable(t *testing.T) {
	for _, input := range []string{"true", "1", "yes", "sim", "SIM", " True "} {
		v, ok := ParseBoolean(input)
		require.True(t, ok, "input %q", input)
		assert.True(t, v, "input %q", input)
	}
	for _, input := range []string{"false", "0", "no", "nao", "NAO"} {
		v, ok := ParseBoolean(input)
		require.True(t, ok, "input %q", input)
		assert.False(t, v, "input %q", input)
	}
	for _, input := range []string{"maybe", "2", "", "si"} {
		_, ok := ParseBoolean(input)
		assert.False(t, ok, "input %q", input)
	}
}
