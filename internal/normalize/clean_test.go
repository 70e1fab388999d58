package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var blanks = []string{"", " ", "\t", "  \n ", "NaN", "nan", "NULL", "N/A", " NA "}

func TestCleanString_Absent(t *testing.T) {
	for _, v := range blanks {
		assert.Nil(t, CleanString(v), "CleanString(%q)", v)
	}
}

func TestCleanString_Trims(t *testing.T) {
	got := CleanString("  Recife \t")
	require.NotNil(t, got)
	assert.Equal(t, "Recife", *got)
}

func TestCleanFloat_Absent(t *testing.T) {
	for _, v := range blanks {
		assert.Nil(t, CleanFloat(v), "CleanFloat(%q)", v)
	}
}

func TestCleanFloat(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"42", ptr(42.0)},
		{" 1234.56 ", ptr(1234.56)},
		{"-3", ptr(-3.0)},
		{"1e3", ptr(1000.0)},
		{"abc", nil},
		{"1,000", nil},
		{"Inf", nil},
		{"-infinity", nil},
		{"12abc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := CleanFloat(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func ptr[T any](v T) *T { return &v }
