package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "only blanks",
			input:    []string{"", "  "},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{" 20123456 ", "98765432  "},
			expected: []string{"20123456", "98765432"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"98765432", "20123456", "98765432"},
			expected: []string{"98765432", "20123456"},
		},
		{
			name:     "preserves case",
			input:    []string{"A@b.tn", "a@b.tn"},
			expected: []string{"A@b.tn", "a@b.tn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "21620123456", DigitsOnly("+216 20-123-456"))
	assert.Equal(t, "", DigitsOnly("jean@dupont.tn"))
	assert.Equal(t, "", DigitsOnly("٢٠١"))
}

func TestFoldAndJoin(t *testing.T) {
	assert.Equal(t, "a@b.com", Fold("  A@B.COM "))
	assert.Equal(t, "Dupont Jean", JoinNonEmpty(" Dupont", "", "Jean "))
	assert.Equal(t, "", JoinNonEmpty("", " "))
}
