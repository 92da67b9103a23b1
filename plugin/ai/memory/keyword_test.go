package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "drops stop words and short tokens",
			query:    "What is the best trail for hiking in the mountains?",
			expected: []string{"what", "best", "trail", "hiking", "mountains"},
		},
		{
			name:     "strips punctuation",
			query:    "Remember my trip (last week)? It was great!",
			expected: []string{"remember", "trip", "last", "week", "was", "great"},
		},
		{
			name:     "deduplicates preserving first appearance",
			query:    "hiking hiking boots hiking",
			expected: []string{"hiking", "boots"},
		},
		{
			name:     "lowercases",
			query:    "HIKING Boots",
			expected: []string{"hiking", "boots"},
		},
		{
			name:     "curly quotes removed inside words",
			query:    "don’t panic",
			expected: []string{"dont", "panic"},
		},
		{
			name:     "empty query",
			query:    "",
			expected: []string{},
		},
		{
			name:     "all stop words",
			query:    "the and of in",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractKeywords(tt.query))
		})
	}
}
