package assoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Pair
	}{
		{
			name: "explicit equals sign",
			text: "the box = red",
			want: []Pair{{Left: "box", Right: "red"}},
		},
		{
			name: "training verb enables is",
			text: "remember box is red",
			want: []Pair{{Left: "box", Right: "red"}},
		},
		{
			name: "plain is without training verb",
			text: "box is red",
			want: []Pair{},
		},
		{
			name: "one pair per chunk",
			text: "remember box is red, define cat equals dog",
			want: []Pair{{Left: "box", Right: "red"}, {Left: "cat", Right: "dog"}},
		},
		{
			name: "stop word side rejected",
			text: "remember you = red",
			want: []Pair{},
		},
		{
			name: "digit-only token rejected",
			text: "123 = 456",
			want: []Pair{},
		},
		{
			name: "short tokens rejected",
			text: "ab = cd",
			want: []Pair{},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePairs(tt.text)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"the", "red", "box"}, tokenize("The RED, box!"))
	assert.Empty(t, tokenize(""))
}
