package lesson

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "terminal punctuation followed by whitespace delimits",
			text: "First one. Second one! Third one?",
			want: []string{"First one.", "Second one!", "Third one?"},
		},
		{
			name: "no terminal punctuation yields one sentence",
			text: "a fragment without punctuation",
			want: []string{"a fragment without punctuation"},
		},
		{
			name: "empty input",
			text: "   ",
			want: nil,
		},
		{
			name: "decimal points without whitespace do not split",
			text: "The city grew by 3.5 percent. It keeps growing.",
			want: []string{"The city grew by 3.5 percent.", "It keeps growing."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}

func TestSplitProse(t *testing.T) {
	t.Run("blank lines win", func(t *testing.T) {
		got := SplitProse("First paragraph here.\n\nSecond paragraph here.")
		assert.Equal(t, []string{"First paragraph here.", "Second paragraph here."}, got)
	})

	t.Run("short single run is kept whole", func(t *testing.T) {
		got := SplitProse("One. Two. Three.")
		assert.Equal(t, []string{"One. Two. Three."}, got)
	})

	t.Run("long single run is batched into groups of three sentences", func(t *testing.T) {
		sentences := []string{
			"The city has grown quickly in recent years.",
			"Many new residents arrive every single month.",
			"Housing demand keeps climbing across districts.",
			"Public transport struggles to keep up with it.",
			"Planners are drafting new proposals this year.",
		}
		got := SplitProse(strings.Join(sentences, " "))
		assert.Len(t, got, 2)
		assert.Equal(t, strings.Join(sentences[:3], " "), got[0])
		assert.Equal(t, strings.Join(sentences[3:], " "), got[1])
	})
}

func TestLooksLikeProse(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Cities keep growing every year.", true},
		{"Do you like cities?", false},
		{"what do you think", false},
		{"", false},
		{"no terminator here", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeProse(tt.text))
		})
	}
}
