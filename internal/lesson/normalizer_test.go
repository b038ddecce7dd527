package lesson

import (
	"encoding/json"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readingParagraphs(count int, sentencesEach int) []any {
	paragraphs := make([]any, 0, count)
	for i := 0; i < count; i++ {
		paragraph := ""
		for j := 0; j < sentencesEach; j++ {
			paragraph += fmt.Sprintf("Paragraph %d sentence %d. ", i+1, j+1)
		}
		paragraphs = append(paragraphs, paragraph)
	}
	return paragraphs
}

func TestNormalize_Metadata(t *testing.T) {
	tests := []struct {
		name              string
		value             map[string]any
		wantTitle         string
		wantEstimatedTime string
	}{
		{
			name:              "explicit metadata is kept",
			value:             map[string]any{"title": "City Life", "estimatedTime": "45 minutes"},
			wantTitle:         "City Life",
			wantEstimatedTime: "45 minutes",
		},
		{
			name:              "missing metadata is defaulted",
			value:             map[string]any{},
			wantTitle:         "Untitled Lesson",
			wantEstimatedTime: "30 minutes",
		},
		{
			name:              "numeric estimated time is coerced",
			value:             map[string]any{"estimatedTime": float64(40)},
			wantTitle:         "Untitled Lesson",
			wantEstimatedTime: "40 minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := Normalize(tt.value)
			assert.Equal(t, tt.wantTitle, doc.Title)
			assert.Equal(t, tt.wantEstimatedTime, doc.EstimatedTime)
		})
	}
}

func TestNormalize_TypeInference(t *testing.T) {
	tests := []struct {
		name    string
		section map[string]any
		want    SectionType
	}{
		{
			name:    "explicit canonical type",
			section: map[string]any{"type": "reading", "paragraphs": []any{"One."}},
			want:    SectionReading,
		},
		{
			name:    "case-insensitive alias",
			section: map[string]any{"type": "Warm-Up"},
			want:    SectionWarmup,
		},
		{
			name:    "grammar alias maps to sentence frames",
			section: map[string]any{"type": "grammar"},
			want:    SectionSentenceFrames,
		},
		{
			name: "type stored as a key on the object",
			section: map[string]any{
				"vocabulary": map[string]any{"words": []any{"resilient"}},
			},
			want: SectionVocabulary,
		},
		{
			name:    "shape inference from paragraphs field",
			section: map[string]any{"paragraphs": []any{"One."}},
			want:    SectionReading,
		},
		{
			name:    "shape inference from words field",
			section: map[string]any{"words": []any{"resilient"}},
			want:    SectionVocabulary,
		},
		{
			name:    "shape inference from questions field",
			section: map[string]any{"questions": []any{"Why?"}},
			want:    SectionComprehension,
		},
		{
			name:    "unresolvable section falls back to warmup",
			section: map[string]any{"mystery": "value"},
			want:    SectionWarmup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := Normalize(map[string]any{"sections": []any{tt.section}})
			require.NotEmpty(t, doc.Sections)
			assert.Equal(t, tt.want, doc.Sections[0].Canonical())
			assert.NotEmpty(t, doc.Sections[0].Title)
		})
	}
}

func TestNormalize_ReadingInvariant(t *testing.T) {
	t.Run("short passage is padded and the original prefix is unmodified", func(t *testing.T) {
		original := []any{"First one. Second one. Third one.", "Fourth one. Fifth one. Sixth one."}
		doc, notes := Normalize(map[string]any{
			"sections": []any{map[string]any{"type": "reading", "paragraphs": original}},
		})

		reading := doc.Section(SectionReading)
		require.NotNil(t, reading)
		require.Len(t, reading.Paragraphs, 5)
		assert.Equal(t, original[0], reading.Paragraphs[0])
		assert.Equal(t, original[1], reading.Paragraphs[1])
		for _, padded := range reading.Paragraphs[2:] {
			assert.Equal(t, fillerParagraph, padded)
		}
		assert.NotEmpty(t, notes)
	})

	t.Run("long passage is redistributed and sentences are preserved as a multiset", func(t *testing.T) {
		paragraphs := readingParagraphs(8, 2)
		doc, _ := Normalize(map[string]any{
			"sections": []any{map[string]any{"type": "reading", "paragraphs": paragraphs}},
		})

		reading := doc.Section(SectionReading)
		require.NotNil(t, reading)
		require.Len(t, reading.Paragraphs, 5)

		var originalSentences, normalizedSentences []string
		for _, paragraph := range paragraphs {
			originalSentences = append(originalSentences, SplitSentences(paragraph.(string))...)
		}
		for _, paragraph := range reading.Paragraphs {
			normalizedSentences = append(normalizedSentences, SplitSentences(paragraph)...)
		}
		sort.Strings(originalSentences)
		sort.Strings(normalizedSentences)
		assert.Equal(t, originalSentences, normalizedSentences)
	})

	t.Run("single long string is split then padded", func(t *testing.T) {
		doc, _ := Normalize(map[string]any{
			"sections": []any{map[string]any{"type": "Reading", "content": "One. Two. Three."}},
		})

		reading := doc.Section(SectionReading)
		require.NotNil(t, reading)
		require.Len(t, reading.Paragraphs, 5)
		assert.Equal(t, "One. Two. Three.", reading.Paragraphs[0])
	})
}

func TestNormalize_VocabularyCoercion(t *testing.T) {
	t.Run("mapping becomes word records keyed by term", func(t *testing.T) {
		doc, _ := Normalize(map[string]any{
			"sections": []any{map[string]any{
				"type": "vocabulary",
				"words": map[string]any{
					"resilient": "able to recover quickly",
					"thrive":    "to grow strongly",
				},
			}},
		})

		vocabulary := doc.Section(SectionVocabulary)
		require.NotNil(t, vocabulary)
		require.Len(t, vocabulary.Words, 2)
		assert.Equal(t, "resilient", vocabulary.Words[0].Term)
		assert.Equal(t, "able to recover quickly", vocabulary.Words[0].Definition)
		assert.Equal(t, "thrive", vocabulary.Words[1].Term)
	})

	t.Run("string entries are promoted not dropped", func(t *testing.T) {
		doc, _ := Normalize(map[string]any{
			"sections": []any{map[string]any{
				"type":  "vocabulary",
				"words": []any{"resilient", map[string]any{"term": "thrive", "definition": "to grow strongly"}},
			}},
		})

		vocabulary := doc.Section(SectionVocabulary)
		require.NotNil(t, vocabulary)
		require.Len(t, vocabulary.Words, 2)
		assert.Equal(t, "resilient", vocabulary.Words[0].Term)
		assert.Equal(t, "thrive", vocabulary.Words[1].Term)
	})

	t.Run("full word records survive with pronunciation and semantic map", func(t *testing.T) {
		doc, _ := Normalize(map[string]any{
			"sections": []any{map[string]any{
				"type": "vocabulary",
				"words": []any{map[string]any{
					"term":       "resilient",
					"definition": "able to recover quickly",
					"pronunciation": map[string]any{
						"syllables":   []any{"re", "sil", "ient"},
						"stressIndex": float64(1),
						"phonetic":    "rih-ZIL-yent",
					},
					"semanticMap": map[string]any{
						"synonyms": []any{"tough"},
						"antonyms": []any{"fragile"},
					},
				}},
			}},
		})

		vocabulary := doc.Section(SectionVocabulary)
		require.NotNil(t, vocabulary)
		require.Len(t, vocabulary.Words, 1)
		word := vocabulary.Words[0]
		assert.Equal(t, []string{"re", "sil", "ient"}, word.Pronunciation.Syllables)
		assert.Equal(t, 1, word.Pronunciation.StressIndex)
		require.NotNil(t, word.SemanticMap)
		assert.Equal(t, []string{"tough"}, word.SemanticMap.Synonyms)
	})
}

func TestNormalize_DiscussionContextRecovery(t *testing.T) {
	tests := []struct {
		name     string
		question map[string]any
		want     string
	}{
		{
			name: "explicit context field wins",
			question: map[string]any{
				"question": "What would you change?",
				"context":  "Cities keep growing every year.",
			},
			want: "Cities keep growing every year.",
		},
		{
			name: "paragraph sibling is promoted",
			question: map[string]any{
				"question":  "What would you change?",
				"paragraph": "Cities keep growing every year.",
			},
			want: "Cities keep growing every year.",
		},
		{
			name: "introduction sibling is promoted",
			question: map[string]any{
				"question":     "What would you change?",
				"introduction": "Cities keep growing every year.",
			},
			want: "Cities keep growing every year.",
		},
		{
			name: "question-looking sibling is not promoted",
			question: map[string]any{
				"question":  "What would you change?",
				"paragraph": "Do you like cities?",
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := Normalize(map[string]any{
				"sections": []any{map[string]any{
					"type":      "discussion",
					"questions": []any{tt.question},
				}},
			})

			discussion := doc.Section(SectionDiscussion)
			require.NotNil(t, discussion)
			require.Len(t, discussion.Discussion, 1)
			assert.Equal(t, tt.want, discussion.Discussion[0].Context)
		})
	}
}

func TestNormalize_AliasRetention(t *testing.T) {
	doc, _ := Normalize(map[string]any{
		"sections": []any{map[string]any{"type": "speaking", "questions": []any{"What do you think?"}}},
	})

	require.NotEmpty(t, doc.Sections)
	assert.Equal(t, "speaking", doc.Sections[0].Type)
	assert.Equal(t, SectionDiscussion, doc.Sections[0].Canonical())
	assert.NotNil(t, doc.Section(SectionDiscussion))
}

func TestNormalize_RequiredSectionBackfill(t *testing.T) {
	doc, _ := Normalize(map[string]any{
		"sections": []any{map[string]any{"type": "reading", "paragraphs": readingParagraphs(5, 3)}},
	})

	for _, required := range []SectionType{SectionWarmup, SectionVocabulary, SectionComprehension} {
		section := doc.Section(required)
		require.NotNil(t, section, "missing backfill for %s", required)
		assert.True(t, section.Placeholder)
		assert.Equal(t, PlaceholderNote, section.Note)
		assert.Empty(t, section.Words)
		assert.Empty(t, section.Questions)
	}

	reading := doc.Section(SectionReading)
	require.NotNil(t, reading)
	assert.False(t, reading.Placeholder)
}

func TestNormalize_DuplicateSectionsAreConsolidated(t *testing.T) {
	doc, notes := Normalize(map[string]any{
		"sections": []any{
			map[string]any{"type": "quiz", "questions": []any{"First?"}},
			map[string]any{"type": "assessment", "questions": []any{"Second?"}},
		},
	})

	var quizCount int
	for _, section := range doc.Sections {
		if section.Canonical() == SectionQuiz {
			quizCount++
		}
	}
	assert.Equal(t, 1, quizCount)

	quiz := doc.Section(SectionQuiz)
	require.NotNil(t, quiz)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "First?", quiz.Questions[0].Text)
	assert.Equal(t, "Second?", quiz.Questions[1].Text)
	assert.NotEmpty(t, notes)
}

func TestNormalize_SectionsAsMapping(t *testing.T) {
	doc, _ := Normalize(map[string]any{
		"sections": map[string]any{
			"reading":    map[string]any{"paragraphs": readingParagraphs(5, 3)},
			"vocabulary": []any{"resilient"},
		},
	})

	require.NotNil(t, doc.Section(SectionReading))
	vocabulary := doc.Section(SectionVocabulary)
	require.NotNil(t, vocabulary)
	assert.False(t, vocabulary.Placeholder)
	require.Len(t, vocabulary.Words, 1)
	assert.Equal(t, "resilient", vocabulary.Words[0].Term)
}

func TestNormalize_RootLevelSectionKeys(t *testing.T) {
	doc, _ := Normalize(map[string]any{
		"title":   "City Life",
		"reading": "One. Two. Three. Four. Five. Six.",
	})

	reading := doc.Section(SectionReading)
	require.NotNil(t, reading)
	assert.False(t, reading.Placeholder)
	assert.Len(t, reading.Paragraphs, 5)
}

func TestNormalize_BareSectionObjectAsRoot(t *testing.T) {
	doc, _ := Normalize(map[string]any{
		"type":    "Reading",
		"content": "The city wakes early. Vendors open their stalls. Commuters fill the trains.",
	})

	reading := doc.Section(SectionReading)
	require.NotNil(t, reading)
	assert.False(t, reading.Placeholder)
	assert.Len(t, reading.Paragraphs, 5)
	assert.Equal(t, "The city wakes early. Vendors open their stalls. Commuters fill the trains.", reading.Paragraphs[0])
}

func TestNormalize_Idempotence(t *testing.T) {
	value := map[string]any{
		"title":         "City Life",
		"level":         "B1",
		"focus":         "urban vocabulary",
		"estimatedTime": "45 minutes",
		"sections": []any{
			map[string]any{"type": "warmup", "title": "Warm-Up", "content": []any{"Talk about your city."}},
			map[string]any{"type": "reading", "title": "Reading Passage", "paragraphs": readingParagraphs(5, 3)},
			map[string]any{"type": "vocabulary", "title": "Vocabulary", "words": []any{
				map[string]any{"term": "resilient", "definition": "able to recover quickly", "example": "She is resilient."},
			}},
			map[string]any{"type": "comprehension", "title": "Comprehension Questions", "questions": []any{
				map[string]any{"question": "What is the passage about?", "options": []any{"Cities", "Farms"}, "answer": "Cities"},
			}},
			map[string]any{"type": "discussion", "title": "Discussion", "questions": []any{
				map[string]any{"question": "What would you change?", "context": "Cities keep growing every year."},
			}},
		},
	}

	first, _ := Normalize(value)

	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	var roundTrip map[string]any
	require.NoError(t, json.Unmarshal(encoded, &roundTrip))

	second, _ := Normalize(roundTrip)
	assert.Equal(t, first, second)
}
