package generator

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/lessoncraft/internal/lesson"
)

// documentFormatExample is a complete example document embedded in every
// prompt. Showing the full shape once is more reliable than describing it.
const documentFormatExample = `{
  "title": "Ordering Food at a Restaurant",
  "level": "B1",
  "focus": "Everyday conversation",
  "estimatedTime": "30 minutes",
  "sections": [
    {
      "type": "warmup",
      "title": "Warm-up",
      "paragraphs": [
        "Have you ever ordered food in English? How did it go?"
      ]
    },
    {
      "type": "reading",
      "title": "Reading",
      "paragraphs": [
        "First paragraph with at least three sentences. Each one complete. Each one simple.",
        "Second paragraph continues the passage. It builds on the first. It stays on topic.",
        "Third paragraph adds detail. It uses level-appropriate vocabulary. It avoids idioms.",
        "Fourth paragraph develops the story. It introduces the key vocabulary naturally. It keeps sentences short.",
        "Fifth paragraph concludes the passage. It wraps up the situation. It invites reflection."
      ]
    },
    {
      "type": "vocabulary",
      "title": "Vocabulary",
      "words": [
        {
          "term": "appetizer",
          "partOfSpeech": "noun",
          "definition": "a small dish served before the main course",
          "example": "We shared an appetizer while we waited.",
          "pronunciation": {
            "syllables": ["ap", "pe", "ti", "zer"],
            "stressIndex": 0,
            "phonetic": "/ˈæpɪtaɪzər/"
          }
        }
      ]
    },
    {
      "type": "comprehension",
      "title": "Comprehension Questions",
      "questions": [
        {
          "question": "Why did the customer ask for the menu again?",
          "options": ["To order dessert", "To check the prices", "To choose a drink"],
          "answer": "To order dessert",
          "explanation": "The passage says the customer wanted something sweet."
        }
      ]
    },
    {
      "type": "sentenceFrames",
      "title": "Sentence Frames",
      "pedagogicalFrames": [
        {
          "title": "Ordering politely",
          "emerging": {"pattern": "I would like ___.", "examples": ["I would like the soup."]},
          "developing": {"pattern": "Could I have ___, please?", "examples": ["Could I have the salad, please?"]},
          "expanding": {"pattern": "I was wondering if I could get ___.", "examples": ["I was wondering if I could get the special."]}
        }
      ]
    },
    {
      "type": "discussion",
      "title": "Discussion",
      "discussionQuestions": [
        {
          "question": "What is your favorite restaurant and why?",
          "context": "Think about a memorable meal you had there.",
          "imagePrompt": "A cozy restaurant interior with warm lighting"
        }
      ]
    },
    {
      "type": "quiz",
      "title": "Quiz",
      "questions": [
        {
          "question": "Which word means a small dish before the main course?",
          "options": ["dessert", "appetizer", "beverage"],
          "answer": "appetizer"
        }
      ]
    }
  ]
}`

func buildPrompt(request lesson.Request) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(
		"Create an English lesson document about %q for a %s level learner. "+
			"The lesson should take about %d minutes.\n\n",
		request.Topic,
		request.Level,
		request.DurationMinutes,
	))
	if request.Focus != "" {
		builder.WriteString(fmt.Sprintf("The lesson focus is: %s.\n\n", request.Focus))
	}
	builder.WriteString("Requirements:\n")
	builder.WriteString("- The reading section must have exactly 5 paragraphs, each with at least 3 complete sentences.\n")
	builder.WriteString("- Include warmup, reading, vocabulary, comprehension, sentenceFrames, discussion, and quiz sections.\n")
	builder.WriteString(fmt.Sprintf("- All content must be appropriate for the %s CEFR level.\n", request.Level))
	builder.WriteString("- Every comprehension and quiz question must have options and a correct answer.\n")
	if len(request.RequiredVocabulary) > 0 {
		builder.WriteString(fmt.Sprintf(
			"- The reading passage must use these words: %s.\n",
			strings.Join(request.RequiredVocabulary, ", "),
		))
	}
	if len(request.KnownVocabulary) > 0 {
		builder.WriteString(fmt.Sprintf(
			"- The learner already knows these words, so do not teach them in the vocabulary section: %s.\n",
			strings.Join(request.KnownVocabulary, ", "),
		))
	}
	builder.WriteString("\n")
	builder.WriteString("Respond with a single JSON object in exactly this format:\n\n")
	builder.WriteString(documentFormatExample)
	return builder.String()
}
