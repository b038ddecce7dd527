// Package render turns lesson documents into presentation formats.
package render

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/lessoncraft/internal/lesson"
)

// Markdown renders a lesson document as a markdown page. Placeholder
// sections render a neutral pending note instead of fabricated content.
func Markdown(document *lesson.Document) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# %s\n\n", document.Title))

	var meta []string
	if document.Level != "" {
		meta = append(meta, fmt.Sprintf("**Level:** %s", document.Level))
	}
	if document.Focus != "" {
		meta = append(meta, fmt.Sprintf("**Focus:** %s", document.Focus))
	}
	if document.EstimatedTime != "" {
		meta = append(meta, fmt.Sprintf("**Estimated time:** %s", document.EstimatedTime))
	}
	if len(meta) > 0 {
		builder.WriteString(strings.Join(meta, " · ") + "\n\n")
	}

	for i := range document.Sections {
		writeSection(&builder, &document.Sections[i])
	}
	return builder.String()
}

func writeSection(builder *strings.Builder, section *lesson.Section) {
	builder.WriteString(fmt.Sprintf("## %s\n\n", section.Title))

	if section.Placeholder {
		builder.WriteString("_This section was not generated yet._\n\n")
		return
	}

	for _, paragraph := range section.Paragraphs {
		builder.WriteString(paragraph + "\n\n")
	}
	writeWords(builder, section.Words)
	writeQuestions(builder, section.Questions)
	writeDiscussion(builder, section.Discussion)
	writeFrames(builder, section.Frames)
}

func writeWords(builder *strings.Builder, words []lesson.VocabWord) {
	for _, word := range words {
		builder.WriteString(fmt.Sprintf("- **%s**", word.Term))
		if word.PartOfSpeech != "" {
			builder.WriteString(fmt.Sprintf(" _(%s)_", word.PartOfSpeech))
		}
		if word.Pronunciation.Phonetic != "" {
			builder.WriteString(" " + word.Pronunciation.Phonetic)
		}
		if word.Definition != "" {
			builder.WriteString(": " + word.Definition)
		}
		builder.WriteString("\n")
		if word.Example != "" {
			builder.WriteString(fmt.Sprintf("  - _%s_\n", word.Example))
		}
		if word.SemanticMap != nil && len(word.SemanticMap.Synonyms) > 0 {
			builder.WriteString(fmt.Sprintf("  - Synonyms: %s\n", strings.Join(word.SemanticMap.Synonyms, ", ")))
		}
	}
	if len(words) > 0 {
		builder.WriteString("\n")
	}
}

func writeQuestions(builder *strings.Builder, questions []lesson.Question) {
	for i, question := range questions {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, question.Text))
		for _, option := range question.Options {
			builder.WriteString(fmt.Sprintf("   - %s\n", option))
		}
		if question.Answer != "" {
			builder.WriteString(fmt.Sprintf("   - **Answer:** %s\n", question.Answer))
		}
	}
	if len(questions) > 0 {
		builder.WriteString("\n")
	}
}

func writeDiscussion(builder *strings.Builder, questions []lesson.DiscussionQuestion) {
	for i, question := range questions {
		if question.Context != "" {
			builder.WriteString(question.Context + "\n\n")
		}
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, question.Text))
		if question.ImageURL != "" {
			builder.WriteString(fmt.Sprintf("   ![illustration](%s)\n", question.ImageURL))
		}
	}
	if len(questions) > 0 {
		builder.WriteString("\n")
	}
}

func writeFrames(builder *strings.Builder, frames []lesson.Frame) {
	for _, frame := range frames {
		if frame.Title != "" {
			builder.WriteString(fmt.Sprintf("### %s\n\n", frame.Title))
		}
		writeTier(builder, "Emerging", frame.Emerging)
		writeTier(builder, "Developing", frame.Developing)
		writeTier(builder, "Expanding", frame.Expanding)
		builder.WriteString("\n")
	}
}

func writeTier(builder *strings.Builder, label string, tier lesson.FrameTier) {
	if tier.Pattern == "" {
		return
	}
	builder.WriteString(fmt.Sprintf("- **%s:** `%s`", label, tier.Pattern))
	if len(tier.Examples) > 0 {
		builder.WriteString(fmt.Sprintf(" (e.g. %s)", strings.Join(tier.Examples, "; ")))
	}
	builder.WriteString("\n")
}
