package lesson

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Note is one attempt-scoped normalization diagnostic. Notes are returned
// alongside the document so callers and tests can assert on them without
// capturing log output.
type Note struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// readingParagraphCount is the paragraph invariant enforced on reading
// sections: exactly this many paragraphs post-normalization.
const readingParagraphCount = 5

// vocabularyWordTarget is the target word count requested from the provider.
// Word records are coerced in shape but never dropped to hit it.
const vocabularyWordTarget = 5

// fillerParagraph pads short reading passages up to the paragraph invariant.
const fillerParagraph = "More practice content will be added for this passage."

// Normalize canonicalizes a parsed provider value into a Document. It never
// fails: unresolvable ambiguity is recorded as a Note and the affected
// content degrades to an explicit placeholder instead of an error.
func Normalize(value map[string]any) (*Document, []Note) {
	var notes []Note
	doc := &Document{
		Title:         firstString(value, "title", "lessonTitle", "name"),
		Level:         firstString(value, "level", "proficiency"),
		Focus:         firstString(value, "focus", "objective"),
		EstimatedTime: normalizeEstimatedTime(value),
	}
	if doc.Title == "" {
		doc.Title = "Untitled Lesson"
	}

	for _, raw := range rawSections(value) {
		section, sectionNotes := normalizeSection(raw)
		doc.Sections = append(doc.Sections, section)
		notes = append(notes, sectionNotes...)
	}

	notes = append(notes, consolidateDuplicates(doc)...)
	notes = append(notes, enforceReadingInvariant(doc)...)
	notes = append(notes, backfillRequiredSections(doc)...)

	for _, note := range notes {
		slog.Default().Debug("normalization note", "section", note.Section, "message", note.Message)
	}
	return doc, notes
}

// rawSections locates the section records inside the parsed value. A missing
// or malformed sections array falls back to scanning the document root for
// recognized section tags used directly as keys.
func rawSections(value map[string]any) []map[string]any {
	var sections []map[string]any

	switch typed := value["sections"].(type) {
	case []any:
		for _, entry := range typed {
			if m, ok := entry.(map[string]any); ok {
				sections = append(sections, m)
			}
		}
	case map[string]any:
		// Sections keyed by type instead of listed in order.
		for _, key := range sortedKeys(typed) {
			sections = append(sections, sectionFromKeyedEntry(key, typed[key]))
		}
	}
	if len(sections) > 0 {
		return sections
	}

	for _, key := range sortedKeys(value) {
		if _, ok := CanonicalType(key); !ok {
			continue
		}
		sections = append(sections, sectionFromKeyedEntry(key, value[key]))
	}
	if len(sections) > 0 {
		return sections
	}

	// A bare section object returned as the whole document.
	if tag := strings.TrimSpace(asString(firstValue(value, "type", "sectionType", "kind"))); tag != "" {
		if _, ok := CanonicalType(tag); ok {
			return []map[string]any{value}
		}
	}
	return nil
}

// sectionFromKeyedEntry builds a raw section record from a type tag used as a
// key and its payload.
func sectionFromKeyedEntry(tag string, payload any) map[string]any {
	raw := map[string]any{"type": tag}
	switch typed := payload.(type) {
	case map[string]any:
		for key, entry := range typed {
			raw[key] = entry
		}
	case []any, string:
		raw["content"] = typed
	}
	return raw
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func normalizeSection(raw map[string]any) (Section, []Note) {
	var notes []Note
	tag, canonical, inferred := resolveSectionType(raw)
	if inferred != "" {
		notes = append(notes, Note{Section: string(canonical), Message: inferred})
	}

	section := Section{
		Type:        tag,
		Title:       firstString(raw, "title", "heading", "name"),
		Placeholder: asBool(raw["placeholder"]),
		Note:        firstString(raw, "note"),
	}
	if section.Title == "" {
		section.Title = DefaultTitle(canonical)
	}

	switch canonical {
	case SectionReading:
		section.Paragraphs = coerceStringList(firstValue(raw, "paragraphs", "passage", "content", "text", "body"))
	case SectionVocabulary:
		section.Words = coerceWords(firstValue(raw, "words", "vocabulary", "vocab", "content", "items", "terms"))
	case SectionComprehension, SectionQuiz:
		section.Questions = coerceQuestions(firstValue(raw, "questions", "content", "items"))
	case SectionDiscussion:
		section.Discussion = coerceDiscussion(firstValue(raw, "questions", "discussionQuestions", "prompts", "content", "items"))
	case SectionSentenceFrames:
		section.Frames = coerceFrames(firstValue(raw, "pedagogicalFrames", "frames", "sentenceFrames", "content", "items"))
	case SectionWarmup:
		section.Paragraphs = coerceStringList(firstValue(raw, "paragraphs", "content", "text", "activities", "instructions"))
	}
	return section, notes
}

// resolveSectionType resolves a section's discriminant: the explicit type
// field first, then a recognized tag used as a key on the object, then
// payload-shape inference, then the warmup fallback. The returned tag keeps
// the original spelling so alias sections stay addressable under it.
func resolveSectionType(raw map[string]any) (tag string, canonical SectionType, inferredNote string) {
	for _, field := range []string{"type", "sectionType", "kind"} {
		value := strings.TrimSpace(asString(raw[field]))
		if value == "" {
			continue
		}
		if sectionType, ok := CanonicalType(value); ok {
			return value, sectionType, ""
		}
	}

	// Common malformation: the object stores its type as a key.
	for _, key := range sortedKeys(raw) {
		sectionType, ok := CanonicalType(key)
		if !ok {
			continue
		}
		if nested, isMap := raw[key].(map[string]any); isMap {
			for nestedKey, nestedValue := range nested {
				if _, exists := raw[nestedKey]; !exists {
					raw[nestedKey] = nestedValue
				}
			}
		}
		return key, sectionType, fmt.Sprintf("type inferred from key %q", key)
	}

	shapeHints := []struct {
		key         string
		sectionType SectionType
	}{
		{"paragraphs", SectionReading},
		{"passage", SectionReading},
		{"words", SectionVocabulary},
		{"questions", SectionComprehension},
	}
	for _, hint := range shapeHints {
		if _, ok := raw[hint.key]; ok {
			return string(hint.sectionType), hint.sectionType, fmt.Sprintf("type inferred from payload field %q", hint.key)
		}
	}

	return string(SectionWarmup), SectionWarmup, "unresolved section type, falling back to warmup"
}

// coerceStringList converts any observed shape into the canonical sequence of
// non-empty strings: sequences are kept, single strings are re-segmented, and
// mappings contribute their values.
func coerceStringList(value any) []string {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		return SplitProse(typed)
	case []any:
		var items []string
		for _, entry := range typed {
			if text := strings.TrimSpace(asString(entry)); text != "" {
				items = append(items, text)
			}
		}
		return items
	case map[string]any:
		var items []string
		for _, key := range sortedKeys(typed) {
			if text := strings.TrimSpace(asString(typed[key])); text != "" {
				items = append(items, text)
			}
		}
		return items
	default:
		if text := strings.TrimSpace(asString(value)); text != "" {
			return []string{text}
		}
		return nil
	}
}

// coerceWords converts the words payload into vocabulary records. String
// entries are promoted to minimal records rather than dropped; mappings use
// their keys as terms and values as definitions.
func coerceWords(value any) []VocabWord {
	switch typed := value.(type) {
	case nil:
		return nil
	case []any:
		var words []VocabWord
		for _, entry := range typed {
			switch item := entry.(type) {
			case string:
				if term := strings.TrimSpace(item); term != "" {
					words = append(words, VocabWord{Term: term})
				}
			case map[string]any:
				words = append(words, decodeWord(item))
			}
		}
		return words
	case map[string]any:
		var words []VocabWord
		for _, key := range sortedKeys(typed) {
			words = append(words, VocabWord{Term: key, Definition: strings.TrimSpace(asString(typed[key]))})
		}
		return words
	case string:
		var words []VocabWord
		for _, term := range SplitProse(typed) {
			words = append(words, VocabWord{Term: term})
		}
		return words
	default:
		return nil
	}
}

func decodeWord(raw map[string]any) VocabWord {
	word := VocabWord{
		Term:         firstString(raw, "term", "word", "expression"),
		PartOfSpeech: firstString(raw, "partOfSpeech", "part_of_speech", "pos"),
		Definition:   firstString(raw, "definition", "meaning"),
		Example:      firstString(raw, "example", "sentence", "usage"),
		ImageURL:     firstString(raw, "imageUrl", "image_url"),
	}
	if pronunciation, ok := raw["pronunciation"].(map[string]any); ok {
		word.Pronunciation = Pronunciation{
			Syllables:   coerceStringList(firstValue(pronunciation, "syllables")),
			StressIndex: asInt(firstValue(pronunciation, "stressIndex", "stress_index", "stress")),
			Phonetic:    firstString(pronunciation, "phonetic", "guide", "phoneticGuide"),
		}
	} else if phonetic := asString(raw["pronunciation"]); phonetic != "" {
		word.Pronunciation = Pronunciation{Phonetic: phonetic}
	}
	if semantic, ok := raw["semanticMap"].(map[string]any); ok {
		word.SemanticMap = &SemanticMap{
			Synonyms:        coerceStringList(semantic["synonyms"]),
			Antonyms:        coerceStringList(semantic["antonyms"]),
			RelatedConcepts: coerceStringList(firstValue(semantic, "relatedConcepts", "related_concepts", "related")),
			Contexts:        coerceStringList(semantic["contexts"]),
			Collocations:    coerceStringList(semantic["collocations"]),
		}
	}
	return word
}

// coerceQuestions converts the questions payload into question records. A
// mapping becomes question/answer pairs keyed by its own keys.
func coerceQuestions(value any) []Question {
	switch typed := value.(type) {
	case nil:
		return nil
	case []any:
		var questions []Question
		for _, entry := range typed {
			switch item := entry.(type) {
			case string:
				if text := strings.TrimSpace(item); text != "" {
					questions = append(questions, Question{Text: text})
				}
			case map[string]any:
				questions = append(questions, decodeQuestion(item))
			}
		}
		return questions
	case map[string]any:
		var questions []Question
		for _, key := range sortedKeys(typed) {
			questions = append(questions, Question{Text: key, Answer: strings.TrimSpace(asString(typed[key]))})
		}
		return questions
	case string:
		var questions []Question
		for _, text := range SplitProse(typed) {
			questions = append(questions, Question{Text: text})
		}
		return questions
	default:
		return nil
	}
}

func decodeQuestion(raw map[string]any) Question {
	return Question{
		Text:        firstString(raw, "question", "text", "q"),
		Options:     coerceStringList(firstValue(raw, "options", "choices")),
		Answer:      firstString(raw, "answer", "correctAnswer", "correct_answer", "correct"),
		Explanation: firstString(raw, "explanation", "rationale"),
	}
}

// coerceDiscussion converts the discussion payload. When no explicit context
// is present, the first prose-looking sibling value is promoted to it.
func coerceDiscussion(value any) []DiscussionQuestion {
	switch typed := value.(type) {
	case nil:
		return nil
	case []any:
		var questions []DiscussionQuestion
		for _, entry := range typed {
			switch item := entry.(type) {
			case string:
				if text := strings.TrimSpace(item); text != "" {
					questions = append(questions, DiscussionQuestion{Text: text})
				}
			case map[string]any:
				questions = append(questions, decodeDiscussionQuestion(item))
			}
		}
		return questions
	case map[string]any:
		var questions []DiscussionQuestion
		for _, key := range sortedKeys(typed) {
			question := DiscussionQuestion{Text: key}
			if context := strings.TrimSpace(asString(typed[key])); looksLikeProse(context) {
				question.Context = context
			}
			questions = append(questions, question)
		}
		return questions
	case string:
		var questions []DiscussionQuestion
		for _, text := range SplitProse(typed) {
			questions = append(questions, DiscussionQuestion{Text: text})
		}
		return questions
	default:
		return nil
	}
}

func decodeDiscussionQuestion(raw map[string]any) DiscussionQuestion {
	question := DiscussionQuestion{
		Text:        firstString(raw, "question", "text", "prompt"),
		Context:     firstString(raw, "context"),
		ImagePrompt: firstString(raw, "imagePrompt", "image_prompt", "image", "illustration"),
		ImageURL:    firstString(raw, "imageUrl", "image_url"),
	}
	if question.Context == "" {
		// Paragraph-context recovery from sibling-named fields.
		for _, field := range []string{"paragraph", "introduction", "background"} {
			candidate := strings.TrimSpace(asString(raw[field]))
			if looksLikeProse(candidate) {
				question.Context = candidate
				break
			}
		}
	}
	return question
}

func coerceFrames(value any) []Frame {
	entries, ok := value.([]any)
	if !ok {
		if single, isMap := value.(map[string]any); isMap {
			entries = []any{single}
		} else {
			return nil
		}
	}

	var frames []Frame
	for _, entry := range entries {
		raw, isMap := entry.(map[string]any)
		if !isMap {
			continue
		}
		frames = append(frames, Frame{
			Title:      firstString(raw, "title", "name", "focus"),
			Emerging:   decodeFrameTier(raw["emerging"]),
			Developing: decodeFrameTier(raw["developing"]),
			Expanding:  decodeFrameTier(raw["expanding"]),
		})
	}
	return frames
}

func decodeFrameTier(value any) FrameTier {
	switch typed := value.(type) {
	case string:
		return FrameTier{Pattern: strings.TrimSpace(typed)}
	case map[string]any:
		return FrameTier{
			Pattern:  firstString(typed, "pattern", "template", "frame"),
			Examples: coerceStringList(firstValue(typed, "examples", "modelResponses", "model_responses", "models")),
		}
	default:
		return FrameTier{}
	}
}

// consolidateDuplicates merges sections sharing a canonical type into the
// first occurrence. Payload entries are appended, never dropped.
func consolidateDuplicates(doc *Document) []Note {
	var notes []Note
	seen := make(map[SectionType]*Section)
	merged := doc.Sections[:0]
	for i := range doc.Sections {
		section := doc.Sections[i]
		canonical := section.Canonical()
		first, exists := seen[canonical]
		if !exists {
			merged = append(merged, section)
			seen[canonical] = &merged[len(merged)-1]
			continue
		}
		first.Paragraphs = append(first.Paragraphs, section.Paragraphs...)
		first.Words = append(first.Words, section.Words...)
		first.Questions = append(first.Questions, section.Questions...)
		first.Discussion = append(first.Discussion, section.Discussion...)
		first.Frames = append(first.Frames, section.Frames...)
		notes = append(notes, Note{Section: string(canonical), Message: "merged duplicate section"})
	}
	doc.Sections = merged
	return notes
}

// enforceReadingInvariant makes a non-placeholder reading section hold
// exactly readingParagraphCount paragraphs: long passages are flattened to
// sentences and redistributed evenly, short ones are padded with a neutral
// filler sentence.
func enforceReadingInvariant(doc *Document) []Note {
	section := doc.Section(SectionReading)
	if section == nil || section.Placeholder {
		return nil
	}

	var notes []Note
	paragraphs := make([]string, 0, len(section.Paragraphs))
	for _, paragraph := range section.Paragraphs {
		if trimmed := strings.TrimSpace(paragraph); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}

	switch {
	case len(paragraphs) > readingParagraphCount:
		paragraphs = redistributeParagraphs(paragraphs, readingParagraphCount)
		notes = append(notes, Note{Section: string(SectionReading), Message: "redistributed paragraphs to match the reading invariant"})
	case len(paragraphs) < readingParagraphCount:
		for len(paragraphs) < readingParagraphCount {
			paragraphs = append(paragraphs, fillerParagraph)
		}
		notes = append(notes, Note{Section: string(SectionReading), Message: "padded reading passage with filler paragraphs"})
	}
	section.Paragraphs = paragraphs
	return notes
}

// redistributeParagraphs flattens paragraphs to a single sentence list and
// regroups it evenly into count buckets. No sentence is lost or reordered.
func redistributeParagraphs(paragraphs []string, count int) []string {
	var sentences []string
	for _, paragraph := range paragraphs {
		sentences = append(sentences, SplitSentences(paragraph)...)
	}

	base := len(sentences) / count
	extra := len(sentences) % count
	result := make([]string, 0, count)
	cursor := 0
	for bucket := 0; bucket < count; bucket++ {
		size := base
		if bucket < extra {
			size++
		}
		end := cursor + size
		if end > len(sentences) {
			end = len(sentences)
		}
		result = append(result, strings.Join(sentences[cursor:end], " "))
		cursor = end
	}
	return result
}

// requiredSections is the minimal set every normalized document carries.
var requiredSections = []SectionType{SectionWarmup, SectionReading, SectionVocabulary, SectionComprehension}

// backfillRequiredSections appends an explicit placeholder for each required
// type the provider never produced. Placeholders carry no fabricated content.
func backfillRequiredSections(doc *Document) []Note {
	var notes []Note
	for _, required := range requiredSections {
		if doc.Section(required) != nil {
			continue
		}
		doc.Sections = append(doc.Sections, Section{
			Type:        string(required),
			Title:       DefaultTitle(required),
			Placeholder: true,
			Note:        PlaceholderNote,
		})
		notes = append(notes, Note{Section: string(required), Message: "backfilled missing required section"})
	}
	return notes
}

func normalizeEstimatedTime(value map[string]any) string {
	raw := firstValue(value, "estimatedTime", "estimated_time", "duration", "time")
	switch typed := raw.(type) {
	case nil:
		return "30 minutes"
	case float64:
		return fmt.Sprintf("%d minutes", int(typed))
	case string:
		if trimmed := strings.TrimSpace(typed); trimmed != "" {
			return trimmed
		}
		return "30 minutes"
	default:
		return "30 minutes"
	}
}

func firstValue(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := m[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if text := strings.TrimSpace(asString(m[key])); text != "" {
			return text
		}
	}
	return ""
}

func asString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		if typed == float64(int64(typed)) {
			return fmt.Sprintf("%d", int64(typed))
		}
		return fmt.Sprintf("%g", typed)
	case bool:
		return fmt.Sprintf("%t", typed)
	default:
		return ""
	}
}

func asInt(value any) int {
	switch typed := value.(type) {
	case float64:
		return int(typed)
	case string:
		var parsed int
		if _, err := fmt.Sscanf(strings.TrimSpace(typed), "%d", &parsed); err == nil {
			return parsed
		}
	}
	return 0
}

func asBool(value any) bool {
	typed, ok := value.(bool)
	return ok && typed
}
