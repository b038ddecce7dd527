package lesson

import (
	"log/slog"
	"regexp"
	"strings"
)

// Extractors are the defensive second-pass readers the presentation layer
// uses when its canonical lookup comes up empty. Provider output varies
// enough that one normalization pass cannot guarantee every caller's lookup
// pattern succeeds, so each lookup is an ordered list of named strategies and
// the first strategy producing at least one question wins outright. Results
// from different strategies are never merged.

// ExtractQuestions reads a question set from a normalized document.
func ExtractQuestions(kind SectionType, doc *Document) []Question {
	section := doc.Section(kind)
	if section == nil {
		return nil
	}
	if len(section.Questions) > 0 {
		return section.Questions
	}
	var questions []Question
	for _, discussion := range section.Discussion {
		questions = append(questions, Question{Text: discussion.Text, Explanation: discussion.Context})
	}
	return questions
}

// extractStrategy is one independently testable lookup step.
type extractStrategy struct {
	name string
	run  func(kind SectionType, root map[string]any) []Question
}

var extractStrategies = []extractStrategy{
	{name: "section questions sequence", run: sectionQuestionSequence},
	{name: "section questions mapping", run: sectionQuestionMapping},
	{name: "section keys as questions", run: sectionKeysAsQuestions},
	{name: "root questions sequence", run: rootQuestionSequence},
	{name: "root questions mapping", run: rootQuestionMapping},
	{name: "root keys as questions", run: rootKeysAsQuestions},
	{name: "root prose scan", run: rootProseScan},
}

// ExtractQuestionsRaw reads a question set from a raw parsed document that
// may never have reached a conforming sections array. Strategies are tried in
// order; the first one producing at least one question terminates the search.
func ExtractQuestionsRaw(kind SectionType, root map[string]any) []Question {
	for _, strategy := range extractStrategies {
		if questions := strategy.run(kind, root); len(questions) > 0 {
			slog.Default().Debug("extracted questions",
				"kind", kind,
				"strategy", strategy.name,
				"count", len(questions),
			)
			return questions
		}
	}
	return nil
}

// findRawSection locates the first raw section whose tag resolves to kind.
func findRawSection(kind SectionType, root map[string]any) map[string]any {
	entries, ok := root["sections"].([]any)
	if !ok {
		return nil
	}
	for _, entry := range entries {
		section, isMap := entry.(map[string]any)
		if !isMap {
			continue
		}
		tag := asString(firstValue(section, "type", "sectionType", "kind"))
		if canonical, known := CanonicalType(tag); known && canonical == kind {
			return section
		}
	}
	return nil
}

func sectionQuestionSequence(kind SectionType, root map[string]any) []Question {
	section := findRawSection(kind, root)
	if section == nil {
		return nil
	}
	return questionsFromSequence(firstValue(section, "questions", "discussionQuestions", "items"))
}

func sectionQuestionMapping(kind SectionType, root map[string]any) []Question {
	section := findRawSection(kind, root)
	if section == nil {
		return nil
	}
	return questionsFromMapping(firstValue(section, "questions", "discussionQuestions", "items"))
}

func sectionKeysAsQuestions(kind SectionType, root map[string]any) []Question {
	section := findRawSection(kind, root)
	if section == nil {
		return nil
	}
	return questionsFromKeys(section)
}

func rootQuestionSequence(kind SectionType, root map[string]any) []Question {
	return questionsFromSequence(firstValue(root, "questions", string(kind)))
}

func rootQuestionMapping(kind SectionType, root map[string]any) []Question {
	return questionsFromMapping(firstValue(root, "questions", string(kind)))
}

func rootKeysAsQuestions(kind SectionType, root map[string]any) []Question {
	return questionsFromKeys(root)
}

func questionsFromSequence(value any) []Question {
	entries, ok := value.([]any)
	if !ok {
		return nil
	}
	var questions []Question
	for _, entry := range entries {
		switch item := entry.(type) {
		case string:
			if text := strings.TrimSpace(item); text != "" {
				questions = append(questions, Question{Text: text})
			}
		case map[string]any:
			if question := decodeQuestion(item); question.Text != "" {
				questions = append(questions, question)
			}
		}
	}
	return questions
}

func questionsFromMapping(value any) []Question {
	mapping, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	var questions []Question
	for _, key := range sortedKeys(mapping) {
		if !looksLikeQuestion(key) {
			continue
		}
		questions = append(questions, Question{Text: key, Answer: strings.TrimSpace(asString(mapping[key]))})
	}
	return questions
}

// questionsFromKeys reads keys placed directly on an object, not nested
// under a questions field, that look like question text.
func questionsFromKeys(object map[string]any) []Question {
	var questions []Question
	for _, key := range sortedKeys(object) {
		if !looksLikeQuestion(key) {
			continue
		}
		questions = append(questions, Question{Text: key, Answer: strings.TrimSpace(asString(object[key]))})
	}
	return questions
}

// proseScanMinLength is the threshold below which root string fields are not
// scanned for embedded question/answer pairs.
const proseScanMinLength = 80

var embeddedQuestion = regexp.MustCompile(`([^.!?]+\?)\s*([^?]*?[.!])?`)

// rootProseScan is the last resort for comprehension and discussion: scan
// long root string fields for question/answer pairs delimited by sentence
// punctuation.
func rootProseScan(kind SectionType, root map[string]any) []Question {
	if kind != SectionComprehension && kind != SectionDiscussion {
		return nil
	}
	var questions []Question
	for _, key := range sortedKeys(root) {
		text, ok := root[key].(string)
		if !ok || len(text) < proseScanMinLength {
			continue
		}
		for _, match := range embeddedQuestion.FindAllStringSubmatch(text, -1) {
			question := Question{Text: strings.TrimSpace(match[1])}
			if len(match) > 2 {
				question.Answer = strings.TrimSpace(match[2])
			}
			questions = append(questions, question)
		}
	}
	return questions
}
