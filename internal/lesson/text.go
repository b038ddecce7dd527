package lesson

import (
	"regexp"
	"strings"
)

// sentenceBoundary matches a terminal punctuation mark followed by whitespace.
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// SplitSentences splits prose into sentences. Terminal punctuation stays
// attached to its sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	var sentences []string
	for _, part := range strings.Split(marked, "\x00") {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// CountSentences returns the number of sentences in a paragraph.
func CountSentences(paragraph string) int {
	return len(SplitSentences(paragraph))
}

var blankLine = regexp.MustCompile(`\n\s*\n`)

// minimum length before a single run of prose is worth re-segmenting into
// sentence batches instead of being kept as one paragraph
const longProseThreshold = 200

// SplitProse converts a single prose string into paragraphs. Blank lines win;
// when that yields at most one element and the text is long, sentences are
// regrouped into batches of three.
func SplitProse(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var paragraphs []string
	for _, part := range blankLine.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	if len(paragraphs) > 1 || len(text) < longProseThreshold {
		return paragraphs
	}

	return batchSentences(SplitSentences(text), 3)
}

// batchSentences regroups sentences into paragraphs of at most size sentences.
func batchSentences(sentences []string, size int) []string {
	var paragraphs []string
	for start := 0; start < len(sentences); start += size {
		end := start + size
		if end > len(sentences) {
			end = len(sentences)
		}
		paragraphs = append(paragraphs, strings.Join(sentences[start:end], " "))
	}
	return paragraphs
}

// looksLikeQuestion reports whether text reads as a question rather than
// background prose.
func looksLikeQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.Contains(trimmed, "?") {
		return true
	}
	lowered := strings.ToLower(trimmed)
	for _, prefix := range []string{"what ", "why ", "how ", "when ", "where ", "who ", "which ", "do ", "does ", "did ", "is ", "are ", "can ", "could ", "would ", "should "} {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}

// looksLikeProse reports whether text is background prose: it contains a
// sentence terminator and does not itself read as a question.
func looksLikeProse(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if !strings.ContainsAny(trimmed, ".!") {
		return false
	}
	return !looksLikeQuestion(trimmed)
}
