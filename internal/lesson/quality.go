package lesson

import "fmt"

// QualityPolicy is the structural acceptance predicate gating generation
// retries. It checks structure only; semantic quality is out of scope.
type QualityPolicy struct {
	MinReadingParagraphs     int
	MinSentencesPerParagraph int
}

// DefaultQualityPolicy returns the thresholds currently in effect.
func DefaultQualityPolicy() QualityPolicy {
	return QualityPolicy{
		MinReadingParagraphs:     5,
		MinSentencesPerParagraph: 3,
	}
}

// IsAcceptable reports whether the document clears the gate.
func (p QualityPolicy) IsAcceptable(doc *Document) bool {
	return p.Evaluate(doc) == nil
}

// Evaluate checks the document against the policy and returns the first
// violation so attempt records can carry it.
//
// The gate deliberately checks the reading section only. Other sections
// degrade to placeholders or empty states that the presentation layer already
// tolerates, so rejecting a whole document for them would burn attempts
// without improving what the caller gets.
func (p QualityPolicy) Evaluate(doc *Document) error {
	reading := doc.Section(SectionReading)
	if reading == nil || reading.Placeholder {
		return fmt.Errorf("reading section is missing")
	}
	if len(reading.Paragraphs) < p.MinReadingParagraphs {
		return fmt.Errorf("reading section has %d paragraphs, want at least %d", len(reading.Paragraphs), p.MinReadingParagraphs)
	}
	for i, paragraph := range reading.Paragraphs {
		if count := CountSentences(paragraph); count < p.MinSentencesPerParagraph {
			return fmt.Errorf("reading paragraph %d has %d sentences, want at least %d", i+1, count, p.MinSentencesPerParagraph)
		}
	}
	return nil
}
