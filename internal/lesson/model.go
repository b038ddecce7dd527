// Package lesson defines the canonical lesson document model together with the
// ingestion pipeline that turns raw provider output into it: the repair parser,
// the section normalizer, the structural quality gate, and the defensive
// question extractors.
package lesson

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Level is a CEFR proficiency tier.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// Levels returns all proficiency tiers in ascending order.
func Levels() []Level {
	return []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}
}

// Request holds the caller parameters for a single lesson generation.
// It is immutable once built and consumed once by the generator.
type Request struct {
	Topic              string   `json:"topic" validate:"required"`
	Level              Level    `json:"level" validate:"required,oneof=A1 A2 B1 B2 C1 C2"`
	Focus              string   `json:"focus"`
	DurationMinutes    int      `json:"duration_minutes" validate:"required,gt=0"`
	KnownVocabulary    []string `json:"known_vocabulary,omitempty"`
	RequiredVocabulary []string `json:"required_vocabulary,omitempty"`
}

var requestValidator = validator.New()

// Validate checks the request before it is turned into a prompt.
func (r Request) Validate() error {
	if err := requestValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid lesson request: %w", err)
	}
	return nil
}

// SectionType is a canonical section discriminant.
type SectionType string

const (
	SectionWarmup         SectionType = "warmup"
	SectionReading        SectionType = "reading"
	SectionVocabulary     SectionType = "vocabulary"
	SectionComprehension  SectionType = "comprehension"
	SectionSentenceFrames SectionType = "sentenceFrames"
	SectionDiscussion     SectionType = "discussion"
	SectionQuiz           SectionType = "quiz"
)

// SectionTypes returns the canonical section types in default rendering order.
func SectionTypes() []SectionType {
	return []SectionType{
		SectionWarmup,
		SectionReading,
		SectionVocabulary,
		SectionComprehension,
		SectionSentenceFrames,
		SectionDiscussion,
		SectionQuiz,
	}
}

// sectionAliases maps folded tag spellings to their canonical type. Keys are
// lower-cased with spaces, hyphens, and underscores removed.
var sectionAliases = map[string]SectionType{
	"warmup":         SectionWarmup,
	"reading":        SectionReading,
	"readingpassage": SectionReading,
	"passage":        SectionReading,
	"vocabulary":     SectionVocabulary,
	"vocab":          SectionVocabulary,
	"words":          SectionVocabulary,
	"comprehension":  SectionComprehension,
	"questions":      SectionComprehension,
	"sentenceframes": SectionSentenceFrames,
	"grammar":        SectionSentenceFrames,
	"frames":         SectionSentenceFrames,
	"discussion":     SectionDiscussion,
	"speaking":       SectionDiscussion,
	"conversation":   SectionDiscussion,
	"quiz":           SectionQuiz,
	"assessment":     SectionQuiz,
	"test":           SectionQuiz,
}

// CanonicalType resolves a raw section tag to its canonical type. Matching is
// case-insensitive and ignores spaces, hyphens, and underscores.
func CanonicalType(tag string) (SectionType, bool) {
	folded := strings.ToLower(tag)
	folded = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(folded)
	sectionType, ok := sectionAliases[folded]
	return sectionType, ok
}

var defaultTitles = map[SectionType]string{
	SectionWarmup:         "Warm-Up",
	SectionReading:        "Reading Passage",
	SectionVocabulary:     "Vocabulary",
	SectionComprehension:  "Comprehension Questions",
	SectionSentenceFrames: "Sentence Frames",
	SectionDiscussion:     "Discussion",
	SectionQuiz:           "Quiz",
}

// DefaultTitle returns the fixed per-type title used when a section arrives
// without one.
func DefaultTitle(sectionType SectionType) string {
	if title, ok := defaultTitles[sectionType]; ok {
		return title
	}
	return defaultTitles[SectionWarmup]
}

// PlaceholderNote marks a section that the provider never produced. The
// presentation layer must render it as a neutral empty state.
const PlaceholderNote = "not provided by generation"

// Document is the canonical, post-normalization lesson.
type Document struct {
	Title         string    `json:"title" yaml:"title"`
	Level         string    `json:"level" yaml:"level"`
	Focus         string    `json:"focus" yaml:"focus"`
	EstimatedTime string    `json:"estimatedTime" yaml:"estimated_time"`
	Sections      []Section `json:"sections" yaml:"sections"`
}

// Section is one tagged variant of lesson content. Type keeps the tag the
// provider used (after inference), which may be an alias of the canonical
// type; lookups go through Canonical.
type Section struct {
	Type        string               `json:"type" yaml:"type"`
	Title       string               `json:"title" yaml:"title"`
	Placeholder bool                 `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Note        string               `json:"note,omitempty" yaml:"note,omitempty"`
	Paragraphs  []string             `json:"paragraphs,omitempty" yaml:"paragraphs,omitempty"`
	Words       []VocabWord          `json:"words,omitempty" yaml:"words,omitempty"`
	Questions   []Question           `json:"questions,omitempty" yaml:"questions,omitempty"`
	Discussion  []DiscussionQuestion `json:"discussionQuestions,omitempty" yaml:"discussion_questions,omitempty"`
	Frames      []Frame              `json:"pedagogicalFrames,omitempty" yaml:"pedagogical_frames,omitempty"`
}

// Canonical resolves the section's tag to a canonical type. Sections that
// survived normalization always resolve; the fallback mirrors the
// normalizer's.
func (s Section) Canonical() SectionType {
	if sectionType, ok := CanonicalType(s.Type); ok {
		return sectionType
	}
	return SectionWarmup
}

// Section returns the first section matching the canonical type, or nil.
func (d *Document) Section(sectionType SectionType) *Section {
	for i := range d.Sections {
		if d.Sections[i].Canonical() == sectionType {
			return &d.Sections[i]
		}
	}
	return nil
}

// VocabWord is a single vocabulary entry. Only Term is guaranteed after
// normalization; the rest is best effort.
type VocabWord struct {
	Term          string        `json:"term" yaml:"term"`
	PartOfSpeech  string        `json:"partOfSpeech,omitempty" yaml:"part_of_speech,omitempty"`
	Definition    string        `json:"definition,omitempty" yaml:"definition,omitempty"`
	Example       string        `json:"example,omitempty" yaml:"example,omitempty"`
	Pronunciation Pronunciation `json:"pronunciation,omitempty" yaml:"pronunciation,omitempty"`
	SemanticMap   *SemanticMap  `json:"semanticMap,omitempty" yaml:"semantic_map,omitempty"`
	ImageURL      string        `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

// Pronunciation holds a syllable breakdown with a stress marker.
type Pronunciation struct {
	Syllables   []string `json:"syllables,omitempty" yaml:"syllables,omitempty"`
	StressIndex int      `json:"stressIndex" yaml:"stress_index"`
	Phonetic    string   `json:"phonetic,omitempty" yaml:"phonetic,omitempty"`
}

// SemanticMap groups a word's semantic neighborhood.
type SemanticMap struct {
	Synonyms        []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	Antonyms        []string `json:"antonyms,omitempty" yaml:"antonyms,omitempty"`
	RelatedConcepts []string `json:"relatedConcepts,omitempty" yaml:"related_concepts,omitempty"`
	Contexts        []string `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	Collocations    []string `json:"collocations,omitempty" yaml:"collocations,omitempty"`
}

// Question is a comprehension or quiz item.
type Question struct {
	Text        string   `json:"question" yaml:"question"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	Answer      string   `json:"answer,omitempty" yaml:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// DiscussionQuestion is a speaking prompt with background prose and an
// optional illustrative-image instruction.
type DiscussionQuestion struct {
	Text        string `json:"question" yaml:"question"`
	Context     string `json:"context,omitempty" yaml:"context,omitempty"`
	ImagePrompt string `json:"imagePrompt,omitempty" yaml:"image_prompt,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

// Frame is a sentence frame with a three-tier scaffold.
type Frame struct {
	Title      string    `json:"title,omitempty" yaml:"title,omitempty"`
	Emerging   FrameTier `json:"emerging" yaml:"emerging"`
	Developing FrameTier `json:"developing" yaml:"developing"`
	Expanding  FrameTier `json:"expanding" yaml:"expanding"`
}

// FrameTier is one scaffold tier: a pattern template plus model responses.
type FrameTier struct {
	Pattern  string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}
