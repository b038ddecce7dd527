// Package generator turns a lesson request into a normalized lesson
// document through a bounded loop of model calls, response repair, and
// quality checks.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/lessoncraft/internal/inference"
	"github.com/at-ishikawa/lessoncraft/internal/lesson"
)

// ErrGenerationExhausted means every attempt produced an unusable or
// below-quality document.
var ErrGenerationExhausted = errors.New("generation attempts exhausted")

const (
	DefaultMaxAttempts = 3

	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
)

// Stage names the pipeline step where an attempt ended.
type Stage string

const (
	StageInference Stage = "inference"
	StageParse     Stage = "parse"
	StageQuality   Stage = "quality"
	StageAccepted  Stage = "accepted"
)

// Attempt records the outcome of one generation attempt.
type Attempt struct {
	Number int
	Stage  Stage
	Err    error
	Notes  []lesson.Note
}

type Generator struct {
	client      inference.Client
	policy      lesson.QualityPolicy
	maxAttempts int
	temperature float32
	maxTokens   int
}

type Option func(*Generator)

func WithMaxAttempts(attempts int) Option {
	return func(generator *Generator) {
		generator.maxAttempts = attempts
	}
}

func WithQualityPolicy(policy lesson.QualityPolicy) Option {
	return func(generator *Generator) {
		generator.policy = policy
	}
}

func WithTemperature(temperature float32) Option {
	return func(generator *Generator) {
		generator.temperature = temperature
	}
}

func NewGenerator(client inference.Client, options ...Option) *Generator {
	generator := &Generator{
		client:      client,
		policy:      lesson.DefaultQualityPolicy(),
		maxAttempts: DefaultMaxAttempts,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}
	for _, option := range options {
		option(generator)
	}
	return generator
}

// Generate runs up to maxAttempts generation attempts and returns the first
// document that passes the quality policy. A policy refusal from the model
// stops the loop immediately. When attempts run out, the last normalized
// document is returned alongside ErrGenerationExhausted so the caller can
// still inspect what was produced.
func (generator *Generator) Generate(
	ctx context.Context,
	request lesson.Request,
) (*lesson.Document, []Attempt, error) {
	if err := request.Validate(); err != nil {
		return nil, nil, fmt.Errorf("request.Validate() > %w", err)
	}

	prompt := buildPrompt(request)
	attempts := make([]Attempt, 0, generator.maxAttempts)
	var lastDocument *lesson.Document

	for number := 1; number <= generator.maxAttempts; number++ {
		document, attempt := generator.attempt(ctx, number, prompt)
		attempts = append(attempts, attempt)

		if attempt.Stage == StageAccepted {
			slog.Default().Info("lesson generated",
				"topic", request.Topic,
				"level", request.Level,
				"attempts", number,
			)
			return document, attempts, nil
		}

		slog.Default().Warn("generation attempt failed",
			"attempt", number,
			"stage", attempt.Stage,
			"error", attempt.Err,
		)
		if inference.IsRefusalError(attempt.Err) {
			return nil, attempts, fmt.Errorf("attempt %d refused > %w", number, attempt.Err)
		}
		if ctx.Err() != nil {
			return nil, attempts, fmt.Errorf("attempt %d > %w", number, ctx.Err())
		}
		if document != nil {
			lastDocument = document
		}
	}

	return lastDocument, attempts, fmt.Errorf("%d attempts > %w", generator.maxAttempts, ErrGenerationExhausted)
}

func (generator *Generator) attempt(
	ctx context.Context,
	number int,
	prompt string,
) (*lesson.Document, Attempt) {
	attempt := Attempt{Number: number}

	raw, err := generator.client.Complete(ctx, inference.CompletionRequest{
		Prompt:      prompt,
		Temperature: generator.temperature,
		MaxTokens:   generator.maxTokens,
	})
	if err != nil {
		attempt.Stage = StageInference
		attempt.Err = fmt.Errorf("client.Complete() > %w", err)
		return nil, attempt
	}

	value, err := lesson.Parse(raw)
	if err != nil {
		attempt.Stage = StageParse
		attempt.Err = fmt.Errorf("lesson.Parse() > %w", err)
		return nil, attempt
	}

	document, notes := lesson.Normalize(value)
	attempt.Notes = notes

	if err := generator.policy.Evaluate(document); err != nil {
		attempt.Stage = StageQuality
		attempt.Err = fmt.Errorf("policy.Evaluate() > %w", err)
		return document, attempt
	}

	attempt.Stage = StageAccepted
	return document, attempt
}
