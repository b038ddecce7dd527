// Package inference defines the abstract provider boundary for lesson and
// image generation. Retry policy for transport failures lives in the concrete
// clients; attempt policy for content failures lives in the generator.
package inference

import (
	"context"
	"errors"
	"strings"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client produces raw lesson text from a prompt. The returned text is close
// to but not guaranteed to be valid structured data; parsing and repair are
// the caller's responsibility.
type Client interface {
	Complete(ctx context.Context, request CompletionRequest) (string, error)
}

// ImageClient produces illustrative images from a scene description. A nil
// result with an error is expected under failure; callers degrade to no
// image rather than failing the document.
type ImageClient interface {
	GenerateImage(ctx context.Context, request ImageRequest) ([]byte, error)
}

// CompletionRequest carries one prompt with its generation parameters.
type CompletionRequest struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// ImageRequest carries a scene description plus an opaque identifier used
// only for logging.
type ImageRequest struct {
	Description string
	RequestID   string
}

// ErrPolicyRestricted reports that the provider explicitly refused the topic.
// Retrying cannot help, so the generator surfaces it immediately.
var ErrPolicyRestricted = errors.New("provider refused the requested topic")

// refusalPhrases are the known refusal phrasings providers embed in error
// messages or in the response body itself.
var refusalPhrases = []string{
	"i can't assist",
	"i cannot assist",
	"i'm unable to help",
	"i am unable to help",
	"cannot fulfill this request",
	"against our content policy",
	"content policy violation",
	"content_policy_violation",
}

// IsRefusal reports whether a provider message matches known refusal
// phrasing.
func IsRefusal(message string) bool {
	lowered := strings.ToLower(message)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// IsRefusalError reports whether an error from a client represents a policy
// refusal. Refusals are detected both by sentinel and by phrasing, since
// transport wrappers do not always preserve the error chain.
func IsRefusalError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPolicyRestricted) {
		return true
	}
	return IsRefusal(err.Error())
}

const (
	// DefaultMaxRetryAttempts bounds transport-level retries inside a client.
	DefaultMaxRetryAttempts = 3
)
