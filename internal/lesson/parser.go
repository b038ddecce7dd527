package lesson

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// UnparsableError reports that the repair cascade could not recover a
// structured value from the provider output. It carries the error offset and a
// bounded window of the surrounding text for diagnostics.
type UnparsableError struct {
	Offset  int64
	Context string
	Err     error
}

func (e *UnparsableError) Error() string {
	return fmt.Sprintf("unparsable provider response at offset %d near %q: %v", e.Offset, e.Context, e.Err)
}

func (e *UnparsableError) Unwrap() error {
	return e.Err
}

// contextWindow bounds the amount of surrounding text attached to an
// UnparsableError.
const contextWindow = 40

var (
	codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n?(.*?)\\n?```\\s*$")

	// Known explanatory preambles providers put in front of the payload.
	preamble = regexp.MustCompile(`(?i)^\s*(here('s| is)( the| your)?|this is( the| your)?|below is( the| your)?|sure[,!.]?|certainly[,!.]?|of course[,!.]?)[^\n{\[]*\n`)

	// A bare label line such as "JSON:" or "Output:".
	labelLine = regexp.MustCompile(`(?i)^\s*(json|output|response|lesson)\s*:?\s*\n`)

	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// Parse turns raw provider text into a structured value. It applies the
// repair cascade in order: fence stripping, preamble and label stripping,
// quote unwrapping, a strict parse, and then a character-level second-chance
// repair before giving up with an UnparsableError.
func Parse(raw string) (map[string]any, error) {
	body := strings.TrimSpace(raw)
	if match := codeFence.FindStringSubmatch(body); match != nil {
		body = strings.TrimSpace(match[1])
	}
	body = preamble.ReplaceAllString(body, "")
	body = labelLine.ReplaceAllString(body, "")
	body = strings.TrimSpace(body)
	body = unwrapQuotes(body)

	value, err := strictParse(body)
	if err == nil {
		return value, nil
	}

	repaired := repairBody(body)
	value, repairedErr := strictParse(repaired)
	if repairedErr == nil {
		return value, nil
	}

	return nil, unparsable(repaired, repairedErr)
}

// unwrapQuotes removes a single layer of wrapping quotes when the entire body
// is quoted. A double-quoted body is decoded as a JSON string first so inner
// escapes unwind correctly.
func unwrapQuotes(body string) string {
	if len(body) < 2 {
		return body
	}
	first, last := body[0], body[len(body)-1]
	if first == '"' && last == '"' {
		var inner string
		if err := json.Unmarshal([]byte(body), &inner); err == nil {
			inner = strings.TrimSpace(inner)
			if strings.HasPrefix(inner, "{") || strings.HasPrefix(inner, "[") {
				return inner
			}
		}
	}
	if (first == '\'' && last == '\'') || (first == '`' && last == '`') || (first == '"' && last == '"') {
		inner := strings.TrimSpace(body[1 : len(body)-1])
		if strings.HasPrefix(inner, "{") || strings.HasPrefix(inner, "[") {
			return inner
		}
	}
	return body
}

func strictParse(body string) (map[string]any, error) {
	decoder := json.NewDecoder(strings.NewReader(body))
	var value map[string]any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// repairBody applies the second-chance character-level repairs: trailing
// commas, literal newlines inside string runs, and stray backslashes.
func repairBody(body string) string {
	body = trailingComma.ReplaceAllString(body, "$1")
	body = collapseNewlinesInStrings(body)
	body = normalizeBackslashes(body)
	// Trailing commas may only become visible after newline collapsing.
	body = trailingComma.ReplaceAllString(body, "$1")
	return body
}

// collapseNewlinesInStrings replaces literal newlines that appear inside
// string runs with spaces, which JSON forbids but providers emit freely.
func collapseNewlinesInStrings(body string) string {
	var builder strings.Builder
	builder.Grow(len(body))

	inString := false
	escaped := false
	for _, r := range body {
		if escaped {
			escaped = false
			builder.WriteRune(r)
			continue
		}
		switch {
		case r == '\\' && inString:
			escaped = true
			builder.WriteRune(r)
		case r == '"':
			inString = !inString
			builder.WriteRune(r)
		case inString && (r == '\n' || r == '\r'):
			builder.WriteRune(' ')
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// validEscapes are the characters that may legally follow a backslash inside
// a JSON string.
const validEscapes = `"\/bfnrtu`

// normalizeBackslashes doubles backslashes that do not start a valid JSON
// escape sequence.
func normalizeBackslashes(body string) string {
	var builder strings.Builder
	builder.Grow(len(body))

	inString := false
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '"' {
			inString = !inString
			builder.WriteRune(r)
			continue
		}
		if inString && r == '\\' {
			if i+1 < len(runes) && strings.ContainsRune(validEscapes, runes[i+1]) {
				builder.WriteRune(r)
				builder.WriteRune(runes[i+1])
				i++
				continue
			}
			builder.WriteString(`\\`)
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// unparsable builds the terminal parse error with its diagnostic window.
// Never guess further or fabricate a document past this point.
func unparsable(body string, err error) *UnparsableError {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}

	start := int(offset) - contextWindow
	if start < 0 {
		start = 0
	}
	end := int(offset) + contextWindow
	if end > len(body) {
		end = len(body)
	}
	var window string
	if start < end {
		window = body[start:end]
	}

	return &UnparsableError{Offset: offset, Context: window, Err: err}
}
