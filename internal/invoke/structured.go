package invoke

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/kaptinlin/jsonrepair"
)

// Validator is implemented by stage output schemas so they can be checked
// after decoding.
type Validator interface {
	Validate() error
}

// KeyCasing names the key convention a schema expects.
type KeyCasing int

const (
	// SnakeCase expects keys like "task_type".
	SnakeCase KeyCasing = iota
	// CamelCase expects keys like "isClearEnough".
	CamelCase
)

// ExtractJSON returns the first JSON object or array embedded in text.
// Models frequently wrap JSON in prose or markdown fences; everything
// outside the outermost brackets is discarded.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return "", fmt.Errorf("no JSON object or array found in response (%d chars)", len(text))
	}

	closing := "}"
	if text[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(text, closing)
	if end <= start {
		return "", fmt.Errorf("unterminated JSON value in response (%d chars)", len(text))
	}
	return text[start : end+1], nil
}

// DecodeJSON extracts the JSON payload from model output, unmarshals it
// into out, and validates it. Recovery is layered:
//
//  1. If unmarshaling fails, the payload is run through jsonrepair once
//     and retried.
//  2. If validation fails, one key-casing normalization pass rewrites all
//     object keys to the expected casing and the value is revalidated.
//
// If normalization still fails, the original validation error is
// propagated. All failures surface as *ParseError carrying the first 200
// characters of the offending text.
func DecodeJSON(text string, casing KeyCasing, out Validator) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return newParseError(text, err)
	}

	if uerr := json.Unmarshal([]byte(raw), out); uerr != nil {
		repaired, rerr := jsonrepair.JSONRepair(raw)
		if rerr != nil {
			return newParseError(text, uerr)
		}
		if rerr := json.Unmarshal([]byte(repaired), out); rerr != nil {
			return newParseError(text, uerr)
		}
		raw = repaired
	}

	verr := out.Validate()
	if verr == nil {
		return nil
	}

	// Phase two: the shape may be right with the wrong key convention.
	normalized, nerr := NormalizeKeys(raw, casing)
	if nerr == nil {
		if uerr := json.Unmarshal([]byte(normalized), out); uerr == nil {
			if out.Validate() == nil {
				return nil
			}
		}
	}

	return newParseError(text, verr)
}

// NormalizeKeys rewrites every object key in the JSON text to the given
// casing, recursively through nested objects and arrays. Values are left
// untouched.
func NormalizeKeys(jsonText string, casing KeyCasing) (string, error) {
	var value any
	if err := json.Unmarshal([]byte(jsonText), &value); err != nil {
		return "", fmt.Errorf("normalize keys: %w", err)
	}

	encoded, err := json.Marshal(convertKeys(value, casing))
	if err != nil {
		return "", fmt.Errorf("normalize keys: %w", err)
	}
	return string(encoded), nil
}

func convertKeys(value any, casing KeyCasing) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[convertKey(key, casing)] = convertKeys(child, casing)
		}
		return out
	case []any:
		for i := range v {
			v[i] = convertKeys(v[i], casing)
		}
		return v
	default:
		return value
	}
}

// convertKey rebuilds a key in the target casing from its words. Words
// are split on underscores, hyphens, spaces, and camel humps.
func convertKey(key string, casing KeyCasing) string {
	words := splitWords(key)
	if len(words) == 0 {
		return key
	}

	switch casing {
	case CamelCase:
		var b strings.Builder
		b.WriteString(words[0])
		for _, w := range words[1:] {
			b.WriteString(strings.ToUpper(w[:1]))
			b.WriteString(w[1:])
		}
		return b.String()
	default:
		return strings.Join(words, "_")
	}
}

// splitWords breaks a key into lowercase words.
func splitWords(key string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}
