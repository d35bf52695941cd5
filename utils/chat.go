package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/tieubaoca/docchat-be/types"
)

// EstimateTokenCount approximates the token count of a text as word count
// times 1.3, rounded up. A heuristic, not a real tokenizer.
func EstimateTokenCount(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	words := len(strings.Fields(trimmed))
	return int(math.Ceil(float64(words) * 1.3))
}

// TruncateChatHistory drops oldest messages until the JSON-serialized history
// fits within maxLength characters. Messages are never cut mid-message.
func TruncateChatHistory(history []types.Message, maxLength int) []types.Message {
	serialized, err := json.Marshal(history)
	if err == nil && len(serialized) <= maxLength {
		return history
	}

	truncated := make([]types.Message, 0, len(history))
	currentLength := 2 // the surrounding brackets

	for i := len(history) - 1; i >= 0; i-- {
		msgBytes, err := json.Marshal(history[i])
		if err != nil {
			continue
		}
		messageLength := len(msgBytes) + 1
		if currentLength+messageLength > maxLength {
			break
		}
		truncated = append([]types.Message{history[i]}, truncated...)
		currentLength += messageLength
	}

	return truncated
}

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	bareValueRe     = regexp.MustCompile(`:\s*([A-Za-z_][A-Za-z0-9_\-]*)\s*([,}\]])`)
)

// ParseJSONSafely unmarshals raw into v, applying a repair pass when strict
// parsing fails: trailing commas are stripped and bare identifier keys and
// values are quoted. LLM output is the expected input here.
func ParseJSONSafely(raw string, v interface{}) error {
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}

	fixed := trailingCommaRe.ReplaceAllString(raw, "$1")
	fixed = bareKeyRe.ReplaceAllString(fixed, `$1"$2":`)
	fixed = bareValueRe.ReplaceAllStringFunc(fixed, func(match string) string {
		sub := bareValueRe.FindStringSubmatch(match)
		switch sub[1] {
		case "true", "false", "null":
			return match
		}
		return fmt.Sprintf(`: "%s"%s`, sub[1], sub[2])
	})
	fixed = strings.TrimSpace(fixed)

	if err := json.Unmarshal([]byte(fixed), v); err != nil {
		return fmt.Errorf("failed to parse JSON after repair: %w", err)
	}
	return nil
}

// StripCodeFences removes a fenced code block wrapper and any prose before
// the first opening brace, leaving the raw JSON payload.
func StripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if start := strings.Index(cleaned, "{"); start > 0 {
		cleaned = cleaned[start:]
	}
	return cleaned
}
