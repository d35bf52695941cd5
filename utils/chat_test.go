package utils

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tieubaoca/docchat-be/types"
)

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t ", 0},
		{"single word", "hello", 2},       // ceil(1 * 1.3)
		{"two words", "hello world", 3},   // ceil(2 * 1.3)
		{"ten words", strings.Repeat("word ", 10), 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokenCount(tt.text); got != tt.want {
				t.Errorf("EstimateTokenCount(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestTruncateChatHistoryKeepsShortHistory(t *testing.T) {
	history := []types.Message{
		{Role: types.RoleUser, Content: "hi"},
		{Role: types.RoleAssistant, Content: "hello"},
	}
	got := TruncateChatHistory(history, 2000)
	if len(got) != 2 {
		t.Fatalf("short history should be untouched, got %d messages", len(got))
	}
}

func TestTruncateChatHistoryDropsOldestFirst(t *testing.T) {
	long := strings.Repeat("x", 400)
	history := []types.Message{
		{Role: types.RoleUser, Content: "oldest " + long},
		{Role: types.RoleAssistant, Content: "middle " + long},
		{Role: types.RoleUser, Content: "newest " + long},
	}

	got := TruncateChatHistory(history, 1000)
	if len(got) == 0 || len(got) >= len(history) {
		t.Fatalf("expected partial truncation, got %d of %d messages", len(got), len(history))
	}
	// The kept messages must be the most recent ones, in order.
	for i := range got {
		want := history[len(history)-len(got)+i]
		if got[i] != want {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want)
		}
	}

	serialized, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if len(serialized) > 1000 {
		t.Errorf("truncated history serializes to %d chars, want <= 1000", len(serialized))
	}
}

func TestTruncateChatHistoryNeverSplitsMessages(t *testing.T) {
	history := []types.Message{
		{Role: types.RoleUser, Content: strings.Repeat("a", 5000)},
	}
	got := TruncateChatHistory(history, 100)
	if len(got) != 0 {
		t.Errorf("a message that cannot fit must be dropped whole, got %d messages", len(got))
	}
}

func TestParseJSONSafelyStrict(t *testing.T) {
	var v map[string]string
	if err := ParseJSONSafely(`{"a": "b"}`, &v); err != nil {
		t.Fatal(err)
	}
	if v["a"] != "b" {
		t.Errorf("got %v", v)
	}
}

func TestParseJSONSafelyRepairsLLMOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"trailing comma", `{"action": {"name": "query_document", "args": {},}}`},
		{"bare keys", `{action: {name: "query_document", args: {}}}`},
		{"bare keys and values with trailing comma", `{action: {name: query_document, args: {},}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decision types.PlannerDecision
			if err := ParseJSONSafely(tt.raw, &decision); err != nil {
				t.Fatalf("ParseJSONSafely(%q) failed: %v", tt.raw, err)
			}
			if decision.Action.Name != "query_document" {
				t.Errorf("action name = %q, want query_document", decision.Action.Name)
			}
			if decision.Action.Args == nil {
				t.Error("args should unmarshal to an empty map, not nil")
			}
		})
	}
}

func TestParseJSONSafelyPreservesBooleans(t *testing.T) {
	var v map[string]interface{}
	if err := ParseJSONSafely(`{enabled: true, missing: null,}`, &v); err != nil {
		t.Fatal(err)
	}
	if v["enabled"] != true {
		t.Errorf("enabled = %v, want true", v["enabled"])
	}
}

func TestParseJSONSafelyRejectsGarbage(t *testing.T) {
	var v map[string]interface{}
	if err := ParseJSONSafely("not json at all", &v); err == nil {
		t.Error("expected an error for unparseable input")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain json", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced without language", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose before fence", "Here is my plan:\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.raw); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStripThenParsePlannerOutput(t *testing.T) {
	raw := "Here is my plan:\n```json\n{action: {name: generate_response_pure_text, args: {},}}\n```"
	var decision types.PlannerDecision
	if err := ParseJSONSafely(StripCodeFences(raw), &decision); err != nil {
		t.Fatal(err)
	}
	if decision.Action.Name != "generate_response_pure_text" {
		t.Errorf("action name = %q, want generate_response_pure_text", decision.Action.Name)
	}
}
