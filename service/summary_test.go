package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tieubaoca/docchat-be/types"
)

type cannedAI struct {
	response string
	err      error
}

func (c *cannedAI) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.response, c.err
}

func (c *cannedAI) ChatStream(ctx context.Context, messages []types.Message, handler types.StreamHandler) error {
	return nil
}

func (c *cannedAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func TestGenerateSummaryAndQuestions(t *testing.T) {
	ai := &cannedAI{
		response: "```json\n{\"summary\": \"A short summary.\", \"questions\": [\"Q1?\", \"Q2?\", \"Q3?\"]}\n```",
	}
	got := GenerateSummaryAndQuestions(context.Background(), ai, "document text")
	if got.Summary != "A short summary." {
		t.Errorf("summary = %q", got.Summary)
	}
	if len(got.Questions) != 3 {
		t.Errorf("got %d questions, want 3", len(got.Questions))
	}
}

func TestGenerateSummaryAndQuestionsFallsBack(t *testing.T) {
	tests := []struct {
		name string
		ai   *cannedAI
		text string
	}{
		{"model failure", &cannedAI{err: errors.New("rate limited")}, "text"},
		{"unparseable output", &cannedAI{response: "I cannot do that"}, "text"},
		{"empty document", &cannedAI{response: "{}"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateSummaryAndQuestions(context.Background(), tt.ai, tt.text)
			if got.Summary != "Unable to generate summary for this document." {
				t.Errorf("expected fallback summary, got %q", got.Summary)
			}
			if len(got.Questions) != 3 {
				t.Errorf("expected 3 default questions, got %d", len(got.Questions))
			}
		})
	}
}
