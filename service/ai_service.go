package service

import (
	"context"

	"github.com/tieubaoca/docchat-be/types"
)

// AIService abstracts the language-model provider so that nodes never touch
// a concrete client. OpenAIService and GeminiService both implement it.
type AIService interface {
	// Complete runs a single non-streaming completion. Used by the planner.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ChatStream runs a streaming completion, delivering chunks through the
	// handler in arrival order. Returns only after the stream is drained.
	ChatStream(ctx context.Context, messages []types.Message, handler types.StreamHandler) error

	// Embed generates one embedding vector per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
