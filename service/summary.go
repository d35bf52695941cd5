package service

import (
	"context"
	"log"

	"github.com/tieubaoca/docchat-be/types"
	"github.com/tieubaoca/docchat-be/utils"
)

const summaryInputLimit = 15000

var defaultQuestions = []string{
	"What is this document about?",
	"What are the key points of this document?",
	"Can you summarize the main sections?",
}

// GenerateSummaryAndQuestions asks the model for a short summary of the
// document plus three suggested questions. Model or parse failures fall back
// to a generic summary so that upload never fails on this step.
func GenerateSummaryAndQuestions(ctx context.Context, ai AIService, documentText string) types.SummaryResponse {
	fallback := types.SummaryResponse{
		Summary:   "Unable to generate summary for this document.",
		Questions: defaultQuestions,
	}
	if documentText == "" {
		return fallback
	}
	if len(documentText) > summaryInputLimit {
		documentText = documentText[:summaryInputLimit]
	}

	raw, err := ai.Complete(ctx, summarySystemPrompt, documentText)
	if err != nil {
		log.Printf("Summary generation failed: %v", err)
		return fallback
	}

	var parsed types.SummaryResponse
	if err := utils.ParseJSONSafely(utils.StripCodeFences(raw), &parsed); err != nil {
		log.Printf("Failed to parse summary response: %v", err)
		return fallback
	}
	if parsed.Summary == "" {
		return fallback
	}
	if len(parsed.Questions) == 0 {
		parsed.Questions = defaultQuestions
	}
	return parsed
}
