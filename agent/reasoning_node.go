package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tieubaoca/docchat-be/tools"
	"github.com/tieubaoca/docchat-be/types"
	"github.com/tieubaoca/docchat-be/utils"
)

const (
	noContextFallback = "I couldn't find enough information to answer your query from the document. " +
		"Please try a different question or check the document content."
	pureTextPlaceholder = "No document text available to answer this question from the document."
)

// reasoningNode generates the answer for a query turn. The first matching
// branch wins: retrieved context, then full-text generation when the planner
// asked for it, then a static fallback without any model call. The user and
// assistant messages are persisted to the document's chat history on every
// success path.
func (a *MainAgent) reasoningNode(ctx context.Context, state types.WorkflowState) types.WorkflowState {
	if state.InputQuery == "" {
		return routeError(state, "Failed to generate LLM response: missing input query")
	}
	if state.Metadata.DocumentID == "" {
		return routeError(state, "Failed to generate LLM response: missing document id")
	}
	if state.Metadata.OnChunk == nil {
		return routeError(state, "Failed to generate LLM response: missing streaming callback")
	}
	if state.Metadata.PlannerDecision == nil {
		return routeError(state, "Failed to generate LLM response: missing planner decision")
	}

	history := utils.TruncateChatHistory(state.ChatHistory, maxHistoryChars)
	plannerAction := state.Metadata.PlannerDecision.Action.Name

	var response string
	var toolUsed string
	switch {
	case strings.TrimSpace(state.Data.Context) != "":
		toolUsed = tools.ToolGenerateContextualResponse
		result, err := a.generate(ctx, toolUsed, tools.GenerateContextualResponseInput{
			Query:   state.InputQuery,
			Context: state.Data.Context,
			History: history,
			OnChunk: state.Metadata.OnChunk,
		})
		if err != nil {
			return routeError(state, fmt.Sprintf("Failed to generate LLM response: %v", err))
		}
		response = result

	case plannerAction == types.PlannerActionRespondFromPureText && state.Data.FullDocumentText != "":
		toolUsed = tools.ToolGeneratePureResponse
		result, err := a.generate(ctx, toolUsed, tools.GeneratePureResponseInput{
			Query:   state.InputQuery,
			Text:    state.Data.FullDocumentText,
			History: history,
			OnChunk: state.Metadata.OnChunk,
		})
		if err != nil {
			return routeError(state, fmt.Sprintf("Failed to generate LLM response: %v", err))
		}
		response = result

	case plannerAction == types.PlannerActionRespondFromPureText:
		toolUsed = tools.ToolGeneratePureResponse
		result, err := a.generate(ctx, toolUsed, tools.GeneratePureResponseInput{
			Query:   state.InputQuery,
			Text:    pureTextPlaceholder,
			History: history,
			OnChunk: state.Metadata.OnChunk,
		})
		if err != nil {
			return routeError(state, fmt.Sprintf("Failed to generate LLM response: %v", err))
		}
		response = result

	default:
		toolUsed = "none"
		response = noContextFallback
		state.Metadata.OnChunk(response)
	}

	if err := a.persistChatTurn(ctx, state.Metadata.DocumentID, state.InputQuery, response); err != nil {
		return routeError(state, fmt.Sprintf("Failed to generate LLM response: %v", err))
	}

	state.Response = response
	state.Data.LLMToolUsed = toolUsed
	state.Status = types.StatusCompleted
	state.NextNode = NodeResponse
	return state
}

func (a *MainAgent) generate(ctx context.Context, toolName string, input any) (string, error) {
	tool, err := a.registry.Get(toolName)
	if err != nil {
		return "", err
	}
	result, err := tool.Execute(ctx, input)
	if err != nil {
		return "", err
	}
	text, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result type %T from tool %s", result, toolName)
	}
	return text, nil
}

// persistChatTurn appends the user and assistant messages to the document's
// stored history. Empty messages are dropped rather than persisted.
func (a *MainAgent) persistChatTurn(ctx context.Context, documentID, query, response string) error {
	doc, err := a.documentRepo.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load chat history: %w", err)
	}
	history := doc.ChatHistory
	for _, msg := range []types.Message{
		{Role: types.RoleUser, Content: query},
		{Role: types.RoleAssistant, Content: response},
	} {
		if msg.Content == "" {
			continue
		}
		history = append(history, msg)
	}
	if err := a.documentRepo.UpdateChatHistory(ctx, documentID, history); err != nil {
		return fmt.Errorf("failed to persist chat history: %w", err)
	}
	return nil
}
