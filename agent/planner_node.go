package agent

import (
	"context"
	"fmt"

	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/types"
	"github.com/tieubaoca/docchat-be/utils"
)

const maxHistoryChars = 2000

// plannerNode asks the model which action to take for this query turn and
// maps the decision onto the next node.
func (a *MainAgent) plannerNode(ctx context.Context, state types.WorkflowState) types.WorkflowState {
	if state.InputQuery == "" {
		return routeError(state, "Planner failed: missing input query")
	}
	if state.Metadata.DocumentID == "" {
		return routeError(state, "Planner failed: missing document id")
	}

	history := utils.TruncateChatHistory(state.ChatHistory, maxHistoryChars)
	prompt := service.PlannerPrompt(
		state.InputQuery,
		state.Metadata.EmbeddingsGenerated,
		state.Data.RetrievalStatusMessage,
		state.Data.FullDocumentText != "",
		history,
		state.Metadata.DocumentID,
	)

	raw, err := a.aiService.Complete(ctx, service.PlannerSystemPrompt, prompt)
	if err != nil {
		return routeError(state, fmt.Sprintf("Planner failed: %v", err))
	}

	var decision types.PlannerDecision
	if err := utils.ParseJSONSafely(utils.StripCodeFences(raw), &decision); err != nil {
		return routeError(state, fmt.Sprintf("Planner failed: %v", err))
	}
	if decision.Action.Name == "" || decision.Action.Args == nil {
		return routeError(state, "Planner failed: response does not contain a valid action structure")
	}

	var nextNode string
	switch decision.Action.Name {
	case types.PlannerActionQueryDocument:
		nextNode = NodeRetrieval
	case types.PlannerActionRespondFromContext, types.PlannerActionRespondFromPureText:
		nextNode = NodeReasoning
	default:
		return routeError(state, fmt.Sprintf("Planner failed: Unknown action: %s", decision.Action.Name))
	}

	state.Metadata.PlannerDecision = &decision
	state.Status = types.StatusProcessing
	state.NextNode = nextNode
	return state
}
