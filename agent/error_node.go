package agent

import (
	"context"

	"github.com/tieubaoca/docchat-be/types"
)

const errorPayloadMessage = "An error occurred while processing your request"

// errorNode normalizes any failed state into the final user-facing payload.
// It never fails itself.
func (a *MainAgent) errorNode(ctx context.Context, state types.WorkflowState) types.WorkflowState {
	details := state.Error
	if details == "" {
		details = "Unknown error"
	}
	state.Status = types.StatusError
	state.CurrentNode = NodeError
	state.NextNode = ""
	state.Data.Message = errorPayloadMessage
	state.Data.Details = details
	return state
}
