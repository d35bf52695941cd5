package agent

import (
	"context"

	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/tools"
	"github.com/tieubaoca/docchat-be/types"
)

// MainAgent is the public entry point for workflow runs. It owns the engine
// and the node implementations; all I/O goes through the tool registry except
// the planner's model call and chat-history persistence.
type MainAgent struct {
	registry          *tools.Registry
	aiService         service.AIService
	documentRepo      repository.DocumentRepo
	maxTokenThreshold int
	engine            *Engine
}

type DocumentProcessingInput struct {
	DocumentID string
	PDFBuffer  []byte
}

type AnswerQueryInput struct {
	DocumentID   string
	Query        string
	ChatHistory  []types.Message
	UseWebSearch bool
	OnChunk      types.StreamHandler
}

func NewMainAgent(
	registry *tools.Registry,
	aiService service.AIService,
	documentRepo repository.DocumentRepo,
	maxTokenThreshold int,
) *MainAgent {
	agent := &MainAgent{
		registry:          registry,
		aiService:         aiService,
		documentRepo:      documentRepo,
		maxTokenThreshold: maxTokenThreshold,
	}
	agent.engine = NewEngine(map[string]NodeFunc{
		NodePlanner:            agent.plannerNode,
		NodeRetrieval:          agent.retrievalNode,
		NodeReasoning:          agent.reasoningNode,
		NodeDocumentProcessing: agent.documentProcessingNode,
		NodeError:              agent.errorNode,
	}, nil, documentRepo)
	return agent
}

// RunDocumentProcessing extracts, chunks, embeds and records one uploaded
// document. The returned state is always terminal.
func (a *MainAgent) RunDocumentProcessing(ctx context.Context, input DocumentProcessingInput) types.WorkflowState {
	state := types.WorkflowState{
		Status: types.StatusIdle,
		Metadata: types.StateMetadata{
			Action:     types.ActionProcessDocument,
			DocumentID: input.DocumentID,
			PDFBuffer:  input.PDFBuffer,
		},
	}
	return a.engine.Run(ctx, state)
}

// RunAnswerQuery answers one query turn against a processed document,
// streaming the generated answer through input.OnChunk.
func (a *MainAgent) RunAnswerQuery(ctx context.Context, input AnswerQueryInput) types.WorkflowState {
	state := types.WorkflowState{
		Status:      types.StatusIdle,
		InputQuery:  input.Query,
		ChatHistory: input.ChatHistory,
		Metadata: types.StateMetadata{
			Action:       types.ActionAnswerQuery,
			DocumentID:   input.DocumentID,
			UseWebSearch: input.UseWebSearch,
			OnChunk:      input.OnChunk,
		},
	}
	return a.engine.Run(ctx, state)
}

// routeError marks the state failed and points it at the error node.
func routeError(state types.WorkflowState, message string) types.WorkflowState {
	state.Status = types.StatusError
	state.Error = message
	state.NextNode = NodeError
	return state
}
