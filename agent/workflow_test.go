package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/types"
)

func TestRouteErrorStatusWins(t *testing.T) {
	state := types.WorkflowState{Status: types.StatusError, NextNode: NodeReasoning}
	_, next := Route(state, NodePlanner, defaultEdges())
	assert.Equal(t, NodeError, next)
}

func TestRouteExplicitNextNode(t *testing.T) {
	state := types.WorkflowState{Status: types.StatusProcessing, NextNode: NodeRetrieval}
	_, next := Route(state, NodePlanner, defaultEdges())
	assert.Equal(t, NodeRetrieval, next)
}

func TestRouteSelfLoopForcesError(t *testing.T) {
	state := types.WorkflowState{Status: types.StatusProcessing, NextNode: NodePlanner}
	routed, next := Route(state, NodePlanner, defaultEdges())
	assert.Equal(t, NodeError, next)
	assert.Equal(t, types.StatusError, routed.Status)
	assert.Contains(t, routed.Error, "Infinite loop detected")
}

func TestRouteEdgeTable(t *testing.T) {
	state := types.WorkflowState{Status: types.StatusProcessing}
	_, next := Route(state, NodeRetrieval, defaultEdges())
	assert.Equal(t, NodeReasoning, next)
}

func TestRouteCompletedWithoutEdgeEndsRun(t *testing.T) {
	state := types.WorkflowState{Status: types.StatusCompleted}
	edges := []Edge{{From: NodeRetrieval, To: NodeReasoning}}
	routed, next := Route(state, NodePlanner, edges)
	assert.Equal(t, "", next)
	assert.Equal(t, types.StatusCompleted, routed.Status)
}

func TestRouteNoEdgeForcesError(t *testing.T) {
	state := types.WorkflowState{Status: types.StatusProcessing}
	edges := []Edge{{From: NodeRetrieval, To: NodeReasoning}}
	routed, next := Route(state, NodePlanner, edges)
	assert.Equal(t, NodeError, next)
	assert.Equal(t, types.StatusError, routed.Status)
	assert.Contains(t, routed.Error, "No valid next node found from planner")
}

func TestRouteConditionSkipsNonMatchingEdges(t *testing.T) {
	edges := []Edge{
		{From: "a", To: "skipped", Condition: func(s types.WorkflowState) bool { return false }},
		{From: "a", To: "taken"},
	}
	state := types.WorkflowState{Status: types.StatusProcessing}
	_, next := Route(state, "a", edges)
	assert.Equal(t, "taken", next)
}

func errorNormalizer(ctx context.Context, state types.WorkflowState) types.WorkflowState {
	state.Data.Message = errorPayloadMessage
	state.Data.Details = state.Error
	return state
}

func TestEngineIterationCap(t *testing.T) {
	executions := 0
	ping := func(ctx context.Context, state types.WorkflowState) types.WorkflowState {
		executions++
		state.Status = types.StatusProcessing
		state.NextNode = NodeRetrieval
		return state
	}
	pong := func(ctx context.Context, state types.WorkflowState) types.WorkflowState {
		executions++
		state.Status = types.StatusProcessing
		state.NextNode = NodePlanner
		return state
	}

	repo := newMockDocumentRepo()
	repo.docs["doc"] = &repository.Document{Slug: "doc"}
	engine := NewEngine(map[string]NodeFunc{
		NodePlanner:   ping,
		NodeRetrieval: pong,
		NodeError:     errorNormalizer,
	}, nil, repo)

	state := engine.Run(context.Background(), types.WorkflowState{
		InputQuery: "q",
		Metadata:   types.StateMetadata{Action: types.ActionAnswerQuery, DocumentID: "doc"},
	})

	assert.Equal(t, types.StatusError, state.Status)
	assert.Contains(t, state.Data.Details, "Max workflow iterations reached")
	assert.Equal(t, 10, executions, "the oscillation must stop after exactly 10 node executions")
}

func TestEngineSelfLoopGuard(t *testing.T) {
	selfLooper := func(ctx context.Context, state types.WorkflowState) types.WorkflowState {
		state.Status = types.StatusProcessing
		state.NextNode = NodePlanner
		return state
	}

	repo := newMockDocumentRepo()
	repo.docs["doc"] = &repository.Document{Slug: "doc"}
	engine := NewEngine(map[string]NodeFunc{
		NodePlanner: selfLooper,
		NodeError:   errorNormalizer,
	}, nil, repo)

	state := engine.Run(context.Background(), types.WorkflowState{
		InputQuery: "q",
		Metadata:   types.StateMetadata{Action: types.ActionAnswerQuery, DocumentID: "doc"},
	})

	assert.Equal(t, types.StatusError, state.Status)
	assert.Contains(t, state.Data.Details, "Infinite loop detected")
}

func TestEngineHaltsOnMissingDocumentID(t *testing.T) {
	executions := 0
	node := func(ctx context.Context, state types.WorkflowState) types.WorkflowState {
		executions++
		return state
	}

	engine := NewEngine(map[string]NodeFunc{
		NodePlanner: node,
		NodeError:   errorNormalizer,
	}, nil, newMockDocumentRepo())

	state := engine.Run(context.Background(), types.WorkflowState{
		InputQuery: "q",
		Metadata:   types.StateMetadata{Action: types.ActionAnswerQuery},
	})

	assert.Equal(t, types.StatusError, state.Status)
	assert.Equal(t, 0, executions, "no node may execute when the document id is missing")
}

func TestEngineHaltsOnDocumentLookupFailure(t *testing.T) {
	executions := 0
	node := func(ctx context.Context, state types.WorkflowState) types.WorkflowState {
		executions++
		return state
	}

	repo := newMockDocumentRepo()
	repo.getErr = errors.New("connection refused")
	engine := NewEngine(map[string]NodeFunc{
		NodePlanner: node,
		NodeError:   errorNormalizer,
	}, nil, repo)

	state := engine.Run(context.Background(), types.WorkflowState{
		InputQuery: "q",
		Metadata:   types.StateMetadata{Action: types.ActionAnswerQuery, DocumentID: "doc"},
	})

	assert.Equal(t, types.StatusError, state.Status)
	assert.Contains(t, state.Data.Details, "connection refused")
	assert.Equal(t, 0, executions)
}

func TestEngineEagerlyLoadsDocumentState(t *testing.T) {
	var seen types.WorkflowState
	capture := func(ctx context.Context, state types.WorkflowState) types.WorkflowState {
		seen = state
		state.Status = types.StatusCompleted
		state.NextNode = NodeResponse
		return state
	}

	repo := newMockDocumentRepo()
	repo.docs["doc"] = &repository.Document{
		Slug:                "doc",
		ExtractedText:       "the full text",
		EmbeddingsGenerated: true,
	}
	engine := NewEngine(map[string]NodeFunc{
		NodePlanner: capture,
		NodeError:   errorNormalizer,
	}, nil, repo)

	state := engine.Run(context.Background(), types.WorkflowState{
		InputQuery: "q",
		Metadata:   types.StateMetadata{Action: types.ActionAnswerQuery, DocumentID: "doc"},
	})

	require.Equal(t, types.StatusCompleted, state.Status)
	assert.True(t, seen.Metadata.EmbeddingsGenerated)
	assert.Equal(t, "the full text", seen.Data.FullDocumentText)
}

func TestEngineMergePreservesEarlierFields(t *testing.T) {
	first := func(ctx context.Context, state types.WorkflowState) types.WorkflowState {
		state.Data.Context = "kept context"
		state.Status = types.StatusProcessing
		state.NextNode = NodeReasoning
		return state
	}
	second := func(ctx context.Context, state types.WorkflowState) types.WorkflowState {
		state.Metadata.ProcessingStep = "late"
		state.Status = types.StatusCompleted
		state.NextNode = NodeResponse
		return state
	}

	repo := newMockDocumentRepo()
	repo.docs["doc"] = &repository.Document{Slug: "doc"}
	engine := NewEngine(map[string]NodeFunc{
		NodePlanner:   first,
		NodeReasoning: second,
		NodeError:     errorNormalizer,
	}, nil, repo)

	state := engine.Run(context.Background(), types.WorkflowState{
		InputQuery: "q",
		Metadata:   types.StateMetadata{Action: types.ActionAnswerQuery, DocumentID: "doc"},
	})

	require.Equal(t, types.StatusCompleted, state.Status)
	assert.Equal(t, "kept context", state.Data.Context,
		"a later node touching only metadata must not clobber earlier data fields")
	assert.Equal(t, "late", state.Metadata.ProcessingStep)
}

func TestEngineUnknownAction(t *testing.T) {
	engine := NewEngine(map[string]NodeFunc{NodeError: errorNormalizer}, nil, newMockDocumentRepo())
	state := engine.Run(context.Background(), types.WorkflowState{
		Metadata: types.StateMetadata{Action: "bogus"},
	})
	assert.Equal(t, types.StatusError, state.Status)
	assert.Contains(t, state.Data.Details, "Unknown workflow action")
}
