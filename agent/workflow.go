package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/types"
)

// Node ids. NodeResponse and NodeError are terminal; NodeError is also a real
// node invoked once at the end of a failed run to normalize the payload.
const (
	NodePlanner            = "planner"
	NodeRetrieval          = "retrieval"
	NodeReasoning          = "reasoning"
	NodeDocumentProcessing = "document_processing"
	NodeResponse           = "response"
	NodeError              = "error"
)

const maxWorkflowIterations = 10

// NodeFunc executes one node. Nodes never panic or return an error; failures
// are encoded in the returned state's Status and Error fields.
type NodeFunc func(ctx context.Context, state types.WorkflowState) types.WorkflowState

// Edge is a static transition consulted when a node does not set an explicit
// next node. From may be the wildcard "*". A nil Condition always matches.
type Edge struct {
	From      string
	To        string
	Condition func(state types.WorkflowState) bool
}

func defaultEdges() []Edge {
	return []Edge{
		{From: "*", To: NodeError, Condition: func(s types.WorkflowState) bool {
			return s.Status == types.StatusError
		}},
		{From: NodeDocumentProcessing, To: NodeResponse},
		{From: NodeRetrieval, To: NodeReasoning},
		{From: NodeReasoning, To: NodeResponse},
	}
}

// Route decides the node to run after current, applying the transition rules
// in priority order: error status first, then an explicit NextNode (a
// self-loop is treated as a bug), then the edge table. It returns the possibly
// amended state and the next node id; an empty id ends the run successfully.
// Kept free of engine state so the routing rules can be tested on their own.
func Route(state types.WorkflowState, current string, edges []Edge) (types.WorkflowState, string) {
	if state.Status == types.StatusError {
		return state, NodeError
	}

	if state.NextNode != "" {
		if state.NextNode == current {
			state.Status = types.StatusError
			state.Error = fmt.Sprintf("Infinite loop detected at node %s.", current)
			return state, NodeError
		}
		return state, state.NextNode
	}

	for _, edge := range edges {
		if edge.From != current && edge.From != "*" {
			continue
		}
		if edge.Condition != nil && !edge.Condition(state) {
			continue
		}
		return state, edge.To
	}

	if state.Status == types.StatusCompleted {
		return state, ""
	}
	state.Status = types.StatusError
	state.Error = fmt.Sprintf("No valid next node found from %s.", current)
	return state, NodeError
}

// Engine drives a workflow run from an entry node to a terminal state. It
// holds no per-run state; everything a run needs travels in WorkflowState.
type Engine struct {
	nodes        map[string]NodeFunc
	edges        []Edge
	documentRepo repository.DocumentRepo
}

func NewEngine(nodes map[string]NodeFunc, edges []Edge, documentRepo repository.DocumentRepo) *Engine {
	if edges == nil {
		edges = defaultEdges()
	}
	return &Engine{
		nodes:        nodes,
		edges:        edges,
		documentRepo: documentRepo,
	}
}

// Run executes the workflow selected by state.Metadata.Action and always
// returns a terminal state, never an error.
func (e *Engine) Run(ctx context.Context, state types.WorkflowState) types.WorkflowState {
	runID := uuid.NewString()

	entry, state, ok := e.selectEntry(ctx, state)
	if !ok {
		log.Printf("[workflow %s] halted before entry: %s", runID, state.Error)
		return e.normalizeError(ctx, state)
	}
	log.Printf("[workflow %s] starting at node %s", runID, entry)

	current := entry
	iterations := 0
	for {
		if iterations >= maxWorkflowIterations {
			state.Status = types.StatusError
			state.Error = "Max workflow iterations reached, potential infinite loop."
			break
		}

		node, ok := e.nodes[current]
		if !ok {
			state.Status = types.StatusError
			state.Error = fmt.Sprintf("Unknown node: %s", current)
			break
		}

		state.CurrentNode = current
		state.NextNode = ""
		state = node(ctx, state)
		iterations++
		log.Printf("[workflow %s] node %s finished with status %s", runID, current, state.Status)

		var next string
		state, next = Route(state, current, e.edges)
		if next == NodeError {
			break
		}
		if next == "" || next == NodeResponse {
			log.Printf("[workflow %s] completed after %d node executions", runID, iterations)
			return state
		}
		current = next
	}

	log.Printf("[workflow %s] failed: %s", runID, state.Error)
	return e.normalizeError(ctx, state)
}

// selectEntry picks the entry node for the run's action. For query runs it
// eagerly loads the document's embedding flag and extracted text so the
// planner can reason about them; a failed lookup halts the run before any
// node executes.
func (e *Engine) selectEntry(ctx context.Context, state types.WorkflowState) (string, types.WorkflowState, bool) {
	switch state.Metadata.Action {
	case types.ActionProcessDocument:
		return NodeDocumentProcessing, state, true

	case types.ActionAnswerQuery:
		if state.Metadata.DocumentID == "" {
			state.Status = types.StatusError
			state.Error = "Missing document id for query workflow"
			return "", state, false
		}
		doc, err := e.documentRepo.Get(ctx, state.Metadata.DocumentID)
		if err != nil {
			state.Status = types.StatusError
			state.Error = fmt.Sprintf("Failed to load document %s: %v", state.Metadata.DocumentID, err)
			return "", state, false
		}
		state.Metadata.EmbeddingsGenerated = doc.EmbeddingsGenerated
		state.Data.FullDocumentText = doc.ExtractedText
		return NodePlanner, state, true

	default:
		state.Status = types.StatusError
		state.Error = fmt.Sprintf("Unknown workflow action: %s", state.Metadata.Action)
		return "", state, false
	}
}

// normalizeError runs the error node one final time so every failed run
// returns the same payload shape.
func (e *Engine) normalizeError(ctx context.Context, state types.WorkflowState) types.WorkflowState {
	if node, ok := e.nodes[NodeError]; ok {
		return node(ctx, state)
	}
	return state
}
