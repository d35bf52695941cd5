package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/tools"
	"github.com/tieubaoca/docchat-be/types"
)

const (
	noContextMessage        = "No matching results found to construct context."
	contextRetrievedMessage = "Context successfully retrieved."
)

// retrievalNode queries the vector store, optionally augments with web
// search, and merges the non-empty sources into a labeled context string.
// Finding nothing is a normal outcome, not an error.
func (a *MainAgent) retrievalNode(ctx context.Context, state types.WorkflowState) types.WorkflowState {
	if state.InputQuery == "" {
		return routeError(state, "Document retrieval failed: missing input query")
	}
	if state.Metadata.DocumentID == "" {
		return routeError(state, "Document retrieval failed: missing document id")
	}

	queryTool, err := a.registry.Get(tools.ToolQueryVectorDB)
	if err != nil {
		return routeError(state, fmt.Sprintf("Document retrieval failed: %v", err))
	}
	result, err := queryTool.Execute(ctx, tools.QueryVectorDBInput{
		Query:      state.InputQuery,
		DocumentID: state.Metadata.DocumentID,
	})
	if err != nil {
		return routeError(state, fmt.Sprintf("Document retrieval failed: %v", err))
	}
	docContext, ok := result.(string)
	if !ok {
		return routeError(state, fmt.Sprintf("Document retrieval failed: unexpected result type %T", result))
	}
	if docContext == database.NoMatchingResults || strings.TrimSpace(docContext) == "" {
		docContext = ""
	}

	var parts []string
	var documents []types.RetrievedDocument
	if docContext != "" {
		parts = append(parts, "DOCUMENT EXTRACTS:\n"+docContext)
		documents = append(documents, types.RetrievedDocument{
			Content: docContext,
			Metadata: map[string]string{
				"source":     "vector_db_retrieval",
				"documentId": state.Metadata.DocumentID,
			},
		})
	}

	if state.Metadata.UseWebSearch {
		if answer := a.webSearch(ctx, state.InputQuery); answer != "" {
			parts = append(parts, "WEB-SEARCH ANSWER:\n"+answer)
			documents = append(documents, types.RetrievedDocument{
				Content: answer,
				Metadata: map[string]string{
					"source": "web_search",
				},
			})
		}
	}

	if docContext == "" {
		state.Data.RetrievalStatusMessage = noContextMessage
	} else {
		state.Data.RetrievalStatusMessage = contextRetrievedMessage
	}
	state.Data.Context = strings.Join(parts, "\n\n")
	state.Documents = documents
	state.Status = types.StatusProcessing
	state.NextNode = NodeReasoning
	return state
}

// webSearch runs the web-search tool and swallows failures so that retrieval
// degrades to document-only context.
func (a *MainAgent) webSearch(ctx context.Context, query string) string {
	searchTool, err := a.registry.Get(tools.ToolWebSearch)
	if err != nil {
		log.Printf("Web search unavailable: %v", err)
		return ""
	}
	result, err := searchTool.Execute(ctx, tools.WebSearchInput{Query: query})
	if err != nil {
		log.Printf("Web search failed, continuing with document context only: %v", err)
		return ""
	}
	answer, ok := result.(*types.WebSearchAnswer)
	if !ok || answer == nil {
		return ""
	}
	return strings.TrimSpace(answer.Answer)
}
