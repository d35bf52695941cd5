package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/types"
)

const (
	ToolQueryVectorDB              = "queryVectorDB"
	ToolWebSearch                  = "webSearch"
	ToolGenerateContextualResponse = "generateContextualResponse"
	ToolGeneratePureResponse       = "generatePureResponse"
)

const defaultRetrievalLimit = 5

type QueryVectorDBInput struct {
	Query      string
	DocumentID string
	Limit      int
}

type WebSearchInput struct {
	Query string
}

type GenerateContextualResponseInput struct {
	Query   string
	Context string
	History []types.Message
	OnChunk types.StreamHandler
}

type GeneratePureResponseInput struct {
	Query   string
	Text    string
	History []types.Message
	OnChunk types.StreamHandler
}

// RegisterQueryTools wires the retrieval and generation tools into the
// registry. searchService may be nil when web search is not configured; the
// webSearch tool then fails with a clear error.
func RegisterQueryTools(
	registry *Registry,
	aiService service.AIService,
	vectorStore database.VectorStore,
	searchService *service.SearchService,
) {
	registry.Register(&Tool{
		Name:        ToolQueryVectorDB,
		Description: "Embed the query and search the document's vector index",
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(QueryVectorDBInput)
			if !ok {
				return nil, invalidInput(ToolQueryVectorDB, input)
			}
			limit := in.Limit
			if limit <= 0 {
				limit = defaultRetrievalLimit
			}
			vectors, err := aiService.Embed(ctx, []string{in.Query})
			if err != nil {
				return nil, err
			}
			if len(vectors) == 0 {
				return nil, errors.New("no embedding generated for query")
			}
			return vectorStore.Query(ctx, vectors[0], in.DocumentID, limit)
		},
	})

	registry.Register(&Tool{
		Name:        ToolWebSearch,
		Description: "Search the web for supplementary context",
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(WebSearchInput)
			if !ok {
				return nil, invalidInput(ToolWebSearch, input)
			}
			if searchService == nil {
				return nil, errors.New("web search is not configured")
			}
			return searchService.Search(ctx, in.Query, defaultRetrievalLimit)
		},
	})

	registry.Register(&Tool{
		Name:        ToolGenerateContextualResponse,
		Description: "Stream an answer grounded in retrieved context",
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(GenerateContextualResponseInput)
			if !ok {
				return nil, invalidInput(ToolGenerateContextualResponse, input)
			}
			messages := service.ContextualMessages(in.Query, in.Context, in.History)
			return streamResponse(ctx, aiService, messages, in.OnChunk)
		},
	})

	registry.Register(&Tool{
		Name:        ToolGeneratePureResponse,
		Description: "Stream an answer from the document's full text",
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(GeneratePureResponseInput)
			if !ok {
				return nil, invalidInput(ToolGeneratePureResponse, input)
			}
			messages := service.PureTextMessages(in.Query, in.Text, in.History)
			return streamResponse(ctx, aiService, messages, in.OnChunk)
		},
	})
}

// streamResponse drains the model stream, fanning chunks out to the caller's
// handler while accumulating the full response for the workflow state.
func streamResponse(ctx context.Context, aiService service.AIService, messages []types.Message, onChunk types.StreamHandler) (string, error) {
	var builder strings.Builder
	handler := func(chunk string) {
		builder.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	if err := aiService.ChatStream(ctx, messages, handler); err != nil {
		return "", err
	}
	return builder.String(), nil
}
