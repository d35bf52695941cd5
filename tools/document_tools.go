package tools

import (
	"context"
	"fmt"

	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/types"
)

const (
	ToolExtractTextFromPDF   = "extractTextFromPDF"
	ToolChunkText            = "chunkText"
	ToolGenerateEmbeddings   = "generateEmbeddings"
	ToolStoreEmbeddings      = "storeEmbeddings"
	ToolUpdateDocumentStatus = "updateDocumentStatus"
)

type ExtractTextInput struct {
	PDFBuffer []byte
}

// ChunkTextInput covers a single page. Global chunk ids and the cross-chunk
// context field are assigned by the caller, which sees all pages in order.
type ChunkTextInput struct {
	Text       string
	TotalPages int
	PageNumber int
}

type GenerateEmbeddingsInput struct {
	Chunks []types.Chunk
}

type StoreEmbeddingsInput struct {
	DocumentID string
	Chunks     []types.Chunk
}

type UpdateDocumentStatusInput struct {
	DocumentID          string
	ExtractedText       string
	EmbeddingsGenerated bool
}

// RegisterDocumentTools wires the document-processing tools into the registry.
func RegisterDocumentTools(
	registry *Registry,
	pdfService *service.PDFService,
	chunker *service.Chunker,
	aiService service.AIService,
	vectorStore database.VectorStore,
	documentRepo repository.DocumentRepo,
) {
	registry.Register(&Tool{
		Name:        ToolExtractTextFromPDF,
		Description: "Extract page-level text and token count from a PDF buffer",
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(ExtractTextInput)
			if !ok {
				return nil, invalidInput(ToolExtractTextFromPDF, input)
			}
			return pdfService.ExtractFromBuffer(in.PDFBuffer)
		},
	})

	registry.Register(&Tool{
		Name:        ToolChunkText,
		Description: "Split one page's text into sentence-aligned, overlapping chunks",
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(ChunkTextInput)
			if !ok {
				return nil, invalidInput(ToolChunkText, input)
			}
			return chunker.ChunkPage(in.Text, in.TotalPages, in.PageNumber), nil
		},
	})

	registry.Register(&Tool{
		Name:        ToolGenerateEmbeddings,
		Description: "Generate embedding vectors for chunks",
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(GenerateEmbeddingsInput)
			if !ok {
				return nil, invalidInput(ToolGenerateEmbeddings, input)
			}
			return embedChunks(ctx, aiService, in.Chunks)
		},
	})

	registry.Register(&Tool{
		Name:        ToolStoreEmbeddings,
		Description: "Persist embedded chunks to the vector store",
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(StoreEmbeddingsInput)
			if !ok {
				return nil, invalidInput(ToolStoreEmbeddings, input)
			}
			if err := vectorStore.StoreChunks(ctx, in.DocumentID, in.Chunks); err != nil {
				return nil, err
			}
			return len(in.Chunks), nil
		},
	})

	registry.Register(&Tool{
		Name:        ToolUpdateDocumentStatus,
		Description: "Record extraction text and embedding status on the document",
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(UpdateDocumentStatusInput)
			if !ok {
				return nil, invalidInput(ToolUpdateDocumentStatus, input)
			}
			err := documentRepo.UpdateProcessingResult(ctx, in.DocumentID, in.ExtractedText, in.EmbeddingsGenerated)
			if err != nil {
				return nil, err
			}
			return nil, nil
		},
	})
}

// embedChunks embeds context-prefixed chunk text so that neighbouring
// information is represented in the vector.
func embedChunks(ctx context.Context, aiService service.AIService, chunks []types.Chunk) ([]types.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}
	inputs := make([]string, len(chunks))
	for i, chunk := range chunks {
		if chunk.Metadata.Context != "" {
			inputs[i] = chunk.Metadata.Context + " " + chunk.Text
		} else {
			inputs[i] = chunk.Text
		}
	}
	vectors, err := aiService.Embed(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors))
	}
	embedded := make([]types.Chunk, len(chunks))
	for i, chunk := range chunks {
		chunk.Embedding = vectors[i]
		embedded[i] = chunk
	}
	return embedded, nil
}
