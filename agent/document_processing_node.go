package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/tools"
	"github.com/tieubaoca/docchat-be/types"
)

// documentProcessingNode runs the upload pipeline: extract, threshold check,
// chunk, embed, store, and always record the result on the document.
func (a *MainAgent) documentProcessingNode(ctx context.Context, state types.WorkflowState) types.WorkflowState {
	documentID := state.Metadata.DocumentID
	if documentID == "" {
		return routeError(state, "Document processing failed for unknown: missing document id")
	}
	if len(state.Metadata.PDFBuffer) == 0 {
		return routeError(state, fmt.Sprintf("Document processing failed for %s: missing PDF buffer", documentID))
	}

	fail := func(err error) types.WorkflowState {
		return routeError(state, fmt.Sprintf("Document processing failed for %s: %v", documentID, err))
	}

	extracted, err := a.extractDocument(ctx, state.Metadata.PDFBuffer)
	if err != nil {
		return fail(err)
	}
	state.Metadata.TokenCount = extracted.TokenCount
	state.Metadata.TotalPages = extracted.TotalPages

	var chunks []types.Chunk
	embeddingsGenerated := false
	underThreshold := extracted.TokenCount < a.maxTokenThreshold
	if underThreshold {
		state.Metadata.ProcessingStep = "threshold_skip"
	} else {
		state.Metadata.ProcessingStep = "chunking"
		chunks, err = a.chunkDocument(ctx, documentID, extracted)
		if err != nil {
			return fail(err)
		}
		if len(chunks) > 0 {
			state.Metadata.ProcessingStep = "embedding"
			embedded, err := a.embedAndStore(ctx, documentID, chunks)
			if err != nil {
				return fail(err)
			}
			chunks = embedded
			embeddingsGenerated = true
		}
	}

	if err := a.updateDocumentStatus(ctx, documentID, extracted.RawExtractedText, embeddingsGenerated); err != nil {
		return fail(err)
	}
	state.Metadata.EmbeddingsGenerated = embeddingsGenerated

	var message string
	switch {
	case underThreshold:
		message = fmt.Sprintf(
			"Document %s processed. Token count is below threshold (%d < %d), full text will be used for answers.",
			documentID, extracted.TokenCount, a.maxTokenThreshold)
	case embeddingsGenerated:
		message = fmt.Sprintf("Document %s processed: %d chunks embedded and stored.", documentID, len(chunks))
	default:
		message = fmt.Sprintf("Document %s processed but yielded no chunks to embed.", documentID)
	}

	state.Data.Message = message
	state.Data.Text = extracted.RawExtractedText
	state.Data.TokenCount = extracted.TokenCount
	state.Data.ChunksCount = len(chunks)
	state.Data.DocumentID = documentID
	state.Data.EmbeddingsProcessed = embeddingsGenerated
	state.Status = types.StatusCompleted
	state.NextNode = NodeResponse
	return state
}

func (a *MainAgent) extractDocument(ctx context.Context, pdfBuffer []byte) (*types.ExtractResult, error) {
	tool, err := a.registry.Get(tools.ToolExtractTextFromPDF)
	if err != nil {
		return nil, err
	}
	result, err := tool.Execute(ctx, tools.ExtractTextInput{PDFBuffer: pdfBuffer})
	if err != nil {
		return nil, err
	}
	extracted, ok := result.(*types.ExtractResult)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T from tool %s", result, tools.ToolExtractTextFromPDF)
	}
	return extracted, nil
}

// chunkDocument chunks each non-blank page and assigns document-wide chunk
// ids plus the cross-chunk context: the last sentence of the previous chunk
// in global order, empty for the document's first chunk.
func (a *MainAgent) chunkDocument(ctx context.Context, documentID string, extracted *types.ExtractResult) ([]types.Chunk, error) {
	tool, err := a.registry.Get(tools.ToolChunkText)
	if err != nil {
		return nil, err
	}

	var chunks []types.Chunk
	previousText := ""
	for _, page := range extracted.PagesData {
		if page.Text == "" {
			log.Printf("Warning: skipping blank page %d of document %s", page.PageNumber, documentID)
			continue
		}
		result, err := tool.Execute(ctx, tools.ChunkTextInput{
			Text:       page.Text,
			TotalPages: extracted.TotalPages,
			PageNumber: page.PageNumber,
		})
		if err != nil {
			return nil, err
		}
		preChunks, ok := result.([]types.PreChunk)
		if !ok {
			return nil, fmt.Errorf("unexpected result type %T from tool %s", result, tools.ToolChunkText)
		}
		for _, pre := range preChunks {
			chunkIndex := len(chunks)
			context := ""
			if previousText != "" {
				context = service.LastSentence(previousText)
			}
			chunks = append(chunks, types.Chunk{
				ID:   fmt.Sprintf("chunk-%s-%d", documentID, chunkIndex),
				Text: pre.Text,
				Metadata: types.ChunkMetadata{
					TotalPages: pre.TotalPages,
					PageNumber: pre.PageNumber,
					ChunkIndex: chunkIndex,
					Context:    context,
					DocumentID: documentID,
				},
			})
			previousText = pre.Text
		}
	}
	return chunks, nil
}

func (a *MainAgent) embedAndStore(ctx context.Context, documentID string, chunks []types.Chunk) ([]types.Chunk, error) {
	embedTool, err := a.registry.Get(tools.ToolGenerateEmbeddings)
	if err != nil {
		return nil, err
	}
	result, err := embedTool.Execute(ctx, tools.GenerateEmbeddingsInput{Chunks: chunks})
	if err != nil {
		return nil, err
	}
	embedded, ok := result.([]types.Chunk)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T from tool %s", result, tools.ToolGenerateEmbeddings)
	}

	storeTool, err := a.registry.Get(tools.ToolStoreEmbeddings)
	if err != nil {
		return nil, err
	}
	if _, err := storeTool.Execute(ctx, tools.StoreEmbeddingsInput{
		DocumentID: documentID,
		Chunks:     embedded,
	}); err != nil {
		return nil, err
	}
	return embedded, nil
}

func (a *MainAgent) updateDocumentStatus(ctx context.Context, documentID, extractedText string, embeddingsGenerated bool) error {
	tool, err := a.registry.Get(tools.ToolUpdateDocumentStatus)
	if err != nil {
		return err
	}
	_, err = tool.Execute(ctx, tools.UpdateDocumentStatusInput{
		DocumentID:          documentID,
		ExtractedText:       extractedText,
		EmbeddingsGenerated: embeddingsGenerated,
	})
	return err
}
