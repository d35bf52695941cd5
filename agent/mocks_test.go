package agent

import (
	"context"
	"fmt"

	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/tools"
	"github.com/tieubaoca/docchat-be/types"
)

type mockDocumentRepo struct {
	docs               map[string]*repository.Document
	getErr             error
	updateStatusCalls  []statusUpdate
	updateHistoryCalls [][]types.Message
}

type statusUpdate struct {
	slug                string
	extractedText       string
	embeddingsGenerated bool
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{docs: make(map[string]*repository.Document)}
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *repository.Document) error {
	m.docs[doc.Slug] = doc
	return nil
}

func (m *mockDocumentRepo) Get(ctx context.Context, slug string) (*repository.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	doc, ok := m.docs[slug]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", slug)
	}
	return doc, nil
}

func (m *mockDocumentRepo) UpdateProcessingResult(ctx context.Context, slug, extractedText string, embeddingsGenerated bool) error {
	m.updateStatusCalls = append(m.updateStatusCalls, statusUpdate{slug, extractedText, embeddingsGenerated})
	if doc, ok := m.docs[slug]; ok {
		doc.ExtractedText = extractedText
		doc.EmbeddingsGenerated = embeddingsGenerated
	}
	return nil
}

func (m *mockDocumentRepo) UpdateChatHistory(ctx context.Context, slug string, history []types.Message) error {
	m.updateHistoryCalls = append(m.updateHistoryCalls, history)
	if doc, ok := m.docs[slug]; ok {
		doc.ChatHistory = history
	}
	return nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, slug string) error {
	delete(m.docs, slug)
	return nil
}

type mockAIService struct {
	completeResponse string
	completeErr      error
	completeCalls    int
	streamChunks     []string
	embedErr         error
}

func (m *mockAIService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.completeCalls++
	return m.completeResponse, m.completeErr
}

func (m *mockAIService) ChatStream(ctx context.Context, messages []types.Message, handler types.StreamHandler) error {
	for _, chunk := range m.streamChunks {
		handler(chunk)
	}
	return nil
}

func (m *mockAIService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

// stubTool registers a canned tool and counts invocations.
func stubTool(registry *tools.Registry, name string, fn func(ctx context.Context, input any) (any, error)) *int {
	calls := new(int)
	registry.Register(&tools.Tool{
		Name: name,
		Execute: func(ctx context.Context, input any) (any, error) {
			*calls++
			return fn(ctx, input)
		},
	})
	return calls
}

func newTestAgent(repo *mockDocumentRepo, ai *mockAIService, registry *tools.Registry) *MainAgent {
	if registry == nil {
		registry = tools.NewRegistry()
	}
	return NewMainAgent(registry, ai, repo, 25000)
}
