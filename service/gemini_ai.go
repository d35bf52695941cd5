package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/tieubaoca/docchat-be/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiService implements AIService on top of the Gemini API. Multiple API
// keys may be supplied; on a failed call the service rotates to the next key
// and retries once.
type GeminiService struct {
	apiKeys        []string
	currentKey     int
	client         *genai.Client
	modelName      string
	embeddingModel string
	mu             sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName, embeddingModel string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}
	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}

	service := &GeminiService{
		apiKeys:        apiKeys,
		currentKey:     0,
		modelName:      modelName,
		embeddingModel: embeddingModel,
	}

	if err := service.initClient(); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	currentClient := s.client
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	s.mu.Unlock()

	if err := currentClient.Close(); err != nil {
		return err
	}
	return s.initClient()
}

func (s *GeminiService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		// Try rotating API key if there's an error
		if err := s.rotateAPIKey(); err != nil {
			return "", err
		}
		model = s.client.GenerativeModel(s.modelName)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
		resp, err = model.GenerateContent(ctx, genai.Text(userPrompt))
		if err != nil {
			return "", err
		}
	}

	return collectText(resp)
}

func (s *GeminiService) ChatStream(ctx context.Context, messages []types.Message, handler types.StreamHandler) error {
	if len(messages) == 0 {
		return errors.New("no messages provided")
	}

	model := s.client.GenerativeModel(s.modelName)
	history := make([]*genai.Content, 0, len(messages))
	last := messages[len(messages)-1]
	for _, msg := range messages[:len(messages)-1] {
		switch msg.Role {
		case types.RoleSystem:
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
			}
		case types.RoleAssistant:
			history = append(history, &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
				Role:  "model",
			})
		default:
			history = append(history, &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
				Role:  "user",
			})
		}
	}

	chat := model.StartChat()
	chat.History = history

	iter := chat.SendMessageStream(ctx, genai.Text(last.Content))
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					handler(string(text))
				}
			}
		}
	}
}

func (s *GeminiService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	em := s.client.EmbeddingModel(s.embeddingModel)
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

func collectText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}
	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	return content, nil
}
