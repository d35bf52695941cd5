package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tieubaoca/docchat-be/config"
	"github.com/tieubaoca/docchat-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	BATCH_SIZE        = 20
	BATCH_MAX_RETRIES = 3
	BATCH_RETRY_DELAY = 2 * time.Second
)

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "chunkId", DataType: []string{"text"}},
			{Name: "text", DataType: []string{"text"}},
			{Name: "context", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "pageNumber", DataType: []string{"int"}},
			{Name: "totalPages", DataType: []string{"int"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
)

type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	weaviateConfig := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		weaviateConfig.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		weaviateConfig.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(weaviateConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	// Create DocumentChunk class if it doesn't exist
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create DocumentChunk class: %v", err)
		}
	}
	return &WeaviateStore{
		client: client,
	}, nil
}

func (s *WeaviateStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete DocumentChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create DocumentChunk class: %v", err)
	}
	return nil
}

// StoreChunks writes embedded chunks in batches of BATCH_SIZE, retrying each
// batch up to BATCH_MAX_RETRIES times before propagating the failure. This is
// the only retry loop in the system; every other tool fails fast.
func (s *WeaviateStore) StoreChunks(ctx context.Context, documentID string, chunks []types.Chunk) error {
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			properties := map[string]interface{}{
				"chunkId":    chunks[j].ID,
				"text":       chunks[j].Text,
				"context":    chunks[j].Metadata.Context,
				"documentId": documentID,
				"pageNumber": chunks[j].Metadata.PageNumber,
				"totalPages": chunks[j].Metadata.TotalPages,
				"chunkIndex": chunks[j].Metadata.ChunkIndex,
			}
			batcher = batcher.WithObjects(&models.Object{
				Class:      CHUNK_CLASS,
				Properties: properties,
				Vector:     chunks[j].Embedding,
			})
		}

		var err error
		for attempt := 1; attempt <= BATCH_MAX_RETRIES; attempt++ {
			_, err = batcher.Do(ctx)
			if err == nil {
				break
			}
			log.Printf("Batch %d-%d insert attempt %d failed: %v", i, end, attempt, err)
			if attempt < BATCH_MAX_RETRIES {
				time.Sleep(BATCH_RETRY_DELAY)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d after %d attempts: %v", i, end, BATCH_MAX_RETRIES, err)
		}

		log.Printf("Inserted batch %d-%d of %d chunks for document %s", i, end, total, documentID)
	}

	return nil
}

// Query runs a nearVector search scoped to one document and formats the hits
// into a single context string. Each hit is prefixed with its carried-over
// context sentence when present.
func (s *WeaviateStore) Query(ctx context.Context, vector []float32, documentID string, limit int) (string, error) {
	fields := []graphql.Field{
		{Name: "text"},
		{Name: "context"},
		{Name: "pageNumber"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueString(documentID)

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return "", err
	}
	if result.Errors != nil {
		return "", fmt.Errorf("vector query failed: %v", result.Errors[0].Message)
	}

	getData, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return NoMatchingResults, nil
	}
	data, ok := getData[CHUNK_CLASS].([]interface{})
	if !ok || len(data) == 0 {
		return NoMatchingResults, nil
	}

	var parts []string
	for _, item := range data {
		hit, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		text, _ := hit["text"].(string)
		chunkContext, _ := hit["context"].(string)
		if text == "" {
			continue
		}
		if chunkContext != "" {
			parts = append(parts, fmt.Sprintf("Context: %s\n%s", chunkContext, text))
		} else {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return NoMatchingResults, nil
	}

	return strings.Join(parts, "\n\n"), nil
}

func (s *WeaviateStore) DeleteDocument(ctx context.Context, documentID string) error {
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueString(documentID)

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %v", documentID, err)
	}
	return nil
}
