/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"

	"github.com/tieubaoca/docchat-be/agent"
	"github.com/tieubaoca/docchat-be/config"
	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/tools"
	"github.com/tieubaoca/docchat-be/types"
)

// app bundles the wired services shared by the server and the CLI commands.
type app struct {
	cfg          *config.Config
	aiService    service.AIService
	documentRepo repository.DocumentRepo
	vectorStore  database.VectorStore
	mainAgent    *agent.MainAgent
}

func initApp(configFile string) (*app, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	aiService, err := newAIService(cfg)
	if err != nil {
		return nil, err
	}

	vectorStore, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Weaviate database: %w", err)
	}

	mongoClient, err := database.NewMongoClient(cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	mongoDb := mongoClient.Database(cfg.MongoDatabase)
	documentRepo := repository.NewDocumentRepo(mongoDb)

	pdfService := service.NewPDFService("temp")
	chunker := service.NewChunker(types.ChunkerConfig{
		MaxChunkSize: cfg.MaxChunkSize,
		OverlapRatio: cfg.OverlapRatio,
	})

	var searchService *service.SearchService
	if cfg.SearchAPIKey != "" && cfg.SearchEngineID != "" {
		searchService, err = service.NewSearchService(cfg.SearchAPIKey, cfg.SearchEngineID)
		if err != nil {
			return nil, err
		}
	}

	registry := tools.NewRegistry()
	tools.RegisterDocumentTools(registry, pdfService, chunker, aiService, vectorStore, documentRepo)
	tools.RegisterQueryTools(registry, aiService, vectorStore, searchService)

	mainAgent := agent.NewMainAgent(registry, aiService, documentRepo, cfg.MaxTokenThreshold)

	return &app{
		cfg:          cfg,
		aiService:    aiService,
		documentRepo: documentRepo,
		vectorStore:  vectorStore,
		mainAgent:    mainAgent,
	}, nil
}

func newAIService(cfg *config.Config) (service.AIService, error) {
	switch cfg.AIProvider {
	case "gemini":
		return service.NewGeminiService(cfg.GeminiAPIKeys, cfg.Model, cfg.EmbeddingModel)
	case "openai", "":
		return service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, cfg.PlannerModel, cfg.EmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AIProvider)
	}
}
