package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string              `mapstructure:"port"`
	UploadDir           string              `mapstructure:"upload_dir"`
	AIProvider          string              `mapstructure:"ai_provider"` // "openai" or "gemini"
	AIEndpoint          string              `mapstructure:"ai_endpoint"`
	Model               string              `mapstructure:"model"`
	PlannerModel        string              `mapstructure:"planner_model"`
	EmbeddingModel      string              `mapstructure:"embedding_model"`
	OpenAIAPIKey        string              `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys       []string            `mapstructure:"gemini_api_keys"`
	MongoURI            string              `mapstructure:"MONGODB_URI"`
	MongoDatabase       string              `mapstructure:"mongo_database"`
	SearchAPIKey        string              `mapstructure:"GOOGLE_SEARCH_API_KEY"`
	SearchEngineID      string              `mapstructure:"search_engine_id"`
	MaxTokenThreshold   int                 `mapstructure:"max_token_threshold"`
	MaxChunkSize        int                 `mapstructure:"max_chunk_size"`
	OverlapRatio        float64             `mapstructure:"overlap_ratio"`
	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
}

type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("GOOGLE_SEARCH_API_KEY")

	v.SetDefault("ai_provider", "openai")
	v.SetDefault("mongo_database", "docchat")
	v.SetDefault("max_token_threshold", 25000)
	v.SetDefault("max_chunk_size", 1500)
	v.SetDefault("overlap_ratio", 0.15)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
