package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"port"`
	MongoURI string `mapstructure:"MONGODB_URI"`
	MongoDB  string `mapstructure:"mongo_db"`

	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Generation GenerationConfig `mapstructure:"generation"`
	Weaviate   WeaviateConfig   `mapstructure:"weaviate"`
	Worker     WorkerConfig     `mapstructure:"worker"`

	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

// EmbeddingConfig selects the embedding backend. Backend is "ollama"
// (local) or "openai" (API); all vectors in one index must come from one
// backend.
type EmbeddingConfig struct {
	Backend      string `mapstructure:"backend"`
	OllamaURL    string `mapstructure:"ollama_url"`
	OllamaModel  string `mapstructure:"ollama_model"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel  string `mapstructure:"openai_model"`
}

// GenerationConfig selects the generative backend used by the message
// generator. Backend is "openai" or "gemini".
type GenerationConfig struct {
	Backend        string `mapstructure:"backend"`
	Endpoint       string `mapstructure:"endpoint"`
	Model          string `mapstructure:"model"`
	OpenAIAPIKey   string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type WeaviateConfig struct {
	// Enabled switches between the Weaviate index and the in-memory index.
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	APIKey  string `mapstructure:"WEAVIATE_APIKEY"`
}

type WorkerConfig struct {
	Concurrency       int     `mapstructure:"concurrency"`
	MaxRetries        int     `mapstructure:"max_retries"`
	AutoSendEnabled   bool    `mapstructure:"auto_send_enabled"`
	AutoSendThreshold float64 `mapstructure:"auto_send_threshold"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables for secrets
	v.BindEnv("MONGODB_URI")
	v.BindEnv("ADMIN_PASSWORD")
	v.BindEnv("embedding.OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("generation.OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("generation.GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.MongoDB == "" {
		c.MongoDB = "bizpilot"
	}
	if c.Embedding.Backend == "" {
		c.Embedding.Backend = "ollama"
	}
	if c.Generation.Backend == "" {
		c.Generation.Backend = "openai"
	}
	if c.Generation.TimeoutSeconds == 0 {
		c.Generation.TimeoutSeconds = 30
	}
	if c.Worker.Concurrency == 0 {
		c.Worker.Concurrency = 4
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 3
	}
	if c.Worker.AutoSendThreshold == 0 {
		c.Worker.AutoSendThreshold = 0.85
	}
}
