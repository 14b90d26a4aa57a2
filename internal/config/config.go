package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTLHours int    `yaml:"token_ttl_hours"`
		SeedPassword  string `yaml:"seed_password"`
	} `yaml:"auth"`
	Generation struct {
		APIKey         string `yaml:"api_key"`
		ModelName      string `yaml:"model_name"`
		MaxRetries     int    `yaml:"max_retries"`
		RetryDelaySecs int64  `yaml:"retry_delay_seconds"`
		TimeoutSecs    int64  `yaml:"timeout_seconds"`
	} `yaml:"generation"`
	Review struct {
		APIKey      string `yaml:"api_key"`
		BaseURL     string `yaml:"base_url"`
		ModelName   string `yaml:"model_name"`
		MaxRetries  int    `yaml:"max_retries"`
		TimeoutSecs int64  `yaml:"timeout_seconds"`
	} `yaml:"review"`
	Embedding struct {
		Dimension           int     `yaml:"dimension"`
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
		TopK                int     `yaml:"top_k"`
	} `yaml:"embedding"`
	Detector struct {
		ContextWindow int `yaml:"context_window"`
	} `yaml:"detector"`
	Documents struct {
		Dir string `yaml:"dir"`
	} `yaml:"documents"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Set defaults
	if config.Server.Port == "" {
		config.Server.Port = ":8080"
	}
	if config.Auth.TokenTTLHours == 0 {
		config.Auth.TokenTTLHours = 24
	}
	if config.Generation.ModelName == "" {
		config.Generation.ModelName = "gemini-1.5-flash"
	}
	if config.Generation.MaxRetries == 0 {
		config.Generation.MaxRetries = 3
	}
	if config.Generation.RetryDelaySecs == 0 {
		config.Generation.RetryDelaySecs = 2
	}
	if config.Generation.TimeoutSecs == 0 {
		config.Generation.TimeoutSecs = 60
	}
	if config.Review.BaseURL == "" {
		config.Review.BaseURL = "https://api.groq.com/openai/v1"
	}
	if config.Review.ModelName == "" {
		config.Review.ModelName = "llama-3.1-70b-versatile"
	}
	if config.Review.MaxRetries == 0 {
		config.Review.MaxRetries = 3
	}
	if config.Review.TimeoutSecs == 0 {
		config.Review.TimeoutSecs = 30
	}
	if config.Embedding.Dimension == 0 {
		config.Embedding.Dimension = 256
	}
	if config.Embedding.SimilarityThreshold == 0 {
		config.Embedding.SimilarityThreshold = 0.85
	}
	if config.Embedding.TopK == 0 {
		config.Embedding.TopK = 3
	}
	if config.Detector.ContextWindow == 0 {
		config.Detector.ContextWindow = 100
	}
	if config.Documents.Dir == "" {
		config.Documents.Dir = "reference_documents"
	}

	// Expand environment variables in secrets
	config.Database.URL = os.ExpandEnv(config.Database.URL)
	config.Auth.JWTSecret = os.ExpandEnv(config.Auth.JWTSecret)
	config.Generation.APIKey = os.ExpandEnv(config.Generation.APIKey)
	config.Review.APIKey = os.ExpandEnv(config.Review.APIKey)

	return config, nil
}
