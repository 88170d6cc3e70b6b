package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/saleh1312/BarCloudTask/internal/credentials"
)

type Config struct {
	Provider  string `envconfig:"PROVIDER" default:"openai"`
	ModelName string `envconfig:"MODEL_NAME"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`

	AzureEndpoint   string `envconfig:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIKey     string `envconfig:"AZURE_OPENAI_API_KEY"`
	AzureDeployment string `envconfig:"AZURE_OPENAI_DEPLOYMENT"`
	AzureAPIVersion string `envconfig:"AZURE_OPENAI_API_VERSION" default:"2024-06-01"`

	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL"`

	IntentsPath string `envconfig:"INTENTS_PATH"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"8080"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Environment variables win; the OS keychain fills the gaps.
	cfg.OpenAIAPIKey = credentials.GetOrEnv(credentials.KeyOpenAI, cfg.OpenAIAPIKey)
	cfg.AzureAPIKey = credentials.GetOrEnv(credentials.KeyAzure, cfg.AzureAPIKey)
	cfg.AnthropicAPIKey = credentials.GetOrEnv(credentials.KeyAnthropic, cfg.AnthropicAPIKey)

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when PROVIDER=openai")
		}
	case "azure":
		if c.AzureEndpoint == "" || c.AzureAPIKey == "" || c.AzureDeployment == "" {
			return fmt.Errorf("AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and AZURE_OPENAI_DEPLOYMENT are required when PROVIDER=azure")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when PROVIDER=anthropic")
		}
	}
	return nil
}
