package llm

import (
	"fmt"

	"github.com/saleh1312/BarCloudTask/config"
)

// New constructs the completion client named by PROVIDER. Selection happens
// once at startup; an unknown name is fatal, not retried.
func New(cfg *config.Config) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ModelName), nil
	case "azure":
		return NewAzureClient(cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureDeployment, cfg.AzureAPIVersion), nil
	case "anthropic":
		return NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: openai, azure, anthropic)", ErrUnsupportedProvider, cfg.Provider)
	}
}
