package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AzureClient talks to an Azure OpenAI managed endpoint. Same wire format as
// the direct client, but the model is addressed by deployment id in the URL
// and the credential travels in the api-key header.
type AzureClient struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	httpClient *http.Client
}

func NewAzureClient(endpoint, apiKey, deployment, apiVersion string) *AzureClient {
	if apiVersion == "" {
		apiVersion = "2024-06-01"
	}

	return &AzureClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		deployment: deployment,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (c *AzureClient) Name() string {
	return fmt.Sprintf("azure/%s", c.deployment)
}

func (c *AzureClient) Chat(ctx context.Context, messages []Message) (*Reply, error) {
	reqURL := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, url.PathEscape(c.deployment), url.QueryEscape(c.apiVersion))

	header := http.Header{}
	header.Set("api-key", c.apiKey)

	return postChatCompletions(ctx, c.httpClient, reqURL, header, chatCompletionsRequest{
		Messages: messages,
	})
}
