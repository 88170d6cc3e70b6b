package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (c *OpenAIClient) Name() string {
	return fmt.Sprintf("openai/%s", c.model)
}

type chatCompletionsRequest struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (*Reply, error) {
	url := c.baseURL + "/v1/chat/completions"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	return postChatCompletions(ctx, c.httpClient, url, header, chatCompletionsRequest{
		Model:    c.model,
		Messages: messages,
	})
}

// postChatCompletions issues one OpenAI-style chat completions request. Shared
// by the direct and Azure clients, which differ only in URL and auth header.
func postChatCompletions(ctx context.Context, client *http.Client, url string, header http.Header, reqBody chatCompletionsRequest) (*Reply, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrProviderCallFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrProviderCallFailed, err)
	}
	req.Header = header.Clone()
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderCallFailed, resp.StatusCode, string(body))
	}

	var completions chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&completions); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderCallFailed, err)
	}

	if len(completions.Choices) == 0 {
		return nil, fmt.Errorf("%w: response contains no choices", ErrProviderCallFailed)
	}

	return &Reply{
		Content: completions.Choices[0].Message.Content,
		Usage:   completions.Usage,
	}, nil
}
