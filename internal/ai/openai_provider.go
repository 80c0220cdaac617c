package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAICompatProvider talks to any /chat/completions endpoint
// (OpenAI, OpenRouter, x.ai).
type OpenAICompatProvider struct {
	label      string
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

func NewOpenAICompatProvider(label, baseURL string, httpClient *http.Client, headers map[string]string) *OpenAICompatProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAICompatProvider{
		label:      label,
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    headers,
		httpClient: httpClient,
	}
}

func (p *OpenAICompatProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	body, err := json.Marshal(chatCompletionsRequest{
		Model: req.Model,
		Messages: []chatMessageRequest{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		if v != "" {
			httpReq.Header.Set(k, v)
		}
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s returned %d", p.label, resp.StatusCode)
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", err
	}
	// пустой ответ не ошибка: разбор JSON дальше сообщит о проблеме
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

type chatCompletionsRequest struct {
	Model    string               `json:"model"`
	Messages []chatMessageRequest `json:"messages"`
}

type chatMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
