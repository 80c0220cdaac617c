package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/weekplan/internal/config"
)

// Client routes completions to the named provider.
type Client struct {
	cfg        config.AIConfig
	providers  map[string]Provider
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	timeoutSeconds := cfg.AI.TimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	httpClient := &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}

	c := &Client{
		cfg:        cfg.AI,
		httpClient: httpClient,
		providers: map[string]Provider{
			config.ProviderMock: NewMockProvider(),
		},
	}
	if cfg.AI.Mode == config.AIModeMock {
		return c
	}

	c.providers[config.ProviderOpenRouter] = NewOpenAICompatProvider("OpenRouter", cfg.AI.OpenRouterURL, httpClient, map[string]string{
		"HTTP-Referer": cfg.AI.OpenRouterReferer,
		"X-Title":      "Weekplan.ai Recipe Generator",
	})
	c.providers[config.ProviderOpenAI] = NewOpenAICompatProvider("OpenAI", cfg.AI.OpenAIBaseURL, httpClient, nil)
	c.providers[config.ProviderGrok] = NewOpenAICompatProvider("Grok", cfg.AI.GrokBaseURL, httpClient, nil)
	c.providers[config.ProviderGemini] = NewGeminiProvider()
	return c
}

// Register replaces or adds a provider.
func (c *Client) Register(name string, p Provider) {
	c.providers[name] = p
}

// DefaultProvider is used when a request names none.
func (c *Client) DefaultProvider() string {
	if c.cfg.DefaultProvider == "" {
		return config.ProviderMock
	}
	return c.cfg.DefaultProvider
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	req.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
	if req.Provider == "" {
		req.Provider = c.DefaultProvider()
	}
	req.Model = strings.TrimSpace(req.Model)
	if req.Model == "" {
		req.Model = c.cfg.DefaultModel
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.APIKey == "" {
		req.APIKey = c.cfg.KeyFor(req.Provider)
	}

	p, ok := c.providers[req.Provider]
	if !ok {
		return "", ErrUnsupportedProvider
	}
	if req.Provider != config.ProviderMock {
		if req.APIKey == "" {
			return "", ErrAPIKeyRequired
		}
		if req.Model == "" {
			return "", ErrModelRequired
		}
	}

	return p.Complete(ctx, req)
}
