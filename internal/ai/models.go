package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fdg312/weekplan/internal/config"
)

// MaxModels caps the model list.
const MaxModels = 200

// Model is one entry of the OpenRouter catalog.
type Model struct {
	ID   string `json:"id"`
	Free bool   `json:"free"`
}

// Models lists OpenRouter models. With freeOnly, only models whose prompt
// price is "FREE", "0" or unset are returned.
func (c *Client) Models(ctx context.Context, freeOnly bool) ([]Model, error) {
	if c.cfg.Mode == config.AIModeMock {
		return []Model{{ID: "mock/weekplan-week", Free: true}}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.OpenRouterURL, "/")+"/models", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter returned %d", resp.StatusCode)
	}

	var catalog struct {
		Data []struct {
			ID      string `json:"id"`
			Pricing *struct {
				Prompt string `json:"prompt"`
			} `json:"pricing"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}

	out := make([]Model, 0, len(catalog.Data))
	for _, m := range catalog.Data {
		prompt := ""
		if m.Pricing != nil {
			prompt = m.Pricing.Prompt
		}
		free := prompt == "FREE" || prompt == "" || prompt == "0"
		if freeOnly && !free {
			continue
		}
		out = append(out, Model{ID: m.ID, Free: free})
		if len(out) == MaxModels {
			break
		}
	}
	return out, nil
}
