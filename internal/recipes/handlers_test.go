package recipes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/weekplan/internal/ai"
	"github.com/fdg312/weekplan/internal/config"
	"github.com/fdg312/weekplan/internal/userctx"
)

type fakeDefaults struct {
	input GeneratorInput
	calls int
}

func (f *fakeDefaults) GeneratorDefaults(ctx context.Context, userID string) (GeneratorInput, error) {
	f.calls++
	return f.input, nil
}

type capturingCompleter struct {
	prompt string
	reply  string
}

func (c *capturingCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	c.prompt = req.Prompt
	return c.reply, nil
}

func mockClient() *ai.Client {
	return ai.NewClient(&config.Config{AI: config.AIConfig{Mode: config.AIModeMock, DefaultProvider: config.ProviderMock}})
}

func TestHandleGenerate(t *testing.T) {
	client := mockClient()
	h := NewHandler(NewService(client, nil), NewClipper(time.Second, ""), client)

	body, _ := json.Marshal(GenerateRequest{Provider: "mock"})
	req := httptest.NewRequest(http.MethodPost, "/v1/recipes/generate", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleGenerate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp recipesResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Recipes) != 7 {
		t.Fatalf("expected 7 recipes, got %d", len(resp.Recipes))
	}
	if resp.Recipes[0].Day == nil || *resp.Recipes[0].Day != "Mandag" {
		t.Errorf("expected Mandag first, got %+v", resp.Recipes[0])
	}
}

func TestHandleGenerateUnsupportedProvider(t *testing.T) {
	client := mockClient()
	h := NewHandler(NewService(client, nil), nil, client)

	req := httptest.NewRequest(http.MethodPost, "/v1/recipes/generate", strings.NewReader(`{"provider":"openai","api_key":"k","model":"m"}`))
	w := httptest.NewRecorder()
	h.HandleGenerate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGenerateUsesStoredPreferences(t *testing.T) {
	defaults := &fakeDefaults{input: GeneratorInput{Diet: "Vegan", Servings: 4}}
	completer := &capturingCompleter{reply: `{"week":[{"title":"Tofu"}]}`}
	svc := NewService(completer, defaults)

	ctx := userctx.WithUserID(context.Background(), "u1")
	recipes, err := svc.Generate(ctx, "u1", GenerateRequest{Prefs: GeneratorInput{MaxMins: 15}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(recipes) != 1 || defaults.calls != 1 {
		t.Fatalf("unexpected result: %d recipes, %d default lookups", len(recipes), defaults.calls)
	}
	for _, want := range []string{"Kosthold/tema: Vegan", "Antall porsjoner: 4", "15 minutter"} {
		if !strings.Contains(completer.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateEmptyWeekIsAIError(t *testing.T) {
	completer := &capturingCompleter{reply: `{"week":[]}`}
	client := mockClient()
	h := NewHandler(NewService(completer, nil), nil, client)

	req := httptest.NewRequest(http.MethodPost, "/v1/recipes/generate", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.HandleGenerate(w, req)

	if w.Code != http.StatusBadGateway || !strings.Contains(w.Body.String(), "Oppskriftlisten er tom.") {
		t.Fatalf("expected 502 with empty list message, got %d %s", w.Code, w.Body.String())
	}
}

func TestHandleClip(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openGraphPage))
	}))
	defer page.Close()

	client := mockClient()
	h := NewHandler(NewService(client, nil), NewClipper(time.Second, ""), client)

	body, _ := json.Marshal(clipRequest{URL: page.URL})
	w := httptest.NewRecorder()
	h.HandleClip(w, httptest.NewRequest(http.MethodPost, "/v1/recipes/clip", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.HandleClip(w, httptest.NewRequest(http.MethodPost, "/v1/recipes/clip", strings.NewReader(`{"url":"not a url"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleModelsMock(t *testing.T) {
	client := mockClient()
	h := NewHandler(nil, nil, client)

	w := httptest.NewRecorder()
	h.HandleModels(w, httptest.NewRequest(http.MethodGet, "/v1/recipes/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp modelsResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Models) == 0 {
		t.Fatal("expected at least one model")
	}
}
