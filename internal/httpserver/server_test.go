package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/weekplan/internal/config"
)

func TestHealthz(t *testing.T) {
	cfg := &config.Config{Port: 8080}
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	cfg := &config.Config{Port: 8080}
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func testServerConfig() *config.Config {
	return &config.Config{
		Port:              8080,
		AuthRequired:      true,
		JWTSecret:         "test-secret",
		JWTIssuer:         "weekplan-test",
		JWTTTLMinutes:     60,
		PasswordMinLength: 6,
		EmailSenderMode:   "local",
		AppPublicURL:      "http://localhost:5173",
		UploadMaxMB:       2,
		UploadAllowedMime: "image/jpeg,image/png",
		PlanDefaultTitle:  "My Week Plan",
		PlanAtomicSave:    true,
		AI:                config.AIConfig{Mode: config.AIModeMock},
	}
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) call(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func (c *client) signIn(email, password string) {
	c.t.Helper()
	w := c.call(http.MethodPost, "/v1/auth/sign-in", map[string]string{"email": email, "password": password})
	if w.Code != http.StatusOK {
		c.t.Fatalf("sign-in: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		c.t.Fatal(err)
	}
	c.token = resp.AccessToken
}

type grid struct {
	PlanID string `json:"plan_id"`
	Days   []struct {
		DOW   int    `json:"dow"`
		Title string `json:"title"`
		Empty bool   `json:"empty"`
	} `json:"days"`
	HasItems bool `json:"has_items"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}
	return v
}

func TestPlannerRequiresToken(t *testing.T) {
	srv := New(testServerConfig())
	c := &client{t: t, handler: srv.Handler()}

	if w := c.call(http.MethodGet, "/v1/planner", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := c.call(http.MethodGet, "/v1/images/0b6f2f1e-4e0c-4c1b-9a0e-8d5f7c2a9b11", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected public image path to reach handler with 404, got %d", w.Code)
	}
}

func TestPlannerSessionFlow(t *testing.T) {
	srv := New(testServerConfig())
	defer srv.Close()
	c := &client{t: t, handler: srv.Handler()}

	c.signIn("Kari@Example.com", "hemmelig")

	g := decode[grid](t, c.call(http.MethodGet, "/v1/planner", nil))
	if g.PlanID == "" || g.HasItems || len(g.Days) != 7 {
		t.Fatalf("unexpected initial grid %+v", g)
	}

	w := c.call(http.MethodPut, "/v1/planner/days/0", map[string]string{"title": "Fårikål"})
	if w.Code != http.StatusOK {
		t.Fatalf("set day: %d %s", w.Code, w.Body.String())
	}
	w = c.call(http.MethodPost, "/v1/planner/import", map[string]any{"recipe": map[string]string{"title": "Laks"}})
	if w.Code != http.StatusOK {
		t.Fatalf("import: %d %s", w.Code, w.Body.String())
	}
	if w := c.call(http.MethodPost, "/v1/planner/save", nil); w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}

	if w := c.call(http.MethodPost, "/v1/auth/sign-out", nil); w.Code != http.StatusNoContent {
		t.Fatalf("sign-out: expected 204, got %d", w.Code)
	}
	if w := c.call(http.MethodGet, "/v1/planner", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token must be rejected, got %d", w.Code)
	}

	c.signIn("kari@example.com", "hemmelig")
	g = decode[grid](t, c.call(http.MethodGet, "/v1/planner", nil))
	if g.Days[0].Title != "Fårikål" || g.Days[1].Title != "Laks" {
		t.Fatalf("expected saved plan after new sign-in, got %+v", g.Days[:2])
	}
}

func TestRecipesAndPreferences(t *testing.T) {
	srv := New(testServerConfig())
	c := &client{t: t, handler: srv.Handler()}
	c.signIn("ola@example.com", "passord1")

	w := c.call(http.MethodPut, "/v1/preferences", map[string]any{"quick_note": "ingen nøtter"})
	if w.Code != http.StatusOK {
		t.Fatalf("preferences put: %d %s", w.Code, w.Body.String())
	}

	w = c.call(http.MethodPost, "/v1/recipes/generate", map[string]any{"provider": "mock"})
	if w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	resp := decode[struct {
		Recipes []map[string]any `json:"recipes"`
	}](t, w)
	if len(resp.Recipes) != 7 {
		t.Fatalf("expected 7 mock recipes, got %d", len(resp.Recipes))
	}
}
