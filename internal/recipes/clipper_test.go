package recipes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const jsonLDPage = `<html><head>
<title>Site title</title>
<script type="application/ld+json">{"@context":"https://schema.org","@graph":[
  {"@type":"WebSite","name":"Matblogg"},
  {"@type":["Recipe","NewsArticle"],
   "name":"Fiskesuppe",
   "image":[{"@type":"ImageObject","url":"https://img.example/suppe.jpg"}],
   "totalTime":"PT1H15M",
   "recipeIngredient":["400 g torsk","2 gulrøtter"],
   "recipeInstructions":[
     {"@type":"HowToSection","itemListElement":[{"@type":"HowToStep","text":"Kutt fisken"}]},
     {"@type":"HowToStep","text":"Kok suppen"}
   ],
   "recipeCategory":"Middag",
   "keywords":"fisk, suppe",
   "nutrition":{"calories":"430 kcal"}}
]}</script>
</head><body></body></html>`

const openGraphPage = `<html><head>
<meta property="og:title" content="Pannekaker">
<meta property="og:image" content="https://img.example/pannekaker.jpg">
</head><body></body></html>`

func TestClipperJSONLD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "weekplan-test" {
			t.Errorf("expected configured user agent")
		}
		w.Write([]byte(jsonLDPage))
	}))
	defer srv.Close()

	r, err := NewClipper(time.Second, "weekplan-test").Clip(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if r.SlotTitle() != "Fiskesuppe" || r.SlotImage() != "https://img.example/suppe.jpg" {
		t.Errorf("unexpected title/image: %q %q", r.SlotTitle(), r.SlotImage())
	}
	if r.Minutes == nil || *r.Minutes != 75 {
		t.Errorf("expected 75 minutes, got %v", r.Minutes)
	}
	if len(r.Ingredients) != 2 {
		t.Errorf("expected 2 ingredients, got %v", r.Ingredients)
	}
	if len(r.Instructions) != 2 || r.Instructions[0] != "Kutt fisken" {
		t.Errorf("unexpected instructions: %v", r.Instructions)
	}
	if len(r.Tags) != 3 {
		t.Errorf("expected category + 2 keywords, got %v", r.Tags)
	}
	if r.Nutrition == nil || *r.Nutrition.Kcal != 430 {
		t.Errorf("expected 430 kcal, got %+v", r.Nutrition)
	}
}

func TestClipperOpenGraphFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openGraphPage))
	}))
	defer srv.Close()

	r, err := NewClipper(time.Second, "").Clip(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if r.SlotTitle() != "Pannekaker" || r.SlotImage() != "https://img.example/pannekaker.jpg" {
		t.Errorf("unexpected recipe: %q %q", r.SlotTitle(), r.SlotImage())
	}
}

func TestClipperErrors(t *testing.T) {
	c := NewClipper(time.Second, "")

	if _, err := c.Clip(context.Background(), "ftp://example.com/x"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>nothing</body></html>`))
	}))
	defer empty.Close()
	if _, err := c.Clip(context.Background(), empty.URL); !errors.Is(err, ErrRecipeMissing) {
		t.Errorf("expected ErrRecipeMissing, got %v", err)
	}

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()
	if _, err := c.Clip(context.Background(), missing.URL); err == nil {
		t.Error("expected fetch error for 404")
	}
}

func TestParseISODuration(t *testing.T) {
	tests := map[string]int{"PT30M": 30, "PT1H": 60, "pt1h5m": 65, "P1DT2H": 1560}
	for in, want := range tests {
		got, ok := parseISODuration(in)
		if !ok || got != want {
			t.Errorf("parseISODuration(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "P", "30 min", "PT0M"} {
		if _, ok := parseISODuration(in); ok {
			t.Errorf("parseISODuration(%q) should fail", in)
		}
	}
}
