package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fdg312/weekplan/internal/planner"
)

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrRecipeMissing = errors.New("no recipe found on page")
)

// Clipper turns a recipe web page into a RecipePayload.
type Clipper struct {
	httpClient *http.Client
	userAgent  string
}

func NewClipper(timeout time.Duration, userAgent string) *Clipper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Clipper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// Clip fetches rawURL and reads the schema.org Recipe from its JSON-LD.
// Pages without one fall back to Open Graph title and image.
func (c *Clipper) Clip(ctx context.Context, rawURL string) (planner.RecipePayload, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return planner.RecipePayload{}, ErrInvalidURL
	}

	doc, err := c.fetch(ctx, u.String())
	if err != nil {
		return planner.RecipePayload{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	if recipe, ok := recipeFromJSONLD(doc); ok {
		return recipe, nil
	}
	if recipe, ok := recipeFromOpenGraph(doc); ok {
		return recipe, nil
	}
	return planner.RecipePayload{}, ErrRecipeMissing
}

func (c *Clipper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func recipeFromJSONLD(doc *goquery.Document) (planner.RecipePayload, bool) {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		found = findRecipeNode(data)
		return found == nil
	})
	if found == nil {
		return planner.RecipePayload{}, false
	}

	var r planner.RecipePayload
	if name := strings.TrimSpace(asString(found["name"])); name != "" {
		r.Title = &name
	}
	if img := imageURL(found["image"]); img != "" {
		r.Image = &img
	}
	if mins, ok := parseISODuration(asString(found["totalTime"])); ok {
		r.Minutes = &mins
	} else if mins, ok := parseISODuration(asString(found["cookTime"])); ok {
		r.Minutes = &mins
	}
	r.Ingredients = stringList(found["recipeIngredient"])
	r.Instructions = instructionList(found["recipeInstructions"])
	r.Tags = append(stringList(found["recipeCategory"]), keywordList(found["keywords"])...)
	if n, ok := found["nutrition"].(map[string]any); ok {
		if kcal, ok := leadingNumber(asString(n["calories"])); ok {
			r.Nutrition = &planner.Nutrition{Kcal: &kcal}
		}
	}
	return r, r.Title != nil
}

// findRecipeNode walks objects, arrays and @graph for the first Recipe.
func findRecipeNode(v any) map[string]any {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			if found := findRecipeNode(item); found != nil {
				return found
			}
		}
	case map[string]any:
		if isRecipeType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func recipeFromOpenGraph(doc *goquery.Document) (planner.RecipePayload, bool) {
	var r planner.RecipePayload
	title := metaContent(doc, "og:title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		return r, false
	}
	r.Title = &title
	if img := metaContent(doc, "og:image"); img != "" {
		r.Image = &img
	}
	return r, true
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// imageURL accepts a string, a list or an ImageObject.
func imageURL(v any) string {
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case []any:
		for _, item := range img {
			if u := imageURL(item); u != "" {
				return u
			}
		}
	case map[string]any:
		return strings.TrimSpace(asString(img["url"]))
	}
	return ""
}

func stringList(v any) []string {
	switch list := v.(type) {
	case string:
		if s := strings.TrimSpace(list); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func keywordList(v any) []string {
	if s, ok := v.(string); ok {
		var out []string
		for _, kw := range strings.Split(s, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				out = append(out, kw)
			}
		}
		return out
	}
	return stringList(v)
}

// instructionList flattens strings, HowToStep and HowToSection entries.
func instructionList(v any) []string {
	var out []string
	switch node := v.(type) {
	case string:
		if s := strings.TrimSpace(node); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range node {
			out = append(out, instructionList(item)...)
		}
	case map[string]any:
		if items, ok := node["itemListElement"]; ok {
			return instructionList(items)
		}
		if s := strings.TrimSpace(asString(node["text"])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:\d+S)?)?$`)

// parseISODuration reads PT1H30M style durations into minutes.
func parseISODuration(s string) (int, bool) {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil || s == "" {
		return 0, false
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	mins, _ := strconv.Atoi(m[3])
	total := days*24*60 + hours*60 + mins
	if total == 0 {
		return 0, false
	}
	return total, true
}

var numberPrefix = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)`)

func leadingNumber(s string) (float64, bool) {
	m := numberPrefix.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	return f, err == nil
}
