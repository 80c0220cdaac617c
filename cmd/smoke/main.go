package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase  string
	email    string
	password string
	token    string
	client   = &http.Client{
		Timeout: 30 * time.Second,
		// image GET may redirect to S3; the smoke test only checks the redirect
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	imageID string
)

type dayView struct {
	DOW      int    `json:"dow"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Empty    bool   `json:"empty"`
}

type gridResponse struct {
	PlanID   string    `json:"plan_id"`
	Days     []dayView `json:"days"`
	HasItems bool      `json:"has_items"`
}

func main() {
	fmt.Println("=== Weekplan E2E Smoke Test ===")
	fmt.Println()

	apiBase = strings.TrimRight(getEnv("API_BASE_URL", defaultAPIBase), "/")
	email = getEnv("SMOKE_EMAIL", fmt.Sprintf("smoke+%d@example.com", time.Now().Unix()))
	password = getEnv("SMOKE_PASSWORD", "smoke-password")

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Email: %s\n", email)
	fmt.Printf("Password: %s\n", maskString(password))
	fmt.Println()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Sign In", testSignIn},
		{"Get Planner", testGetPlanner},
		{"Set Day", testSetDay},
		{"Drop Onto Day", testDrop},
		{"Import Recipe", testImport},
		{"Upload Slot Image", testUploadSlotImage},
		{"Download Image", testDownloadImage},
		{"Save Plan", testSave},
		{"Reload Plan", testReload},
		{"Export CSV", testExportCSV},
		{"Export PDF", testExportPDF},
		{"Generate Recipes", testGenerate},
		{"Sign Out", testSignOut},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	_, err := do(http.MethodGet, "/healthz", nil, http.StatusOK, nil)
	return err
}

func testSignIn() error {
	var resp struct {
		AccessToken string `json:"access_token"`
		Created     bool   `json:"created"`
	}
	body := map[string]string{"email": email, "password": password}
	if _, err := do(http.MethodPost, "/v1/auth/sign-in", body, http.StatusOK, &resp); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("empty access_token")
	}
	token = resp.AccessToken
	return nil
}

func testGetPlanner() error {
	var g gridResponse
	if _, err := do(http.MethodGet, "/v1/planner", nil, http.StatusOK, &g); err != nil {
		return err
	}
	if len(g.Days) != 7 {
		return fmt.Errorf("expected 7 days, got %d", len(g.Days))
	}
	return nil
}

func testSetDay() error {
	var g gridResponse
	body := map[string]string{"title": "  Taco  "}
	if _, err := do(http.MethodPut, "/v1/planner/days/0", body, http.StatusOK, &g); err != nil {
		return err
	}
	if g.Days[0].Title != "Taco" {
		return fmt.Errorf("expected trimmed title, got %q", g.Days[0].Title)
	}
	return nil
}

func testDrop() error {
	var resp struct {
		Grid gridResponse `json:"grid"`
	}
	body := map[string]any{"source_element": []string{"div", "img"}, "from": "0", "to": "2"}
	if _, err := do(http.MethodPost, "/v1/planner/drop", body, http.StatusOK, &resp); err != nil {
		return err
	}
	if resp.Grid.Days[2].Title != "Taco" || !resp.Grid.Days[0].Empty {
		return fmt.Errorf("expected Taco swapped onto day 2, got %+v", resp.Grid.Days[:3])
	}
	return nil
}

func testImport() error {
	var resp struct {
		DOW int `json:"dow"`
	}
	body := map[string]any{"recipe": map[string]string{"title": "Laks med poteter"}}
	if _, err := do(http.MethodPost, "/v1/planner/import", body, http.StatusOK, &resp); err != nil {
		return err
	}
	if resp.DOW != 0 {
		return fmt.Errorf("expected first empty day 0, got %d", resp.DOW)
	}
	return nil
}

func testUploadSlotImage() error {
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for x := 0; x < 32; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="smoke.png"`)
	h.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(pngBuf.Bytes()); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, apiBase+"/v1/planner/days/2/image", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addAuth(req)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return statusError(resp)
	}

	var result struct {
		ImageID  string `json:"image_id"`
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.ImageID == "" || result.ImageURL == "" {
		return fmt.Errorf("missing image id/url in response")
	}
	imageID = result.ImageID
	return nil
}

func testDownloadImage() error {
	if imageID == "" {
		return fmt.Errorf("no image uploaded")
	}
	req, err := http.NewRequest(http.MethodGet, apiBase+"/v1/images/"+imageID, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
			return fmt.Errorf("expected image/jpeg, got %q", ct)
		}
	case http.StatusFound:
		if resp.Header.Get("Location") == "" {
			return fmt.Errorf("redirect without Location")
		}
	default:
		return statusError(resp)
	}
	return nil
}

func testSave() error {
	var resp struct {
		Saved   bool   `json:"saved"`
		Message string `json:"message"`
	}
	if _, err := do(http.MethodPost, "/v1/planner/save", nil, http.StatusOK, &resp); err != nil {
		return err
	}
	if !resp.Saved {
		return fmt.Errorf("save not confirmed: %q", resp.Message)
	}
	return nil
}

func testReload() error {
	var g gridResponse
	if _, err := do(http.MethodPost, "/v1/planner/load", nil, http.StatusOK, &g); err != nil {
		return err
	}
	if g.Days[2].Title != "Taco" || g.Days[0].Title != "Laks med poteter" || g.Days[2].ImageURL == "" {
		return fmt.Errorf("reloaded plan does not match saved plan: %+v", g.Days[:3])
	}
	return nil
}

func testExportCSV() error {
	resp, err := do(http.MethodGet, "/v1/planner/export?format=csv", nil, http.StatusOK, nil)
	if err != nil {
		return err
	}
	if !strings.Contains(resp, "Taco") {
		return fmt.Errorf("csv export does not contain saved title")
	}
	return nil
}

func testExportPDF() error {
	resp, err := do(http.MethodGet, "/v1/planner/export?format=pdf", nil, http.StatusOK, nil)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(resp, "%PDF") {
		return fmt.Errorf("export is not a PDF")
	}
	return nil
}

func testGenerate() error {
	var resp struct {
		Recipes []struct {
			Title string `json:"title"`
		} `json:"recipes"`
	}
	body := map[string]any{"provider": getEnv("SMOKE_AI_PROVIDER", "mock")}
	if _, err := do(http.MethodPost, "/v1/recipes/generate", body, http.StatusOK, &resp); err != nil {
		return err
	}
	if len(resp.Recipes) == 0 {
		return fmt.Errorf("no recipes generated")
	}
	return nil
}

func testSignOut() error {
	if _, err := do(http.MethodPost, "/v1/auth/sign-out", nil, http.StatusNoContent, nil); err != nil {
		return err
	}
	_, err := do(http.MethodGet, "/v1/planner", nil, http.StatusUnauthorized, nil)
	return err
}

// do sends a JSON request and decodes the response into out when set.
// It returns the raw body for callers that inspect non-JSON payloads.
func do(method, path string, body any, wantStatus int, out any) (string, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, apiBase+path, reader)
	if err != nil {
		return "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuth(req)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return "", statusError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return "", fmt.Errorf("decode failed: %w", err)
		}
	}
	return string(raw), nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
}

func addAuth(req *http.Request) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
