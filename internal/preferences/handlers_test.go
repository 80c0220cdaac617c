package preferences

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fdg312/weekplan/internal/storage/memory"
	"github.com/fdg312/weekplan/internal/userctx"
)

func TestPreferencesHandlersGetDefault(t *testing.T) {
	mem := memory.New()
	handler := NewHandler(NewService(mem.GetPreferencesStorage()))

	req := httptest.NewRequest(http.MethodGet, "/v1/preferences", nil)
	req = req.WithContext(userctx.WithUserID(context.Background(), "user-a"))
	w := httptest.NewRecorder()
	handler.HandleGet(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp PreferencesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if !resp.IsDefault {
		t.Fatalf("expected is_default=true")
	}
	if resp.Preferences.MealRules.TimePerDinnerMin != 30 || resp.Preferences.Meta.SavedAt != nil {
		t.Fatalf("unexpected defaults: %+v", resp.Preferences)
	}
	if len(resp.SetTopics) != 0 {
		t.Fatalf("expected no set topics, got %v", resp.SetTopics)
	}
}

func TestPreferencesHandlersPutAndGet(t *testing.T) {
	mem := memory.New()
	service := NewService(mem.GetPreferencesStorage())
	service.now = func() time.Time { return time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC) }
	handler := NewHandler(service)

	state := Defaults()
	state.Dietary.DietStyle = "vegetarian"
	state.Dietary.Allergies = []string{"nøtter"}
	state.Taste.Cuisines = []string{"italiensk", "norsk"}
	state.MealRules.TimePerDinnerMin = 45
	body, _ := json.Marshal(state)

	ctx := userctx.WithUserID(context.Background(), "user-a")
	req := httptest.NewRequest(http.MethodPut, "/v1/preferences", bytes.NewReader(body)).WithContext(ctx)
	w := httptest.NewRecorder()
	handler.HandlePut(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var put PreferencesResponse
	json.NewDecoder(w.Body).Decode(&put)
	if put.Preferences.Meta.SavedAt == nil || *put.Preferences.Meta.SavedAt != "2026-03-02T18:00:00Z" {
		t.Fatalf("expected saved_at stamp, got %v", put.Preferences.Meta.SavedAt)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/preferences", nil).WithContext(ctx)
	w = httptest.NewRecorder()
	handler.HandleGet(w, req)

	var got PreferencesResponse
	json.NewDecoder(w.Body).Decode(&got)
	if got.IsDefault {
		t.Fatal("expected stored preferences")
	}
	want := []string{"diet", "allergies", "time", "cuisines"}
	if len(got.SetTopics) != len(want) {
		t.Fatalf("expected topics %v, got %v", want, got.SetTopics)
	}
	for i := range want {
		if got.SetTopics[i] != want[i] {
			t.Fatalf("expected topics %v, got %v", want, got.SetTopics)
		}
	}

	in, err := service.GeneratorDefaults(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("GeneratorDefaults: %v", err)
	}
	if in.Diet != "vegetarian" || in.Allergens != "nøtter" || in.Cuisines != "italiensk, norsk" || in.MaxMins != 45 || in.Servings != 2 {
		t.Fatalf("unexpected generator input: %+v", in)
	}
}

func TestPreferencesHandlersValidation(t *testing.T) {
	mem := memory.New()
	handler := NewHandler(NewService(mem.GetPreferencesStorage()))
	ctx := userctx.WithUserID(context.Background(), "user-a")

	state := Defaults()
	state.Taste.SpiceTolerance = 11
	body, _ := json.Marshal(state)

	req := httptest.NewRequest(http.MethodPut, "/v1/preferences", bytes.NewReader(body)).WithContext(ctx)
	w := httptest.NewRecorder()
	handler.HandlePut(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/preferences", nil)
	w = httptest.NewRecorder()
	handler.HandleGet(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without user, got %d", w.Code)
	}
}

func TestIsTopicSet(t *testing.T) {
	d := Defaults()
	for _, topic := range Topics {
		if IsTopicSet(d, topic) {
			t.Errorf("topic %q should not be set on defaults", topic)
		}
	}
	if IsTopicSet(d, "unknown") {
		t.Error("unknown topic must not be set")
	}

	d.Taste.AllowDesserts = false
	d.SkillBudget.Equipment = []string{"airfryer"}
	if !IsTopicSet(d, "dessert") || !IsTopicSet(d, "equipment") {
		t.Error("expected dessert and equipment to be set")
	}
}
