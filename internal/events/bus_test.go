package events

import (
	"context"
	"errors"
	"testing"

	"github.com/fdg312/weekplan/internal/planner"
)

func TestPublishRecipeSelected(t *testing.T) {
	bus := NewBus()

	if dow, err := bus.PublishRecipeSelected(context.Background(), RecipeSelected{}); err != nil || dow != -1 {
		t.Fatalf("no subscribers: got %d, %v", dow, err)
	}

	var order []string
	bus.SubscribeRecipeSelected(func(ctx context.Context, ev RecipeSelected) (int, error) {
		order = append(order, "first:"+ev.Recipe.SlotTitle())
		return 2, nil
	})
	bus.SubscribeRecipeSelected(func(ctx context.Context, ev RecipeSelected) (int, error) {
		order = append(order, "second:"+ev.UserID)
		return 3, nil
	})

	title := "Taco"
	dow, err := bus.PublishRecipeSelected(context.Background(), RecipeSelected{UserID: "u1", Recipe: planner.RecipePayload{Title: &title}})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if dow != 3 {
		t.Errorf("expected dow from last handler, got %d", dow)
	}
	if len(order) != 2 || order[0] != "first:Taco" || order[1] != "second:u1" {
		t.Errorf("unexpected handler order: %v", order)
	}
}

func TestPublishStopsAtFirstError(t *testing.T) {
	bus := NewBus()
	boom := errors.New("boom")

	bus.SubscribeRecipeSelected(func(ctx context.Context, ev RecipeSelected) (int, error) {
		return 0, boom
	})
	bus.SubscribeRecipeSelected(func(ctx context.Context, ev RecipeSelected) (int, error) {
		t.Fatal("second handler must not run")
		return 0, nil
	})

	if _, err := bus.PublishRecipeSelected(context.Background(), RecipeSelected{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
