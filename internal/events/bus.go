// Package events carries in-process notifications between features.
package events

import (
	"context"
	"sync"

	"github.com/fdg312/weekplan/internal/planner"
)

// TopicRecipeSelected is published when a user picks a recipe for the plan.
const TopicRecipeSelected = "recipe:selected"

// RecipeSelected is the payload of TopicRecipeSelected. Day, when set,
// names the slot to overwrite if the week has no empty slot.
type RecipeSelected struct {
	UserID string
	// SessionID picks the browser session whose plan receives the recipe.
	// Empty targets the user's shared workspace.
	SessionID string
	Recipe    planner.RecipePayload
	Day       *int
}

// RecipeSelectedHandler reacts to a selected recipe. The returned dow is
// the slot that was written.
type RecipeSelectedHandler func(ctx context.Context, ev RecipeSelected) (int, error)

// Bus is a synchronous typed event bus.
type Bus struct {
	mu       sync.RWMutex
	handlers []RecipeSelectedHandler
}

func NewBus() *Bus {
	return &Bus{}
}

// SubscribeRecipeSelected adds a handler. Handlers run in order.
func (b *Bus) SubscribeRecipeSelected(h RecipeSelectedHandler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// PublishRecipeSelected runs every handler and stops at the first error.
// It returns the dow reported by the last handler, or -1 without
// subscribers.
func (b *Bus) PublishRecipeSelected(ctx context.Context, ev RecipeSelected) (int, error) {
	b.mu.RLock()
	handlers := append([]RecipeSelectedHandler(nil), b.handlers...)
	b.mu.RUnlock()

	dow := -1
	for _, h := range handlers {
		d, err := h(ctx, ev)
		if err != nil {
			return d, err
		}
		dow = d
	}
	return dow, nil
}
