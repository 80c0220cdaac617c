package planner

import "testing"

func TestApplyDrop(t *testing.T) {
	seed := func() *Store {
		store := NewStore()
		_ = store.SetItem(0, Patch{Title: strPtr("A")})
		_ = store.SetItem(1, Patch{Title: strPtr("B")})
		return store
	}

	t.Run("swaps and requests rerender", func(t *testing.T) {
		store := seed()
		res := ApplyDrop(store, Drop{Origin: []string{"img"}, From: "0", To: "1"})
		if !res.Swapped || !res.Rerender {
			t.Fatalf("expected swap, got %+v", res)
		}
		items := store.Items()
		if items[0].Title != "B" || items[1].Title != "A" {
			t.Errorf("unexpected grid: %q %q", items[0].Title, items[1].Title)
		}
	})

	t.Run("drag from interactive child is ignored", func(t *testing.T) {
		for _, origin := range [][]string{{"button"}, {"A"}, {"span", "input"}} {
			store := seed()
			res := ApplyDrop(store, Drop{Origin: origin, From: "0", To: "1"})
			if res.Swapped {
				t.Errorf("origin %v should not reorder", origin)
			}
			if store.Items()[0].Title != "A" {
				t.Errorf("origin %v mutated the store", origin)
			}
		}
	})

	t.Run("drop on self is a no-op", func(t *testing.T) {
		store := seed()
		res := ApplyDrop(store, Drop{From: "1", To: "1"})
		if res.Swapped || res.Rerender {
			t.Errorf("expected no-op, got %+v", res)
		}
	})

	t.Run("non numeric ids are ignored", func(t *testing.T) {
		for _, d := range []Drop{{From: "x", To: "1"}, {From: "0", To: ""}, {From: "1.5", To: "0"}} {
			store := seed()
			if res := ApplyDrop(store, d); res.Swapped {
				t.Errorf("drop %+v should be ignored", d)
			}
		}
	})

	t.Run("out of range ids are ignored", func(t *testing.T) {
		store := seed()
		if res := ApplyDrop(store, Drop{From: "0", To: "9"}); res.Swapped {
			t.Error("expected out of range drop to be ignored")
		}
		if store.Items()[0].Title != "A" {
			t.Error("store mutated by invalid drop")
		}
	})

	t.Run("move onto empty slot", func(t *testing.T) {
		store := seed()
		ApplyDrop(store, Drop{From: "0", To: "5"})
		if _, ok := store.Item(0); ok {
			t.Error("expected slot 0 empty")
		}
		if item, _ := store.Item(5); item.Title != "A" {
			t.Errorf("expected A at 5, got %q", item.Title)
		}
	})
}
