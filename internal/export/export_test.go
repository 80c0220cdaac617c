package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/fdg312/weekplan/internal/planner"
)

func samplePlan() Plan {
	store := planner.NewStore()
	title := "Fiskesuppe med rømme"
	color := "#f0a"
	_ = store.SetItem(0, planner.Patch{Title: &title, Color: &color})
	other := "Taco"
	_ = store.SetItem(4, planner.Patch{Title: &other})

	return Plan{
		Title:       "My Week Plan",
		Days:        store.Items(),
		GeneratedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestCSV(t *testing.T) {
	data, err := CSV(samplePlan().Days)
	if err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("expected header + 7 rows, got %d", len(rows))
	}
	if rows[0][0] != "dow" || rows[0][4] != "color" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Monday" || rows[1][2] != "Fiskesuppe med rømme" || rows[1][4] != "#f0a" {
		t.Fatalf("unexpected monday row %v", rows[1])
	}
	if rows[2][2] != planner.EmptyTitle || rows[2][3] != planner.DefaultImage || rows[2][4] != "" {
		t.Fatalf("unexpected empty row %v", rows[2])
	}
}

func TestRender(t *testing.T) {
	t.Run("CSV", func(t *testing.T) {
		doc, err := Render("CSV", samplePlan())
		if err != nil {
			t.Fatal(err)
		}
		if doc.Filename != "weekplan-2026-03-02.csv" || doc.ContentType != "text/csv; charset=utf-8" {
			t.Fatalf("unexpected document %q %q", doc.Filename, doc.ContentType)
		}
	})

	t.Run("PDFWithQR", func(t *testing.T) {
		plan := samplePlan()
		plan.ShareURL = "http://localhost:8080/weekplan.html"
		doc, err := Render("pdf", plan)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(doc.Data, []byte("%PDF")) {
			t.Fatal("expected a PDF document")
		}
		if doc.ContentType != "application/pdf" {
			t.Fatalf("unexpected content type %q", doc.ContentType)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		if _, err := Render("xlsx", samplePlan()); !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

func TestHexRGB(t *testing.T) {
	r, g, b, ok := hexRGB("#1a2B3c")
	if !ok || r != 0x1a || g != 0x2b || b != 0x3c {
		t.Fatalf("got %d %d %d %v", r, g, b, ok)
	}
	r, g, b, ok = hexRGB("#fff")
	if !ok || r != 255 || g != 255 || b != 255 {
		t.Fatalf("got %d %d %d %v", r, g, b, ok)
	}
	if _, _, _, ok := hexRGB("red"); ok {
		t.Fatal("expected invalid color")
	}
}
