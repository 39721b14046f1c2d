package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestProductPresence(t *testing.T) {
	p := NewProduct()
	p.Set("title", "Milk", true)
	p.Set("price", Sentinel, false)

	if !p.Has("price") || p.Found("price") {
		t.Error("price should be set but not found")
	}
	if p.Has("saving") {
		t.Error("saving was never set")
	}
	if diff := cmp.Diff([]string{"price", "saving"}, p.Missing([]string{"title", "price", "saving"})); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestColumns(t *testing.T) {
	want := []string{"category", "store", "page", "title", "price", "url", "scraped_at"}
	if diff := cmp.Diff(want, Columns([]string{"title", "price"})); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestProductFlatMapAndJSON(t *testing.T) {
	p := NewProduct()
	p.Set("title", "Bread", true)
	p.Category = "Bakery"
	p.Page = 3
	p.ScrapedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	flat := p.ToFlatMap()
	if flat["page"] != "3" || flat["category"] != "Bakery" || flat["scraped_at"] != "2024-01-02T03:04:05Z" {
		t.Errorf("flat = %v", flat)
	}

	data, err := p.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["title"] != "Bread" || doc["page"] != float64(3) {
		t.Errorf("doc = %v", doc)
	}
}

func TestProductClone(t *testing.T) {
	p := NewProduct()
	p.Set("title", "Tea", true)
	c := p.Clone()
	c.Set("title", "Coffee", false)

	if p.Get("title") != "Tea" || !p.Found("title") {
		t.Error("clone should not share maps with its source")
	}
}
