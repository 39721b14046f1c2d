package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/ShelfGoat/internal/config"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func product(title, price string) *types.Product {
	p := types.NewProduct()
	p.Set("title", title, title != "")
	p.Set("price", price, price != "")
	p.Category = "Dairy"
	return p
}

func TestPipelineBasic(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})

	result, err := p.Process(product("  Full Cream\n  Milk  ", " $3.10 "))
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result.Get("title") != "Full Cream Milk" {
		t.Errorf("expected collapsed title, got %q", result.Get("title"))
	}
	if result.Get("price") != "$3.10" {
		t.Errorf("expected trimmed price, got %q", result.Get("price"))
	}
}

func TestSentinelMiddleware(t *testing.T) {
	m := &SentinelMiddleware{Fields: []string{"title", "price", "saving"}, Sentinel: types.Sentinel}

	result, err := m.Process(product("Butter", ""))
	if err != nil {
		t.Fatal(err)
	}
	if result.Get("price") != types.Sentinel || result.Found("price") {
		t.Errorf("price = %q (found=%v)", result.Get("price"), result.Found("price"))
	}
	if result.Get("saving") != types.Sentinel {
		t.Errorf("unset field should be filled, got %q", result.Get("saving"))
	}
	if result.Get("title") != "Butter" || !result.Found("title") {
		t.Error("populated field should be untouched")
	}
}

func TestRequiredFieldsMiddleware(t *testing.T) {
	m := &RequiredFieldsMiddleware{Fields: []string{"title"}}

	result, err := m.Process(product("Bread", ""))
	if err != nil || result == nil {
		t.Error("product with required field should pass")
	}

	result, _ = m.Process(product("", "$2.00"))
	if result != nil {
		t.Error("product missing required field should be dropped (nil)")
	}
}

func TestDedupMiddleware(t *testing.T) {
	m, err := NewDedupMiddleware(10)
	if err != nil {
		t.Fatal(err)
	}

	if r, _ := m.Process(product("Eggs", "$6.00")); r == nil {
		t.Fatal("first product should pass")
	}
	dup := product("Eggs", "$6.00")
	dup.Category = "Breakfast"
	if r, _ := m.Process(dup); r != nil {
		t.Error("duplicate in another category should be dropped")
	}
	if r, _ := m.Process(product("Eggs", "$7.00")); r == nil {
		t.Error("different price should pass")
	}
}

func TestDedupMiddlewareInvalidSize(t *testing.T) {
	if _, err := NewDedupMiddleware(0); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestStoreMiddleware(t *testing.T) {
	m := &StoreMiddleware{Store: "woolworths"}

	r, _ := m.Process(product("Tea", "$4"))
	if r.Store != "woolworths" {
		t.Errorf("store = %q", r.Store)
	}

	tagged := product("Tea", "$4")
	tagged.Store = "coles"
	r, _ = m.Process(tagged)
	if r.Store != "coles" {
		t.Errorf("existing store should be kept, got %q", r.Store)
	}
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "failing" }
func (failingMiddleware) Process(*types.Product) (*types.Product, error) {
	return nil, errors.New("boom")
}

func TestPipelineError(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})
	p.Use(failingMiddleware{})

	_, err := p.Process(product("x", "y"))
	var pErr *types.PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pErr.Stage != "failing" {
		t.Errorf("stage = %q", pErr.Stage)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Pipeline.Dedup = true
	cfg.Pipeline.RequiredFields = []string{"title"}

	p, err := FromConfig(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 5 {
		t.Errorf("expected 5 stages, got %d", p.Len())
	}

	in := []*types.Product{
		product(" Milk ", "$2"),
		product("", "$3"),
		product("Milk", "$2"),
		product("Cheese", ""),
	}
	out, err := p.ProcessAll(in)
	if err != nil {
		t.Fatal(err)
	}

	var titles []string
	for _, prod := range out {
		titles = append(titles, prod.Get("title"))
		if prod.Store != "woolworths" {
			t.Errorf("store = %q", prod.Store)
		}
		if len(prod.Fields) != len(types.ProductFields) {
			t.Errorf("expected %d fields, got %d", len(types.ProductFields), len(prod.Fields))
		}
	}
	if diff := cmp.Diff([]string{"Milk", "Cheese"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if out[1].Get("price") != types.Sentinel {
		t.Errorf("missing price should be sentinel, got %q", out[1].Get("price"))
	}
}
