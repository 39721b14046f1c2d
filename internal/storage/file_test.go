package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/ShelfGoat/internal/config"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var testFields = []string{"title", "price"}

func testProducts() []*types.Product {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	a := types.NewProduct()
	a.Set("title", "Milk, Full Cream", true)
	a.Set("price", "$3.10", true)
	a.Category, a.Store, a.Page, a.URL, a.ScrapedAt = "Dairy", "woolworths", 1, "https://shop.test/c/dairy", at

	b := types.NewProduct()
	b.Set("title", "Cheddar", true)
	b.Set("price", types.Sentinel, false)
	b.Category, b.Store, b.Page, b.URL, b.ScrapedAt = "Dairy", "woolworths", 2, "https://shop.test/c/dairy?page=2", at
	return []*types.Product{a, b}
}

func readCSV(t *testing.T, r io.Reader) [][]string {
	t.Helper()
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

func TestCSVStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage("csv", dir, "none", types.Columns(testFields), testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(testProducts()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "products.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := [][]string{
		{"category", "store", "page", "title", "price", "url", "scraped_at"},
		{"Dairy", "woolworths", "1", "Milk, Full Cream", "$3.10", "https://shop.test/c/dairy", "2024-05-01T09:30:00Z"},
		{"Dairy", "woolworths", "2", "Cheddar", "NA", "https://shop.test/c/dairy?page=2", "2024-05-01T09:30:00Z"},
	}
	if diff := cmp.Diff(want, readCSV(t, f)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVStorageHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVStorage(filepath.Join(dir, "out.csv"), "none", types.Columns(testFields), testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "out.csv"))
	if got := strings.TrimSpace(string(data)); got != "category,store,page,title,price,url,scraped_at" {
		t.Errorf("header = %q", got)
	}
}

func TestCSVStorageBrotli(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage("csv", dir, "brotli", types.Columns(testFields), testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(testProducts()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "products.csv.br"))
	if err != nil {
		t.Fatalf("compressed file missing: %v", err)
	}
	defer f.Close()

	rows := readCSV(t, brotli.NewReader(f))
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][3] != "Milk, Full Cream" {
		t.Errorf("title = %q", rows[1][3])
	}
}

func TestJSONStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage("json", dir, "none", nil, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(testProducts()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "products.json"))
	if err != nil {
		t.Fatal(err)
	}
	var docs []map[string]any
	if err := json.Unmarshal(data, &docs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[1]["price"] != "NA" || docs[1]["page"] != float64(2) {
		t.Errorf("doc = %v", docs[1])
	}
}

func TestJSONLStorageBrotli(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage("jsonl", dir, "brotli", nil, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(testProducts()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "products.jsonl.br"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := json.NewDecoder(brotli.NewReader(f))
	var titles []string
	for dec.More() {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			t.Fatal(err)
		}
		titles = append(titles, doc["title"].(string))
	}
	if diff := cmp.Diff([]string{"Milk, Full Cream", "Cheddar"}, titles); diff != "" {
		t.Errorf("titles mismatch:\n%s", diff)
	}
}

func TestNewMulti(t *testing.T) {
	dir := t.TempDir()
	cfg := config.StorageConfig{Type: "csv, jsonl", OutputPath: dir, Compression: "none"}

	s, err := New(cfg, types.Columns(testFields), testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "multi" {
		t.Errorf("name = %q", s.Name())
	}
	if err := s.Store(testProducts()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"products.csv", "products.jsonl"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestNewUnsupported(t *testing.T) {
	_, err := New(config.StorageConfig{Type: "parquet", OutputPath: t.TempDir()}, nil, testLogger)
	var sErr *types.StorageError
	if !errors.As(err, &sErr) || sErr.Backend != "parquet" {
		t.Errorf("expected StorageError for parquet, got %v", err)
	}
}
