package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/ShelfGoat/internal/types"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if diff := cmp.Diff(types.ProductFields, cfg.FieldNames()); diff != "" {
		t.Errorf("default fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultFieldsSaving(t *testing.T) {
	for _, f := range DefaultFields() {
		if f.Name == "saving" && f.Selector != ".sf-regprice" {
			t.Errorf("saving selector = %q", f.Selector)
		}
		if f.Type != "css" {
			t.Errorf("%s: type = %q", f.Name, f.Type)
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shelfgoat.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
catalogue:
  postcode: "4000"
timeouts:
  products: 20s
scrape:
  max_pages: 3
  categories: ["Dairy", "Bakery"]
storage:
  type: csv,jsonl
  compression: brotli
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Catalogue.Postcode != "4000" {
		t.Errorf("postcode = %q", cfg.Catalogue.Postcode)
	}
	if cfg.Timeouts.Products != 20*time.Second {
		t.Errorf("products timeout = %s", cfg.Timeouts.Products)
	}
	if cfg.Timeouts.Navigation != 30*time.Second {
		t.Errorf("navigation timeout should keep its default, got %s", cfg.Timeouts.Navigation)
	}
	if cfg.Scrape.MaxPages != 3 {
		t.Errorf("max_pages = %d", cfg.Scrape.MaxPages)
	}
	if diff := cmp.Diff([]string{"Dairy", "Bakery"}, cfg.Scrape.Categories); diff != "" {
		t.Errorf("categories mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"csv", "jsonl"}, StorageTypes(cfg.Storage.Type)); diff != "" {
		t.Errorf("storage types mismatch:\n%s", diff)
	}
	if len(cfg.Fields) != len(types.ProductFields) {
		t.Errorf("fields should keep defaults, got %d", len(cfg.Fields))
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFieldsReplaceDefaults(t *testing.T) {
	path := writeConfig(t, `
fields:
  - name: title
    selector: .sf-item-heading
    type: css
  - name: link
    selector: .//a
    type: xpath
    attribute: href
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"title", "link"}, cfg.FieldNames()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if cfg.Fields[1].Attribute != "href" {
		t.Errorf("attribute = %q", cfg.Fields[1].Attribute)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SHELFGOAT_CATALOGUE_POSTCODE", "6000")
	t.Setenv("SHELFGOAT_BROWSER_HEADLESS", "false")

	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Catalogue.Postcode != "6000" {
		t.Errorf("postcode = %q", cfg.Catalogue.Postcode)
	}
	if cfg.Browser.Headless {
		t.Error("headless should be overridden to false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad url", func(c *Config) { c.Catalogue.URL = "ftp://x" }, "catalogue.url"},
		{"empty postcode", func(c *Config) { c.Catalogue.Postcode = " " }, "postcode"},
		{"zero timeout", func(c *Config) { c.Timeouts.Products = 0 }, "timeouts.products"},
		{"empty selector", func(c *Config) { c.Selectors.NextPage = "" }, "selectors.next_page"},
		{"no fields", func(c *Config) { c.Fields = nil }, "field rule"},
		{"duplicate field", func(c *Config) { c.Fields = append(c.Fields, c.Fields[0]) }, "duplicate"},
		{"bad field type", func(c *Config) { c.Fields[0].Type = "regex" }, "type"},
		{"bad mode", func(c *Config) { c.Scrape.Mode = "turbo" }, "scrape.mode"},
		{"negative pages", func(c *Config) { c.Scrape.MaxPages = -1 }, "max_pages"},
		{"dedup size", func(c *Config) { c.Pipeline.Dedup = true; c.Pipeline.DedupSize = 0 }, "dedup_size"},
		{"unknown required", func(c *Config) { c.Pipeline.RequiredFields = []string{"sku"} }, "required_fields"},
		{"bad storage", func(c *Config) { c.Storage.Type = "csv,parquet" }, "parquet"},
		{"empty storage", func(c *Config) { c.Storage.Type = " , " }, "storage.type"},
		{"bad compression", func(c *Config) { c.Storage.Compression = "zstd" }, "compression"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad port", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 0 }, "metrics.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}
