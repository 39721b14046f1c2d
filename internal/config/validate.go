package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Catalogue.URL); err != nil {
		return fmt.Errorf("catalogue.url: %w", err)
	}
	if strings.TrimSpace(cfg.Catalogue.Postcode) == "" {
		return fmt.Errorf("catalogue.postcode must not be empty")
	}

	timeouts := map[string]int64{
		"timeouts.navigation": int64(cfg.Timeouts.Navigation),
		"timeouts.bootstrap":  int64(cfg.Timeouts.Bootstrap),
		"timeouts.menu":       int64(cfg.Timeouts.Menu),
		"timeouts.products":   int64(cfg.Timeouts.Products),
		"timeouts.pagination": int64(cfg.Timeouts.Pagination),
		"timeouts.settle":     int64(cfg.Timeouts.Settle),
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	if cfg.Timeouts.StablePeriod < 0 {
		return fmt.Errorf("timeouts.stable_period must be >= 0")
	}

	selectors := map[string]string{
		"selectors.postcode_input":    cfg.Selectors.PostcodeInput,
		"selectors.first_suggestion":  cfg.Selectors.FirstSuggestion,
		"selectors.read_catalogue":    cfg.Selectors.ReadCatalogue,
		"selectors.menu_trigger":      cfg.Selectors.MenuTrigger,
		"selectors.menu_item":         cfg.Selectors.MenuItem,
		"selectors.next_page":         cfg.Selectors.NextPage,
		"selectors.product_container": cfg.Selectors.ProductContainer,
	}
	for name, sel := range selectors {
		if strings.TrimSpace(sel) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}

	if len(cfg.Fields) == 0 {
		return fmt.Errorf("at least one field rule is required")
	}
	seen := make(map[string]bool, len(cfg.Fields))
	for i, f := range cfg.Fields {
		if f.Name == "" {
			return fmt.Errorf("fields[%d].name must not be empty", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("fields[%d]: duplicate field name %q", i, f.Name)
		}
		seen[f.Name] = true
		if f.Selector == "" {
			return fmt.Errorf("fields[%d] (%s): selector must not be empty", i, f.Name)
		}
		if f.Type != "" && f.Type != "css" && f.Type != "xpath" {
			return fmt.Errorf("fields[%d] (%s): type must be 'css' or 'xpath', got %q", i, f.Name, f.Type)
		}
	}

	if cfg.Scrape.Mode != "live" && cfg.Scrape.Mode != "snapshot" {
		return fmt.Errorf("scrape.mode must be 'live' or 'snapshot', got %q", cfg.Scrape.Mode)
	}
	if cfg.Scrape.MaxPages < 0 {
		return fmt.Errorf("scrape.max_pages must be >= 0, got %d", cfg.Scrape.MaxPages)
	}
	if cfg.Scrape.MaxCategories < 0 {
		return fmt.Errorf("scrape.max_categories must be >= 0, got %d", cfg.Scrape.MaxCategories)
	}

	if cfg.Pipeline.Dedup && cfg.Pipeline.DedupSize < 1 {
		return fmt.Errorf("pipeline.dedup_size must be >= 1 when dedup is enabled")
	}

	for _, name := range cfg.Pipeline.RequiredFields {
		if !seen[name] {
			return fmt.Errorf("pipeline.required_fields: %q is not a configured field", name)
		}
	}

	validStorageTypes := map[string]bool{
		"json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	for _, t := range StorageTypes(cfg.Storage.Type) {
		if !validStorageTypes[t] {
			return fmt.Errorf("storage.type %q is not supported (valid: csv, json, jsonl, mongodb)", t)
		}
	}
	if len(StorageTypes(cfg.Storage.Type)) == 0 {
		return fmt.Errorf("storage.type must not be empty")
	}
	if cfg.Storage.Compression != "" && cfg.Storage.Compression != "none" && cfg.Storage.Compression != "brotli" {
		return fmt.Errorf("storage.compression must be 'none' or 'brotli', got %q", cfg.Storage.Compression)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// StorageTypes splits a comma-separated storage.type value.
func StorageTypes(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ValidateURL checks if a URL string is valid as a catalogue entry point.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
