package config

import (
	"time"

	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for ShelfGoat.
type Config struct {
	Catalogue CatalogueConfig `mapstructure:"catalogue" yaml:"catalogue"`
	Browser   BrowserConfig   `mapstructure:"browser"   yaml:"browser"`
	Timeouts  TimeoutConfig   `mapstructure:"timeouts"  yaml:"timeouts"`
	Selectors SelectorConfig  `mapstructure:"selectors" yaml:"selectors"`
	Fields    []FieldRule     `mapstructure:"fields"    yaml:"fields"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"    yaml:"scrape"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"  yaml:"pipeline"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
}

// CatalogueConfig identifies the catalogue and the delivery area to browse.
type CatalogueConfig struct {
	URL      string `mapstructure:"url"      yaml:"url"`
	Postcode string `mapstructure:"postcode" yaml:"postcode"`
	Store    string `mapstructure:"store"    yaml:"store"`
}

// BrowserConfig controls the Chromium instance driven by Rod.
type BrowserConfig struct {
	Headless    bool   `mapstructure:"headless"      yaml:"headless"`
	Bin         string `mapstructure:"bin"           yaml:"bin"`
	Stealth     bool   `mapstructure:"stealth"       yaml:"stealth"`
	Proxy       string `mapstructure:"proxy"         yaml:"proxy"`
	UserAgent   string `mapstructure:"user_agent"    yaml:"user_agent"`
	UserDataDir string `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	WindowSize  string `mapstructure:"window_size"   yaml:"window_size"`
	NoSandbox   bool   `mapstructure:"no_sandbox"    yaml:"no_sandbox"`

	// KeepOpen leaves the browser running after the run for inspection.
	KeepOpen bool `mapstructure:"keep_open" yaml:"keep_open"`
}

// TimeoutConfig holds the bounded waits used by each step.
type TimeoutConfig struct {
	Navigation   time.Duration `mapstructure:"navigation"    yaml:"navigation"`
	Bootstrap    time.Duration `mapstructure:"bootstrap"     yaml:"bootstrap"`
	Menu         time.Duration `mapstructure:"menu"          yaml:"menu"`
	Products     time.Duration `mapstructure:"products"      yaml:"products"`
	Pagination   time.Duration `mapstructure:"pagination"    yaml:"pagination"`
	Settle       time.Duration `mapstructure:"settle"        yaml:"settle"`
	StablePeriod time.Duration `mapstructure:"stable_period" yaml:"stable_period"`
}

// SelectorConfig holds the CSS selectors of the interactive controls.
type SelectorConfig struct {
	PostcodeInput    string `mapstructure:"postcode_input"    yaml:"postcode_input"`
	FirstSuggestion  string `mapstructure:"first_suggestion"  yaml:"first_suggestion"`
	ReadCatalogue    string `mapstructure:"read_catalogue"    yaml:"read_catalogue"`
	MenuTrigger      string `mapstructure:"menu_trigger"      yaml:"menu_trigger"`
	MenuItem         string `mapstructure:"menu_item"         yaml:"menu_item"`
	NextPage         string `mapstructure:"next_page"         yaml:"next_page"`
	ProductContainer string `mapstructure:"product_container" yaml:"product_container"`
}

// FieldRule defines how one product field is read from a tile.
type FieldRule struct {
	Name      string `mapstructure:"name"      yaml:"name"`
	Selector  string `mapstructure:"selector"  yaml:"selector"`
	Type      string `mapstructure:"type"      yaml:"type"` // css, xpath
	Attribute string `mapstructure:"attribute" yaml:"attribute"`
	Default   string `mapstructure:"default"   yaml:"default"`
}

// ScrapeConfig controls which categories are visited and how pages are read.
type ScrapeConfig struct {
	Mode          string   `mapstructure:"mode"           yaml:"mode"` // live, snapshot
	Sentinel      string   `mapstructure:"sentinel"       yaml:"sentinel"`
	MaxPages      int      `mapstructure:"max_pages"      yaml:"max_pages"`
	MaxCategories int      `mapstructure:"max_categories" yaml:"max_categories"`
	Categories    []string `mapstructure:"categories"     yaml:"categories"`
}

// PipelineConfig controls post-processing of scraped products.
type PipelineConfig struct {
	Trim           bool     `mapstructure:"trim"            yaml:"trim"`
	Dedup          bool     `mapstructure:"dedup"           yaml:"dedup"`
	DedupSize      int      `mapstructure:"dedup_size"      yaml:"dedup_size"`
	RequiredFields []string `mapstructure:"required_fields" yaml:"required_fields"`
}

// StorageConfig controls output/storage.
type StorageConfig struct {
	Type        string      `mapstructure:"type"        yaml:"type"` // csv, json, jsonl, mongodb; comma-separated for several
	OutputPath  string      `mapstructure:"output_path" yaml:"output_path"`
	Compression string      `mapstructure:"compression" yaml:"compression"` // none, brotli
	Mongo       MongoConfig `mapstructure:"mongo"       yaml:"mongo"`
}

// MongoConfig configures the MongoDB storage backend.
type MongoConfig struct {
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// FieldNames returns the configured field names in rule order.
func (c *Config) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// DefaultFields returns the extraction rules for a catalogue product tile.
func DefaultFields() []FieldRule {
	selectors := map[string]string{
		"title":            ".sf-item-heading",
		"price":            ".sf-pricedisplay",
		"option_suffix":    ".sf-optionsuffix",
		"sale_price":       ".sf-saleoptiontext",
		"regular_price":    ".sf-regprice",
		"regoptiondesc":    ".sf-regoptiondesc",
		"saving":           ".sf-regprice",
		"offer_valid":      ".sale-dates",
		"comparative_text": ".sf-comparativeText",
		"sale_option":      ".sf-saleoptiondesc",
	}

	rules := make([]FieldRule, 0, len(types.ProductFields))
	for _, name := range types.ProductFields {
		rules = append(rules, FieldRule{Name: name, Selector: selectors[name], Type: "css"})
	}
	return rules
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Catalogue: CatalogueConfig{
			URL:      "https://www.woolworths.com.au/shop/catalogue",
			Postcode: "2000",
			Store:    "woolworths",
		},
		Browser: BrowserConfig{
			Headless:   true,
			WindowSize: "1920,1080",
		},
		Timeouts: TimeoutConfig{
			Navigation:   30 * time.Second,
			Bootstrap:    5 * time.Second,
			Menu:         10 * time.Second,
			Products:     10 * time.Second,
			Pagination:   10 * time.Second,
			Settle:       5 * time.Second,
			StablePeriod: 300 * time.Millisecond,
		},
		Selectors: SelectorConfig{
			PostcodeInput:    "#wx-digital-catalogue-autocomplete",
			FirstSuggestion:  "#wx-digital-catalogue-autocomplete-item-0",
			ReadCatalogue:    ".core-button-secondary",
			MenuTrigger:      "#sf-navcategory-button",
			MenuItem:         ".sf-navcategory-link",
			NextPage:         `a[aria-label="Next page"]`,
			ProductContainer: ".sf-item-content",
		},
		Fields: DefaultFields(),
		Scrape: ScrapeConfig{
			Mode:     "live",
			Sentinel: types.Sentinel,
		},
		Pipeline: PipelineConfig{
			Trim:      true,
			DedupSize: 10000,
		},
		Storage: StorageConfig{
			Type:        "csv",
			OutputPath:  "./output",
			Compression: "none",
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "shelfgoat",
				Collection: "products",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
