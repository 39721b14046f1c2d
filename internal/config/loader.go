package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("SHELFGOAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("shelfgoat")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".shelfgoat"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// A configured field list replaces the defaults rather than merging by index.
	if v.IsSet("fields") {
		cfg.Fields = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
// Field rules are left to DefaultConfig; a config file replaces the whole list.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("catalogue.url", cfg.Catalogue.URL)
	v.SetDefault("catalogue.postcode", cfg.Catalogue.Postcode)
	v.SetDefault("catalogue.store", cfg.Catalogue.Store)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.bin", cfg.Browser.Bin)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.proxy", cfg.Browser.Proxy)
	v.SetDefault("browser.user_agent", cfg.Browser.UserAgent)
	v.SetDefault("browser.user_data_dir", cfg.Browser.UserDataDir)
	v.SetDefault("browser.window_size", cfg.Browser.WindowSize)
	v.SetDefault("browser.no_sandbox", cfg.Browser.NoSandbox)
	v.SetDefault("browser.keep_open", cfg.Browser.KeepOpen)

	v.SetDefault("timeouts.navigation", cfg.Timeouts.Navigation)
	v.SetDefault("timeouts.bootstrap", cfg.Timeouts.Bootstrap)
	v.SetDefault("timeouts.menu", cfg.Timeouts.Menu)
	v.SetDefault("timeouts.products", cfg.Timeouts.Products)
	v.SetDefault("timeouts.pagination", cfg.Timeouts.Pagination)
	v.SetDefault("timeouts.settle", cfg.Timeouts.Settle)
	v.SetDefault("timeouts.stable_period", cfg.Timeouts.StablePeriod)

	v.SetDefault("selectors.postcode_input", cfg.Selectors.PostcodeInput)
	v.SetDefault("selectors.first_suggestion", cfg.Selectors.FirstSuggestion)
	v.SetDefault("selectors.read_catalogue", cfg.Selectors.ReadCatalogue)
	v.SetDefault("selectors.menu_trigger", cfg.Selectors.MenuTrigger)
	v.SetDefault("selectors.menu_item", cfg.Selectors.MenuItem)
	v.SetDefault("selectors.next_page", cfg.Selectors.NextPage)
	v.SetDefault("selectors.product_container", cfg.Selectors.ProductContainer)

	v.SetDefault("scrape.mode", cfg.Scrape.Mode)
	v.SetDefault("scrape.sentinel", cfg.Scrape.Sentinel)
	v.SetDefault("scrape.max_pages", cfg.Scrape.MaxPages)
	v.SetDefault("scrape.max_categories", cfg.Scrape.MaxCategories)

	v.SetDefault("pipeline.trim", cfg.Pipeline.Trim)
	v.SetDefault("pipeline.dedup", cfg.Pipeline.Dedup)
	v.SetDefault("pipeline.dedup_size", cfg.Pipeline.DedupSize)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.compression", cfg.Storage.Compression)
	v.SetDefault("storage.mongo.uri", cfg.Storage.Mongo.URI)
	v.SetDefault("storage.mongo.database", cfg.Storage.Mongo.Database)
	v.SetDefault("storage.mongo.collection", cfg.Storage.Mongo.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
