package catalogue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/ShelfGoat/internal/browser"
	"github.com/IshaanNene/ShelfGoat/internal/config"
	"github.com/IshaanNene/ShelfGoat/internal/observability"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// Stats summarises a run.
type Stats struct {
	Categories int
	Skipped    []string
	Pages      int
	Products   int
	Elapsed    time.Duration
}

// Runner walks every category of the catalogue and collects its products.
type Runner struct {
	sess      browser.Session
	bootstrap *Bootstrap
	navigator *Navigator
	scraper   *Scraper
	paginator *Paginator
	scrape    config.ScrapeConfig
	store     string
	metrics   *observability.Metrics
	stats     Stats
	logger    *slog.Logger
}

// RunnerOption configures the Runner.
type RunnerOption func(*Runner)

// WithMetrics records run metrics into m.
func WithMetrics(m *observability.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner wires the catalogue components onto sess.
func NewRunner(sess browser.Session, cfg *config.Config, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		sess:   sess,
		scrape: cfg.Scrape,
		store:  cfg.Catalogue.Store,
		logger: logger.With("component", "runner"),
	}
	for _, opt := range opts {
		opt(r)
	}

	container := browser.CSS(cfg.Selectors.ProductContainer)

	r.bootstrap = NewBootstrap(sess, cfg, logger)
	r.navigator = NewNavigator(sess,
		browser.CSS(cfg.Selectors.MenuTrigger),
		browser.CSS(cfg.Selectors.MenuItem),
		cfg.Timeouts.Menu, cfg.Timeouts.Navigation, logger)
	r.scraper = NewScraper(sess,
		NewExtractor(cfg.Fields, cfg.Scrape.Sentinel),
		container, cfg.Timeouts.Products, cfg.Scrape.Mode, r.metrics, logger)
	r.paginator = NewPaginator(sess,
		browser.CSS(cfg.Selectors.NextPage), container,
		PaginatorOptions{
			Timeout:      cfg.Timeouts.Pagination,
			Settle:       cfg.Timeouts.Settle,
			StablePeriod: cfg.Timeouts.StablePeriod,
		}, r.metrics, logger)

	return r
}

// Stats returns the summary of the last run.
func (r *Runner) Stats() Stats { return r.stats }

// Categories bootstraps the session and returns the category menu.
func (r *Runner) Categories(ctx context.Context) ([]string, error) {
	if err := r.bootstrap.Run(ctx); err != nil {
		return nil, err
	}
	return r.navigator.ListCategories(ctx)
}

// Run bootstraps the session, then scrapes every selected category in menu
// order, returning to the category listing after each one. Cancellation stops
// the run between steps and returns the products collected so far.
func (r *Runner) Run(ctx context.Context) ([]*types.Product, error) {
	start := time.Now()
	r.stats = Stats{}
	defer func() { r.stats.Elapsed = time.Since(start) }()

	if err := r.bootstrap.Run(ctx); err != nil {
		return nil, err
	}

	labels, err := r.navigator.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	// The menu was read, so the listing has loaded.
	tok, err := r.navigator.Mark(ctx)
	if err != nil {
		return nil, err
	}

	labels = r.selectCategories(labels)
	r.logger.Info("categories selected", "count", len(labels))

	var all []*types.Product
	for i, label := range labels {
		if err := ctx.Err(); err != nil {
			return all, fmt.Errorf("%w: %w", types.ErrRunStopped, err)
		}

		products, ok := r.scrapeCategory(ctx, label)
		if err := ctx.Err(); err != nil {
			all = append(all, products...)
			r.logger.Warn("run stopped during category", "label", label, "products", len(products))
			return all, fmt.Errorf("%w: %w", types.ErrRunStopped, err)
		}
		if ok {
			all = append(all, products...)
			r.stats.Categories++
			r.metrics.IncCategory("scraped")
			r.logger.Info("category scraped",
				"label", label,
				"index", i+1,
				"of", len(labels),
				"products", len(products),
			)
		} else {
			r.logger.Warn("category skipped", "label", label)
			r.stats.Skipped = append(r.stats.Skipped, label)
			r.metrics.IncCategory("skipped")
		}

		if i == len(labels)-1 {
			break
		}
		if err := r.navigator.Return(ctx, tok); err != nil {
			r.logger.Warn("failed to return to category listing", "error", err)
		}
	}

	return all, nil
}

// scrapeCategory activates label and scrapes its pages until pagination ends.
func (r *Runner) scrapeCategory(ctx context.Context, label string) ([]*types.Product, bool) {
	if !r.navigator.Activate(ctx, label) {
		return nil, false
	}

	var products []*types.Product
	for page := 1; ; page++ {
		pageURL, err := r.sess.URL(ctx)
		if err != nil {
			r.logger.Debug("page url unavailable", "label", label, "page", page, "error", err)
		}
		for _, p := range r.scraper.ScrapeCurrentPage(ctx) {
			p.Category = label
			p.Store = r.store
			p.Page = page
			p.URL = pageURL
			products = append(products, p)
		}
		r.stats.Pages++

		if r.scrape.MaxPages > 0 && page >= r.scrape.MaxPages {
			r.logger.Debug("max pages reached", "label", label, "pages", page)
			break
		}
		if ctx.Err() != nil || !r.paginator.AdvancePage(ctx) {
			break
		}
	}

	r.stats.Products += len(products)
	return products, true
}

// selectCategories applies the include filter and the category cap.
func (r *Runner) selectCategories(labels []string) []string {
	if len(r.scrape.Categories) > 0 {
		want := make(map[string]bool, len(r.scrape.Categories))
		for _, c := range r.scrape.Categories {
			want[c] = true
		}
		var kept []string
		for _, l := range labels {
			if want[l] {
				kept = append(kept, l)
			}
		}
		labels = kept
	}
	if r.scrape.MaxCategories > 0 && len(labels) > r.scrape.MaxCategories {
		labels = labels[:r.scrape.MaxCategories]
	}
	return labels
}
