package catalogue

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshaanNene/ShelfGoat/internal/browser"
	"github.com/IshaanNene/ShelfGoat/internal/observability"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// Scrape modes.
const (
	ModeLive     = "live"
	ModeSnapshot = "snapshot"
)

// Scraper extracts every product tile on the current listing page.
type Scraper struct {
	sess      browser.Session
	extractor *Extractor
	container browser.Selector
	timeout   time.Duration
	mode      string
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewScraper creates a Scraper. mode is ModeLive or ModeSnapshot.
func NewScraper(sess browser.Session, extractor *Extractor, container browser.Selector, timeout time.Duration, mode string, metrics *observability.Metrics, logger *slog.Logger) *Scraper {
	return &Scraper{
		sess:      sess,
		extractor: extractor,
		container: container,
		timeout:   timeout,
		mode:      mode,
		metrics:   metrics,
		logger:    logger.With("component", "page_scraper"),
	}
}

// ScrapeCurrentPage waits for product containers and extracts one product per
// container in DOM order. A page without containers yields an empty slice.
func (s *Scraper) ScrapeCurrentPage(ctx context.Context) []*types.Product {
	start := time.Now()

	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	_, err := s.sess.WaitElement(waitCtx, s.container)
	cancel()
	if err != nil {
		s.logger.Debug("no products on page", "selector", s.container.String(), "error", err)
		return []*types.Product{}
	}

	containers, err := s.containers(ctx)
	if err != nil {
		s.logger.Warn("failed to read product containers", "error", err)
		return []*types.Product{}
	}

	products := make([]*types.Product, 0, len(containers))
	for _, el := range containers {
		p := s.extractor.ExtractAll(ctx, el)
		for _, f := range p.Missing(s.extractor.Fields()) {
			s.metrics.IncMissingField(f)
		}
		products = append(products, p)
	}

	s.metrics.ObservePage(len(products), time.Since(start))
	s.logger.Debug("page scraped", "products", len(products), "mode", s.mode, "duration", time.Since(start))
	return products
}

// containers returns the product containers, live or from a parsed snapshot.
func (s *Scraper) containers(ctx context.Context) ([]browser.Element, error) {
	if s.mode != ModeSnapshot {
		return s.sess.Elements(ctx, s.container)
	}

	src, err := s.sess.HTML(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := browser.ParseSnapshot(src)
	if err != nil {
		return nil, err
	}
	return snap.Elements(s.container)
}
