package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks operational metrics for a catalogue run.
// The recording methods, Addr and Shutdown are safe on a nil receiver.
type Metrics struct {
	Registry        *prometheus.Registry
	Categories      *prometheus.CounterVec
	PagesScraped    prometheus.Counter
	ProductsScraped prometheus.Counter
	FieldsMissing   *prometheus.CounterVec
	PaginationStops *prometheus.CounterVec
	PageDuration    prometheus.Histogram

	server *http.Server
	addr   string
	logger *slog.Logger
}

// NewMetrics creates and registers all collectors on a dedicated registry.
func NewMetrics(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	categories := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfgoat_categories_total",
			Help: "Categories processed, by outcome.",
		},
		[]string{"status"},
	)
	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shelfgoat_pages_scraped_total",
		Help: "Listing pages scraped.",
	})
	products := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shelfgoat_products_scraped_total",
		Help: "Product tiles extracted.",
	})
	missing := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfgoat_fields_missing_total",
			Help: "Fields filled with the sentinel because their selector matched nothing.",
		},
		[]string{"field"},
	)
	stops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfgoat_pagination_stops_total",
			Help: "Category listings that stopped paginating, by reason.",
		},
		[]string{"reason"},
	)
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shelfgoat_page_scrape_duration_seconds",
		Help:    "Time spent extracting one listing page.",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(categories, pages, products, missing, stops, duration)

	return &Metrics{
		Registry:        registry,
		Categories:      categories,
		PagesScraped:    pages,
		ProductsScraped: products,
		FieldsMissing:   missing,
		PaginationStops: stops,
		PageDuration:    duration,
		logger:          logger.With("component", "metrics"),
	}
}

// IncCategory counts a category by outcome (scraped, skipped).
func (m *Metrics) IncCategory(status string) {
	if m == nil {
		return
	}
	m.Categories.WithLabelValues(status).Inc()
}

// ObservePage records one scraped page with its product count and duration.
func (m *Metrics) ObservePage(products int, d time.Duration) {
	if m == nil {
		return
	}
	m.PagesScraped.Inc()
	m.ProductsScraped.Add(float64(products))
	m.PageDuration.Observe(d.Seconds())
}

// IncMissingField counts a sentinel-filled field.
func (m *Metrics) IncMissingField(field string) {
	if m == nil {
		return
	}
	m.FieldsMissing.WithLabelValues(field).Inc()
}

// IncPaginationStop counts why a listing stopped advancing.
func (m *Metrics) IncPaginationStop(reason string) {
	if m == nil {
		return
	}
	m.PaginationStops.WithLabelValues(reason).Inc()
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StartServer binds the metrics port and serves the registry at path, plus
// /health, in the background. A bind failure is returned.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	m.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	m.addr = ln.Addr().String()
	m.logger.Info("metrics server starting", "addr", m.addr, "path", path)

	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the address the metrics server is bound to, or "" before
// StartServer.
func (m *Metrics) Addr() string {
	if m == nil {
		return ""
	}
	return m.addr
}

// Shutdown stops the metrics server if it was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
