package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/ShelfGoat/internal/config"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// Middleware processes a product and returns the (possibly modified) product.
// Return nil to drop the product from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a product. Return nil to drop the product.
	Process(p *types.Product) (*types.Product, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// FromConfig builds the standard chain: trim, sentinel fill, required
// fields, optional dedup, store stamp.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	p := New(logger)
	if cfg.Pipeline.Trim {
		p.Use(&TrimMiddleware{})
	}
	p.Use(&SentinelMiddleware{Fields: cfg.FieldNames(), Sentinel: cfg.Scrape.Sentinel})
	if len(cfg.Pipeline.RequiredFields) > 0 {
		p.Use(&RequiredFieldsMiddleware{Fields: cfg.Pipeline.RequiredFields})
	}
	if cfg.Pipeline.Dedup {
		dedup, err := NewDedupMiddleware(cfg.Pipeline.DedupSize)
		if err != nil {
			return nil, fmt.Errorf("create dedup middleware: %w", err)
		}
		p.Use(dedup)
	}
	if cfg.Catalogue.Store != "" {
		p.Use(&StoreMiddleware{Store: cfg.Catalogue.Store})
	}
	return p, nil
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the product through all middleware in order.
func (p *Pipeline) Process(product *types.Product) (*types.Product, error) {
	current := product

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:   mw.Name(),
				Product: current,
				Err:     err,
			}
		}
		if result == nil {
			p.logger.Debug("product dropped", "stage", mw.Name(), "category", product.Category)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// ProcessAll runs every product through the chain, keeping order and
// omitting dropped products.
func (p *Pipeline) ProcessAll(products []*types.Product) ([]*types.Product, error) {
	out := make([]*types.Product, 0, len(products))
	for _, product := range products {
		result, err := p.Process(product)
		if err != nil {
			return out, err
		}
		if result != nil {
			out = append(out, result)
		}
	}
	if dropped := len(products) - len(out); dropped > 0 {
		p.logger.Info("products dropped by pipeline", "dropped", dropped, "kept", len(out))
	}
	return out, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
