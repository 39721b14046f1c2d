package catalogue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/ShelfGoat/internal/browser"
	"github.com/IshaanNene/ShelfGoat/internal/observability"
)

const settlePollInterval = 100 * time.Millisecond

// Pagination stop reasons, reported to metrics.
const (
	StopNoNext      = "no_next"
	StopClickFailed = "click_failed"
	StopUnchanged   = "unchanged"
)

// PaginatorOptions bounds the waits of a Paginator.
type PaginatorOptions struct {
	// Timeout bounds the wait for the next-page control.
	Timeout time.Duration

	// Settle bounds the wait for the listing to change after the click.
	Settle time.Duration

	// StablePeriod is how long the DOM must be quiet once the listing changed.
	StablePeriod time.Duration
}

// Paginator advances a category listing one page at a time.
type Paginator struct {
	sess      browser.Session
	next      browser.Selector
	container browser.Selector
	opts      PaginatorOptions
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewPaginator creates a Paginator.
func NewPaginator(sess browser.Session, next, container browser.Selector, opts PaginatorOptions, metrics *observability.Metrics, logger *slog.Logger) *Paginator {
	return &Paginator{
		sess:      sess,
		next:      next,
		container: container,
		opts:      opts,
		metrics:   metrics,
		logger:    logger.With("component", "paginator"),
	}
}

// AdvancePage clicks the next-page control and waits for the listing to
// change. It returns false when there is no control, the click fails, or the
// listing never changes; faults are logged, never returned.
func (p *Paginator) AdvancePage(ctx context.Context) bool {
	waitCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	next, err := p.sess.WaitElement(waitCtx, p.next)
	cancel()
	if err != nil {
		p.logger.Debug("no next page", "selector", p.next.String(), "error", err)
		p.metrics.IncPaginationStop(StopNoNext)
		return false
	}

	before := p.signature(ctx)

	if err := p.click(ctx, next); err != nil {
		p.logger.Warn("next page click failed", "error", err)
		p.metrics.IncPaginationStop(StopClickFailed)
		return false
	}

	if !p.settle(ctx, before) {
		p.logger.Warn("listing did not change after next page click", "settle", p.opts.Settle)
		p.metrics.IncPaginationStop(StopUnchanged)
		return false
	}
	return true
}

// click guards against panics from driver code so a fault only ends the listing.
func (p *Paginator) click(ctx context.Context, el browser.Element) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("click panicked: %v", r)
		}
	}()
	return el.Click(ctx)
}

// settle polls until the listing signature differs from before, then waits
// for the DOM to go quiet.
func (p *Paginator) settle(ctx context.Context, before string) bool {
	settleCtx, cancel := context.WithTimeout(ctx, p.opts.Settle)
	defer cancel()

	ticker := time.NewTicker(settlePollInterval)
	defer ticker.Stop()

	for {
		if sig := p.signature(settleCtx); sig != before && sig != "" {
			if p.opts.StablePeriod > 0 {
				if err := p.sess.WaitStable(settleCtx, p.opts.StablePeriod); err != nil {
					p.logger.Debug("dom did not stabilise", "error", err)
				}
			}
			return true
		}

		select {
		case <-settleCtx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// signature identifies the current listing by its tile count and first tile text.
func (p *Paginator) signature(ctx context.Context) string {
	els, err := p.sess.Elements(ctx, p.container)
	if err != nil || len(els) == 0 {
		return ""
	}
	text, err := els[0].Text(ctx)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d|%s", len(els), text)
}
