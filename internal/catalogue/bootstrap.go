package catalogue

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshaanNene/ShelfGoat/internal/browser"
	"github.com/IshaanNene/ShelfGoat/internal/config"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// Bootstrap steps, as reported in BootstrapError.
const (
	StepLand          = "land"
	StepPostcode      = "postcode"
	StepSuggestion    = "suggestion"
	StepReadCatalogue = "read_catalogue"
	StepListing       = "listing"
)

// Bootstrap takes a fresh session from the entry URL to the category listing.
type Bootstrap struct {
	sess       browser.Session
	url        string
	postcode   string
	sel        config.SelectorConfig
	timeout    time.Duration
	navTimeout time.Duration
	logger     *slog.Logger
}

// NewBootstrap creates a Bootstrap for the configured catalogue.
func NewBootstrap(sess browser.Session, cfg *config.Config, logger *slog.Logger) *Bootstrap {
	return &Bootstrap{
		sess:       sess,
		url:        cfg.Catalogue.URL,
		postcode:   cfg.Catalogue.Postcode,
		sel:        cfg.Selectors,
		timeout:    cfg.Timeouts.Bootstrap,
		navTimeout: cfg.Timeouts.Navigation,
		logger:     logger.With("component", "bootstrap"),
	}
}

// Run lands on the entry URL, enters the postcode, picks the first
// suggestion, opens the catalogue and waits for the category listing. Any
// failed step is fatal and returned as a *types.BootstrapError.
func (b *Bootstrap) Run(ctx context.Context) error {
	navCtx, cancel := context.WithTimeout(ctx, b.navTimeout)
	err := b.sess.Navigate(navCtx, b.url)
	cancel()
	if err != nil {
		return &types.BootstrapError{Step: StepLand, Err: err}
	}
	b.logger.Debug("landed", "url", b.url)

	input, err := b.wait(ctx, StepPostcode, b.sel.PostcodeInput)
	if err != nil {
		return err
	}
	if err := input.Input(ctx, b.postcode); err != nil {
		return &types.BootstrapError{Step: StepPostcode, Selector: b.sel.PostcodeInput, Err: err}
	}

	if err := b.click(ctx, StepSuggestion, b.sel.FirstSuggestion); err != nil {
		return err
	}
	if err := b.click(ctx, StepReadCatalogue, b.sel.ReadCatalogue); err != nil {
		return err
	}

	// The click returns before the listing loads; its menu trigger marks arrival.
	waitCtx, cancel := context.WithTimeout(ctx, b.navTimeout)
	_, err = b.sess.WaitElement(waitCtx, browser.CSS(b.sel.MenuTrigger))
	cancel()
	if err != nil {
		return &types.BootstrapError{Step: StepListing, Selector: b.sel.MenuTrigger, Err: err}
	}

	b.logger.Info("catalogue opened", "postcode", b.postcode)
	return nil
}

func (b *Bootstrap) wait(ctx context.Context, step, selector string) (browser.Element, error) {
	waitCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	el, err := b.sess.WaitElement(waitCtx, browser.CSS(selector))
	if err != nil {
		return nil, &types.BootstrapError{Step: step, Selector: selector, Err: err}
	}
	return el, nil
}

func (b *Bootstrap) click(ctx context.Context, step, selector string) error {
	el, err := b.wait(ctx, step, selector)
	if err != nil {
		return err
	}

	clickCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := el.Click(clickCtx); err != nil {
		return &types.BootstrapError{Step: step, Selector: selector, Err: err}
	}
	return nil
}
