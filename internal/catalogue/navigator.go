package catalogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IshaanNene/ShelfGoat/internal/browser"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// Token marks the category listing so a run can come back to it after
// visiting a category, whatever the number of pages in between.
type Token struct {
	URL string
}

// Navigator reveals the hover menu of categories and moves between them.
type Navigator struct {
	sess       browser.Session
	trigger    browser.Selector
	item       browser.Selector
	timeout    time.Duration
	navTimeout time.Duration
	logger     *slog.Logger
}

// NewNavigator creates a Navigator. timeout bounds the menu waits and
// navTimeout bounds the page load when returning to the listing.
func NewNavigator(sess browser.Session, trigger, item browser.Selector, timeout, navTimeout time.Duration, logger *slog.Logger) *Navigator {
	return &Navigator{
		sess:       sess,
		trigger:    trigger,
		item:       item,
		timeout:    timeout,
		navTimeout: navTimeout,
		logger:     logger.With("component", "navigator"),
	}
}

// ListCategories returns the visible menu labels in menu order.
func (n *Navigator) ListCategories(ctx context.Context) ([]string, error) {
	items, err := n.reveal(ctx)
	if err != nil {
		return nil, &types.NavigationError{Op: "list categories", Err: err}
	}

	labels := make([]string, 0, len(items))
	for _, it := range items {
		label, err := it.Text(ctx)
		if err != nil {
			n.logger.Debug("unreadable menu item", "error", err)
			continue
		}
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return nil, types.ErrNoCategories
	}

	n.logger.Debug("categories listed", "count", len(labels))
	return labels, nil
}

// Activate clicks the first menu item whose text equals label. It returns
// false, leaving the session untouched, when the menu or the label cannot be
// found or the click fails.
func (n *Navigator) Activate(ctx context.Context, label string) bool {
	items, err := n.reveal(ctx)
	if err != nil {
		n.logger.Debug("category menu unavailable", "label", label, "error", err)
		return false
	}

	for _, it := range items {
		text, err := it.Text(ctx)
		if err != nil || strings.TrimSpace(text) != label {
			continue
		}
		if err := it.Click(ctx); err != nil {
			n.logger.Warn("category click failed", "label", label, "error", err)
			return false
		}
		n.logger.Debug("category activated", "label", label)
		return true
	}

	n.logger.Debug("category not in menu", "label", label)
	return false
}

// Mark captures the current page as the category listing.
func (n *Navigator) Mark(ctx context.Context) (Token, error) {
	u, err := n.sess.URL(ctx)
	if err != nil {
		return Token{}, &types.NavigationError{Op: "mark", Err: err}
	}
	return Token{URL: u}, nil
}

// Return navigates back to the listing captured by tok and waits for the
// menu trigger.
func (n *Navigator) Return(ctx context.Context, tok Token) error {
	current, err := n.sess.URL(ctx)
	if err != nil {
		return &types.NavigationError{Op: "return", URL: tok.URL, Err: err}
	}

	if current != tok.URL {
		navCtx, cancel := context.WithTimeout(ctx, n.navTimeout)
		err := n.sess.Navigate(navCtx, tok.URL)
		cancel()
		if err != nil {
			return &types.NavigationError{Op: "return", URL: tok.URL, Err: err}
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if _, err := n.sess.WaitElement(waitCtx, n.trigger); err != nil {
		return &types.NavigationError{Op: "return", URL: tok.URL, Err: err}
	}
	return nil
}

// reveal hovers the menu trigger and returns the menu items.
func (n *Navigator) reveal(ctx context.Context) ([]browser.Element, error) {
	waitCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	trigger, err := n.sess.WaitElement(waitCtx, n.trigger)
	if err != nil {
		return nil, fmt.Errorf("menu trigger: %w", err)
	}
	if err := trigger.WaitVisible(waitCtx); err != nil {
		return nil, fmt.Errorf("menu trigger visible: %w", err)
	}
	if err := trigger.Hover(waitCtx); err != nil {
		return nil, fmt.Errorf("hover menu trigger: %w", err)
	}
	if _, err := n.sess.WaitElement(waitCtx, n.item); err != nil {
		return nil, fmt.Errorf("menu items: %w", err)
	}
	return n.sess.Elements(ctx, n.item)
}
