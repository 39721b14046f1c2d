package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodSession implements Session on a single Rod page.
type RodSession struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	keepOpen bool
	logger   *slog.Logger
}

// Navigate implements Session.
func (s *RodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

// URL implements Session.
func (s *RodSession) URL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// WaitElement implements Session. Rod retries the lookup until ctx expires.
func (s *RodSession) WaitElement(ctx context.Context, sel Selector) (Element, error) {
	p := s.page.Context(ctx)

	var el *rod.Element
	var err error
	if sel.XPath {
		el, err = p.ElementX(sel.Expr)
	} else {
		el, err = p.Element(sel.Expr)
	}
	if err != nil {
		return nil, lookupError(sel, err)
	}
	return &rodElement{el: el}, nil
}

// Elements implements Session.
func (s *RodSession) Elements(ctx context.Context, sel Selector) ([]Element, error) {
	p := s.page.Context(ctx)

	var els rod.Elements
	var err error
	if sel.XPath {
		els, err = p.ElementsX(sel.Expr)
	} else {
		els, err = p.Elements(sel.Expr)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", sel, err)
	}

	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el}
	}
	return out, nil
}

// WaitStable implements Session.
func (s *RodSession) WaitStable(ctx context.Context, d time.Duration) error {
	return s.page.Context(ctx).WaitStable(d)
}

// HTML implements Session.
func (s *RodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

// Close shuts down the browser unless it was launched with keep-open.
func (s *RodSession) Close() error {
	if s.keepOpen {
		s.logger.Info("leaving browser open for inspection")
		return nil
	}
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			return fmt.Errorf("close browser: %w", err)
		}
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	return nil
}

// rodElement implements Element on a *rod.Element. Every call rebinds the
// element to the caller's context so a finished wait cannot cancel later reads.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Find(ctx context.Context, sel Selector) (Element, error) {
	el := e.el.Context(ctx)

	// Has does not retry, so a missing field costs one round trip.
	var found bool
	var child *rod.Element
	var err error
	if sel.XPath {
		found, child, err = el.HasX(sel.Expr)
	} else {
		found, child, err = el.Has(sel.Expr)
	}
	if err != nil {
		return nil, lookupError(sel, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return &rodElement{el: child}, nil
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *rodElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) Hover(ctx context.Context) error {
	return e.el.Context(ctx).Hover()
}

func (e *rodElement) Input(ctx context.Context, text string) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text: %w", err)
	}
	return el.Input(text)
}

func (e *rodElement) WaitVisible(ctx context.Context) error {
	return e.el.Context(ctx).WaitVisible()
}

// lookupError maps Rod's not-found and wait-timeout errors onto ErrNotFound.
func lookupError(sel Selector, err error) error {
	var notFound *rod.ElementNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, sel, err)
	}
	return fmt.Errorf("lookup %s: %w", sel, err)
}
