// Package browser defines the session handle every catalogue component drives,
// with a Rod-backed implementation and a read-only goquery snapshot.
package browser

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by Session and Element implementations.
var (
	ErrNotFound = errors.New("element not found")
	ErrReadOnly = errors.New("element does not support interaction")
)

// Selector locates elements by CSS (default) or XPath.
type Selector struct {
	Expr  string
	XPath bool
}

// CSS returns a CSS selector.
func CSS(expr string) Selector { return Selector{Expr: expr} }

// XPath returns an XPath selector.
func XPath(expr string) Selector { return Selector{Expr: expr, XPath: true} }

// ByType builds a selector from a rule type ("css", "xpath" or empty).
func ByType(typ, expr string) Selector {
	if typ == "xpath" {
		return XPath(expr)
	}
	return CSS(expr)
}

func (s Selector) String() string {
	if s.XPath {
		return "xpath:" + s.Expr
	}
	return s.Expr
}

// Element is a node on the current page.
type Element interface {
	// Find returns the first descendant matching sel without waiting.
	Find(ctx context.Context, sel Selector) (Element, error)

	// Text returns the element's rendered text.
	Text(ctx context.Context) (string, error)

	// Attribute returns the named attribute and whether it is set.
	Attribute(ctx context.Context, name string) (string, bool, error)

	Click(ctx context.Context) error
	Hover(ctx context.Context) error

	// Input replaces the element's value with text.
	Input(ctx context.Context, text string) error

	// WaitVisible blocks until the element is rendered visibly.
	WaitVisible(ctx context.Context) error
}

// Session is the handle to the single browser page a run drives.
// All waits are bounded by the context passed in.
type Session interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// URL returns the current page URL.
	URL(ctx context.Context) (string, error)

	// WaitElement blocks until an element matching sel is present.
	WaitElement(ctx context.Context, sel Selector) (Element, error)

	// Elements returns every element matching sel in DOM order, without waiting.
	Elements(ctx context.Context, sel Selector) ([]Element, error)

	// WaitStable blocks until the DOM has not changed for d.
	WaitStable(ctx context.Context, d time.Duration) error

	// HTML returns the rendered document.
	HTML(ctx context.Context) (string, error)

	Close() error
}
