// Package browsertest provides an in-memory browser.Session over static HTML
// pages, for exercising catalogue flows without Chromium.
//
// Behaviour is declared in the page markup:
//
//   - clicking an element with href or data-href navigates to that URL;
//   - with data-lazy also set, that navigation is only committed by the next
//     WaitElement, as a real page keeps its old URL until the load starts;
//   - data-click-error="msg" makes Click fail with msg;
//   - data-hover-error="msg" makes Hover fail with msg;
//   - elements inside [data-hover-menu] are hidden until an element carrying
//     data-reveals-menu is hovered, and hidden again after navigation.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/ShelfGoat/internal/browser"
)

// ErrNoPage is returned when navigating to a URL the site does not serve.
var ErrNoPage = errors.New("page not served")

// Session implements browser.Session over a fixed set of pages.
type Session struct {
	pages    map[string]string
	current  string
	revealed bool
	closed   bool
	pending  string

	// Inputs records text typed into elements, keyed by element id.
	Inputs map[string]string

	// Visits records every URL loaded, in order.
	Visits []string

	// Hovers counts successful hovers.
	Hovers int

	// OnNavigate, when set, is called after every successful navigation.
	OnNavigate func(url string)
}

// NewSession creates a session serving pages keyed by absolute URL.
func NewSession(pages map[string]string) *Session {
	return &Session{
		pages:  pages,
		Inputs: make(map[string]string),
	}
}

// SetPage adds or replaces a served page.
func (s *Session) SetPage(u, src string) { s.pages[u] = src }

// Closed reports whether Close was called.
func (s *Session) Closed() bool { return s.closed }

// Navigate implements browser.Session.
func (s *Session) Navigate(ctx context.Context, u string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resolved := s.resolve(u)
	if _, ok := s.pages[resolved]; !ok {
		return fmt.Errorf("navigate %s: %w", resolved, ErrNoPage)
	}
	s.current = resolved
	s.revealed = false
	s.pending = ""
	s.Visits = append(s.Visits, resolved)
	if s.OnNavigate != nil {
		s.OnNavigate(resolved)
	}
	return nil
}

// URL implements browser.Session.
func (s *Session) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.current, nil
}

// WaitElement implements browser.Session. Pages are static, so a miss fails
// immediately instead of waiting out the deadline.
func (s *Session) WaitElement(ctx context.Context, sel browser.Selector) (browser.Element, error) {
	if s.pending != "" {
		target := s.pending
		s.pending = ""
		if err := s.Navigate(ctx, target); err != nil {
			return nil, err
		}
	}
	els, err := s.Elements(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	return els[0], nil
}

// Elements implements browser.Session.
func (s *Session) Elements(ctx context.Context, sel browser.Selector) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	els, err := snap.Elements(sel)
	if err != nil {
		return nil, err
	}

	out := make([]browser.Element, 0, len(els))
	for _, el := range els {
		se := el.(*browser.SnapshotElement)
		if !s.revealed && se.Selection().Closest("[data-hover-menu]").Length() > 0 {
			continue
		}
		out = append(out, &element{SnapshotElement: se, sess: s})
	}
	return out, nil
}

// WaitStable implements browser.Session.
func (s *Session) WaitStable(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// HTML implements browser.Session.
func (s *Session) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, ok := s.pages[s.current]
	if !ok {
		return "", fmt.Errorf("html %q: %w", s.current, ErrNoPage)
	}
	return src, nil
}

// Close implements browser.Session.
func (s *Session) Close() error {
	s.closed = true
	return nil
}

func (s *Session) snapshot() (*browser.Snapshot, error) {
	src, ok := s.pages[s.current]
	if !ok {
		return nil, fmt.Errorf("snapshot %q: %w", s.current, ErrNoPage)
	}
	return browser.ParseSnapshot(src)
}

// resolve makes ref absolute against the current page.
func (s *Session) resolve(ref string) string {
	if s.current == "" {
		return ref
	}
	base, err := url.Parse(s.current)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}

// element adds click, hover and input behaviour to a snapshot element.
type element struct {
	*browser.SnapshotElement
	sess *Session
}

func (e *element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sel := e.Selection()
	if msg, ok := sel.Attr("data-click-error"); ok {
		return errors.New(msg)
	}
	if target := link(sel); target != "" {
		if _, ok := sel.Attr("data-lazy"); ok {
			e.sess.pending = e.sess.resolve(target)
			return nil
		}
		return e.sess.Navigate(ctx, target)
	}
	return nil
}

func (e *element) Hover(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sel := e.Selection()
	if msg, ok := sel.Attr("data-hover-error"); ok {
		return errors.New(msg)
	}
	if _, ok := sel.Attr("data-reveals-menu"); ok {
		e.sess.revealed = true
	}
	e.sess.Hovers++
	return nil
}

func (e *element) Input(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, _ := e.Selection().Attr("id")
	e.sess.Inputs[id] = text
	return nil
}

func link(sel *goquery.Selection) string {
	if v, ok := sel.Attr("data-href"); ok {
		return v
	}
	if v, ok := sel.Attr("href"); ok {
		return v
	}
	return ""
}
