package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Snapshot is a parsed, read-only copy of a rendered page.
type Snapshot struct {
	doc *goquery.Document
}

// ParseSnapshot parses rendered HTML into a Snapshot.
func ParseSnapshot(src string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &Snapshot{doc: doc}, nil
}

// Document returns the underlying goquery document.
func (s *Snapshot) Document() *goquery.Document { return s.doc }

// Elements returns every element matching sel in document order.
func (s *Snapshot) Elements(sel Selector) ([]Element, error) {
	matched, err := query(s.doc.Selection, sel)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, matched.Length())
	matched.Each(func(_ int, el *goquery.Selection) {
		out = append(out, NewSnapshotElement(el))
	})
	return out, nil
}

// SnapshotElement implements Element over a goquery selection of one node.
// Interactions return ErrReadOnly.
type SnapshotElement struct {
	sel *goquery.Selection
}

// NewSnapshotElement wraps a single-node selection.
func NewSnapshotElement(sel *goquery.Selection) *SnapshotElement {
	return &SnapshotElement{sel: sel}
}

// Selection returns the wrapped goquery selection.
func (e *SnapshotElement) Selection() *goquery.Selection { return e.sel }

func (e *SnapshotElement) Find(_ context.Context, sel Selector) (Element, error) {
	matched, err := query(e.sel, sel)
	if err != nil {
		return nil, err
	}
	if matched.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return NewSnapshotElement(matched.First()), nil
}

func (e *SnapshotElement) Text(_ context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e *SnapshotElement) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *SnapshotElement) Click(context.Context) error { return ErrReadOnly }

func (e *SnapshotElement) Hover(context.Context) error { return ErrReadOnly }

func (e *SnapshotElement) Input(context.Context, string) error { return ErrReadOnly }

// WaitVisible returns immediately; a snapshot does not change.
func (e *SnapshotElement) WaitVisible(context.Context) error { return nil }

// query evaluates sel against the descendants of root.
func query(root *goquery.Selection, sel Selector) (*goquery.Selection, error) {
	if !sel.XPath {
		return root.Find(sel.Expr), nil
	}

	var found []*html.Node
	for _, n := range root.Nodes {
		nodes, err := htmlquery.QueryAll(n, sel.Expr)
		if err != nil {
			return nil, fmt.Errorf("invalid xpath %q: %w", sel.Expr, err)
		}
		found = append(found, nodes...)
	}
	return root.FindNodes(found...), nil
}
