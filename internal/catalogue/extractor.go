// Package catalogue drives a supermarket catalogue through a browser session:
// bootstrap, category navigation, pagination and per-tile field extraction.
package catalogue

import (
	"context"

	"github.com/IshaanNene/ShelfGoat/internal/browser"
	"github.com/IshaanNene/ShelfGoat/internal/config"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// Extract reads one value from the first descendant of el matching sel: its
// text, or the named attribute when attribute is set. Any miss or lookup fault
// yields def and false; extraction never fails.
func Extract(ctx context.Context, el browser.Element, sel browser.Selector, attribute, def string) (string, bool) {
	child, err := el.Find(ctx, sel)
	if err != nil {
		return def, false
	}

	if attribute == "" || attribute == "text" {
		text, err := child.Text(ctx)
		if err != nil {
			return def, false
		}
		return text, true
	}

	v, ok, err := child.Attribute(ctx, attribute)
	if err != nil || !ok {
		return def, false
	}
	return v, true
}

// Extractor applies a fixed set of field rules to product containers.
type Extractor struct {
	rules    []config.FieldRule
	sentinel string
}

// NewExtractor creates an Extractor. Rules without a Default use sentinel.
func NewExtractor(rules []config.FieldRule, sentinel string) *Extractor {
	return &Extractor{rules: rules, sentinel: sentinel}
}

// Fields returns the field names in rule order.
func (x *Extractor) Fields() []string {
	names := make([]string, len(x.rules))
	for i, r := range x.rules {
		names[i] = r.Name
	}
	return names
}

// ExtractAll builds a product from one container. Every rule yields a value,
// so every field is present in the result.
func (x *Extractor) ExtractAll(ctx context.Context, el browser.Element) *types.Product {
	p := types.NewProduct()
	for _, rule := range x.rules {
		def := rule.Default
		if def == "" {
			def = x.sentinel
		}
		value, found := Extract(ctx, el, browser.ByType(rule.Type, rule.Selector), rule.Attribute, def)
		p.Set(rule.Name, value, found)
	}
	return p
}
