package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// Sentinel is the value stored for a field whose selector matched nothing.
const Sentinel = "NA"

// ProductFields are the catalogue tile fields extracted by default, in column order.
var ProductFields = []string{
	"title",
	"price",
	"option_suffix",
	"sale_price",
	"regular_price",
	"regoptiondesc",
	"saving",
	"offer_valid",
	"comparative_text",
	"sale_option",
}

// Product is one catalogue tile scraped from a listing page.
type Product struct {
	// Fields maps field name to extracted text (or the sentinel).
	Fields map[string]string

	// Present records whether the field's selector matched.
	Present map[string]bool

	// Category is the menu label the product was listed under.
	Category string

	// Store is the supermarket name.
	Store string

	// Page is the 1-based listing page within the category.
	Page int

	// URL is the page URL at scrape time.
	URL string

	// ScrapedAt is when the tile was read.
	ScrapedAt time.Time
}

// NewProduct creates an empty Product.
func NewProduct() *Product {
	return &Product{
		Fields:    make(map[string]string, len(ProductFields)),
		Present:   make(map[string]bool, len(ProductFields)),
		ScrapedAt: time.Now(),
	}
}

// Set stores a field value and its presence flag.
func (p *Product) Set(name, value string, present bool) {
	p.Fields[name] = value
	p.Present[name] = present
}

// Get returns a field value, or "" if the field was never set.
func (p *Product) Get(name string) string {
	return p.Fields[name]
}

// Has reports whether the field was set at all.
func (p *Product) Has(name string) bool {
	_, ok := p.Fields[name]
	return ok
}

// Found reports whether the field's selector matched on the page.
func (p *Product) Found(name string) bool {
	return p.Present[name]
}

// Missing returns the names among fields whose selector matched nothing.
func (p *Product) Missing(fields []string) []string {
	var missing []string
	for _, f := range fields {
		if !p.Present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// Columns returns the tabular column order for the given field names.
func Columns(fields []string) []string {
	cols := make([]string, 0, len(fields)+5)
	cols = append(cols, "category", "store", "page")
	cols = append(cols, fields...)
	cols = append(cols, "url", "scraped_at")
	return cols
}

// ToFlatMap returns a flat map suitable for CSV export.
func (p *Product) ToFlatMap() map[string]string {
	flat := make(map[string]string, len(p.Fields)+5)
	flat["category"] = p.Category
	flat["store"] = p.Store
	flat["page"] = strconv.Itoa(p.Page)
	flat["url"] = p.URL
	flat["scraped_at"] = p.ScrapedAt.Format(time.RFC3339)
	for k, v := range p.Fields {
		flat[k] = v
	}
	return flat
}

// ToDocument returns a map for JSON and document-store output.
func (p *Product) ToDocument() map[string]any {
	doc := make(map[string]any, len(p.Fields)+5)
	doc["category"] = p.Category
	doc["store"] = p.Store
	doc["page"] = p.Page
	doc["url"] = p.URL
	doc["scraped_at"] = p.ScrapedAt
	for k, v := range p.Fields {
		doc[k] = v
	}
	return doc
}

// ToJSON serializes the product to JSON bytes.
func (p *Product) ToJSON() ([]byte, error) {
	return json.Marshal(p.ToDocument())
}

// Clone creates a deep copy of the product.
func (p *Product) Clone() *Product {
	clone := &Product{
		Fields:    make(map[string]string, len(p.Fields)),
		Present:   make(map[string]bool, len(p.Present)),
		Category:  p.Category,
		Store:     p.Store,
		Page:      p.Page,
		URL:       p.URL,
		ScrapedAt: p.ScrapedAt,
	}
	for k, v := range p.Fields {
		clone.Fields[k] = v
	}
	for k, v := range p.Present {
		clone.Present[k] = v
	}
	return clone
}
