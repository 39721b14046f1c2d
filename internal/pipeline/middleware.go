package pipeline

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// TrimMiddleware trims and collapses whitespace in every field.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(p *types.Product) (*types.Product, error) {
	for key, v := range p.Fields {
		p.Fields[key] = strings.Join(strings.Fields(v), " ")
	}
	p.Category = strings.TrimSpace(p.Category)
	return p, nil
}

// SentinelMiddleware guarantees every named field is present, filling gaps
// (including values emptied by trimming) with the sentinel.
type SentinelMiddleware struct {
	Fields   []string
	Sentinel string
}

func (m *SentinelMiddleware) Name() string { return "sentinel" }

func (m *SentinelMiddleware) Process(p *types.Product) (*types.Product, error) {
	for _, f := range m.Fields {
		if p.Get(f) == "" {
			p.Set(f, m.Sentinel, false)
		}
	}
	return p, nil
}

// DedupMiddleware drops products already seen under the same title, price and
// option suffix, regardless of category. The seen-set is bounded.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen *lru.Cache[string, struct{}]
}

// NewDedupMiddleware creates a dedup stage remembering up to size keys.
func NewDedupMiddleware(size int) (*DedupMiddleware, error) {
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &DedupMiddleware{seen: cache}, nil
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(p *types.Product) (*types.Product, error) {
	key := strings.Join([]string{p.Get("title"), p.Get("price"), p.Get("option_suffix")}, "\x00")

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen.Contains(key) {
		return nil, nil
	}
	m.seen.Add(key, struct{}{})
	return p, nil
}

// StoreMiddleware stamps the supermarket name on products that lack one.
type StoreMiddleware struct {
	Store string
}

func (m *StoreMiddleware) Name() string { return "store" }

func (m *StoreMiddleware) Process(p *types.Product) (*types.Product, error) {
	if p.Store == "" {
		p.Store = m.Store
	}
	return p, nil
}

// RequiredFieldsMiddleware drops products where any listed field fell back to
// the sentinel.
type RequiredFieldsMiddleware struct {
	Fields []string
}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(p *types.Product) (*types.Product, error) {
	for _, f := range m.Fields {
		if !p.Found(f) {
			return nil, nil
		}
	}
	return p, nil
}
