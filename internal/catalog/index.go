package catalog

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
)

// Index is the product name list used for autocomplete. It is built once when
// a screen loads and only changes on an explicit Refresh.
type Index struct {
	catalog *Catalog

	mu    sync.RWMutex
	names []string
}

// Load builds the index. A storage failure leaves the index empty instead of
// blocking the screen.
func Load(ctx context.Context, c *Catalog) *Index {
	idx := &Index{catalog: c}
	if err := idx.Refresh(ctx); err != nil {
		log.Printf("[catalog] search index unavailable: %v", err)
	}
	return idx
}

// Refresh re-reads product names. On error the previous names are kept.
func (i *Index) Refresh(ctx context.Context) error {
	names, err := i.catalog.ListActiveProductNames(ctx)
	if err != nil {
		return err
	}
	i.mu.Lock()
	i.names = names
	i.mu.Unlock()
	return nil
}

func (i *Index) Names() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]string, len(i.names))
	copy(out, i.names)
	return out
}

// Search matches query case-insensitively. Prefix matches come before
// substring matches; each group keeps the index order. limit <= 0 means no
// limit.
func (i *Index) Search(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))

	i.mu.RLock()
	defer i.mu.RUnlock()

	type hit struct {
		name   string
		prefix bool
		pos    int
	}
	var hits []hit
	for pos, name := range i.names {
		lower := strings.ToLower(name)
		switch {
		case q == "" || strings.HasPrefix(lower, q):
			hits = append(hits, hit{name: name, prefix: true, pos: pos})
		case strings.Contains(lower, q):
			hits = append(hits, hit{name: name, pos: pos})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].prefix != hits[b].prefix {
			return hits[a].prefix
		}
		return hits[a].pos < hits[b].pos
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]string, len(hits))
	for n, h := range hits {
		out[n] = h.name
	}
	return out
}
