package api

import (
	"sync"

	"github.com/google/uuid"

	"westernpos/m/internal/cart"
)

// screen is one open "new sale" screen. Its mutex serializes every event on
// the screen, so a completion never overlaps another mutation.
type screen struct {
	mu         sync.Mutex
	id         uuid.UUID
	operatorID int64
	cart       *cart.Cart
}

type screenView struct {
	ID     uuid.UUID   `json:"id"`
	Lines  []cart.Line `json:"lines"`
	Totals cart.Totals `json:"totals"`
}

// view must be called with s.mu held.
func (s *screen) view() screenView {
	return screenView{ID: s.id, Lines: s.cart.Lines(), Totals: s.cart.Totals()}
}

type screenRegistry struct {
	mu      sync.Mutex
	screens map[uuid.UUID]*screen
}

func newScreenRegistry() *screenRegistry {
	return &screenRegistry{screens: make(map[uuid.UUID]*screen)}
}

func (r *screenRegistry) open(operatorID int64) *screen {
	s := &screen{id: uuid.New(), operatorID: operatorID, cart: cart.New()}
	r.mu.Lock()
	r.screens[s.id] = s
	r.mu.Unlock()
	return s
}

func (r *screenRegistry) get(id uuid.UUID) (*screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.screens[id]
	return s, ok
}

func (r *screenRegistry) close(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.screens[id]; !ok {
		return false
	}
	delete(r.screens, id)
	return true
}
