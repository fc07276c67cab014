package shopkeeper

import (
	"fmt"

	"shopcraft.gg/internal/sim/events"
	"shopcraft.gg/internal/sim/item"
	"shopcraft.gg/internal/sim/recipe"
)

// AdminShopkeeper is a server-owned shop with a fixed recipe list and
// unlimited stock. It may require an additional per-shop trade permission.
type AdminShopkeeper struct {
	id       string
	name     string
	position string
	recipes  []recipe.TradingRecipe

	// Empty means no additional permission is required.
	tradePermission string

	salesCount int
}

func NewAdmin(id, name, position string, recipes []recipe.TradingRecipe) *AdminShopkeeper {
	return &AdminShopkeeper{
		id:       id,
		name:     name,
		position: position,
		recipes:  append([]recipe.TradingRecipe(nil), recipes...),
	}
}

func (s *AdminShopkeeper) ID() string           { return s.id }
func (s *AdminShopkeeper) Name() string         { return s.name }
func (s *AdminShopkeeper) SetName(name string)  { s.name = name }
func (s *AdminShopkeeper) PositionString() string {
	return s.position
}

func (s *AdminShopkeeper) TradingRecipes(Player) []recipe.TradingRecipe {
	// Admin shops offer the same recipes to everyone.
	return append([]recipe.TradingRecipe(nil), s.recipes...)
}

func (s *AdminShopkeeper) TradePermission() string { return s.tradePermission }

func (s *AdminShopkeeper) SetTradePermission(perm string) {
	s.tradePermission = perm
}

func (s *AdminShopkeeper) AuthorizeTrade(p Player) bool {
	if s.tradePermission == "" {
		return true
	}
	return p.HasPermission(s.tradePermission)
}

func (s *AdminShopkeeper) CommitPurchase(click events.Cancellable, p Player, r recipe.TradingRecipe, offered1, offered2 item.Stack) {
	// Admin stock is unlimited and the host engine moves the items, so the
	// shop-side effect is bookkeeping only.
	s.salesCount++
}

func (s *AdminShopkeeper) SalesCount() int { return s.salesCount }

// Registry holds the live shopkeepers, keyed by id. It is mutated only from
// the main tick.
type Registry struct {
	byID    map[string]Shopkeeper
	ordered []string
	nextNum uint64
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]Shopkeeper{}}
}

func (r *Registry) NewID() string {
	r.nextNum++
	return fmt.Sprintf("SK%06d", r.nextNum)
}

func (r *Registry) Add(s Shopkeeper) {
	if _, ok := r.byID[s.ID()]; !ok {
		r.ordered = append(r.ordered, s.ID())
	}
	r.byID[s.ID()] = s
}

func (r *Registry) Get(id string) (Shopkeeper, bool) {
	s, ok := r.byID[id]
	return s, ok
}

func (r *Registry) Remove(id string) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, v := range r.ordered {
		if v == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
}

// IDs returns shopkeeper ids in insertion order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.ordered...)
}

func (r *Registry) Len() int { return len(r.byID) }
