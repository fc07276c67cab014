package shopkeeper

import (
	"shopcraft.gg/internal/sim/events"
	"shopcraft.gg/internal/sim/item"
	"shopcraft.gg/internal/sim/recipe"
)

// Player is the trading side of a connected player session.
type Player interface {
	ID() string
	Name() string
	HasPermission(perm string) bool
	SendMessage(msg string)
}

// Shopkeeper is a persistent in-world shop entity. The trading core
// references shopkeepers but never owns their lifecycle.
type Shopkeeper interface {
	ID() string
	Name() string
	SetName(name string)

	// PositionString is a human-readable location, used in debug output only.
	PositionString() string

	// TradingRecipes returns the recipes offered to this player, in display
	// order.
	TradingRecipes(p Player) []recipe.TradingRecipe

	// CommitPurchase applies the shop-side effects of a validated trade.
	// The trading core guarantees it runs exactly once per validated trade,
	// after every validation gate has passed. The offered items are what the
	// player actually placed in the window; they may differ slightly from
	// the recipe items depending on the comparison policy.
	CommitPurchase(click events.Cancellable, p Player, r recipe.TradingRecipe, offered1, offered2 item.Stack)
}

// TradeAuthorizer is an optional capability: shopkeeper variants that gate
// trading behind an extra per-shop permission implement it.
type TradeAuthorizer interface {
	// AuthorizeTrade reports whether the player may trade here, beyond the
	// global trade permission.
	AuthorizeTrade(p Player) bool
}

// ShiftTrader is an optional capability: variants that permit buying via
// shift-click on the result slot implement it. Absent means not allowed.
type ShiftTrader interface {
	ShiftTradeAllowed() bool
}
