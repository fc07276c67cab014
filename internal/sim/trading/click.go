package trading

import (
	"shopcraft.gg/internal/sim/item"
	"shopcraft.gg/internal/sim/recipe"
	"shopcraft.gg/internal/sim/shopkeeper"
)

// Merchant window slot indices.
const (
	SlotInputA = 0
	SlotInputB = 1
	SlotResult = 2
)

// Action is the coarse kind of an interface click.
type Action int

const (
	ActionNormal Action = iota
	// ActionCollectToCursor is the double-click gather action; never allowed
	// in a trade window.
	ActionCollectToCursor
)

// ClickEvent is one raw interface click as reported by the host engine.
// Slots is the window content at click time; Cursor is the item on the
// player's cursor. The event starts uncancelled; cancelling it is the only
// way to stop the engine from applying the trade.
type ClickEvent struct {
	RawSlot    int
	Action     Action
	LeftClick  bool
	ShiftClick bool
	Slots      [3]item.Stack
	Cursor     item.Stack

	cancelled bool
}

func (e *ClickEvent) Cancel()         { e.cancelled = true }
func (e *ClickEvent) Cancelled() bool { return e.cancelled }

// WindowOpener is the host primitive that actually opens a merchant window.
type WindowOpener interface {
	OpenTradeWindow(title string, recipes []recipe.TradingRecipe, p shopkeeper.Player) bool
}

// RecipeResolver reports the trade the host engine matched for the window's
// current content. The authoritative matching lives in the engine; the
// validator only cross-checks its result.
type RecipeResolver interface {
	UsedTradingRecipe(p shopkeeper.Player, s shopkeeper.Shopkeeper, slots [3]item.Stack) (recipe.TradingRecipe, bool)
}

// InventoryRefresher resynchronizes a player's client-visible inventory
// with server state. Called only through the next-tick queue: mutating
// inventory during click dispatch is unsafe.
type InventoryRefresher interface {
	RefreshInventory(p shopkeeper.Player)
}
