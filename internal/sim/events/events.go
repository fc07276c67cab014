package events

import (
	"shopcraft.gg/internal/sim/item"
	"shopcraft.gg/internal/sim/recipe"
)

// Cancellable is anything with a cancel latch, typically the raw click
// event underlying a trade.
type Cancellable interface {
	Cancel()
	Cancelled() bool
}

// OpenTrade is published before a trade window is opened. Any observer may
// veto by cancelling; the window is then not opened.
type OpenTrade struct {
	PlayerID     string
	ShopkeeperID string

	cancelled bool
}

func (e *OpenTrade) Cancel()         { e.cancelled = true }
func (e *OpenTrade) Cancelled() bool { return e.cancelled }

// Trade is published after a click has passed every validation gate and
// before the purchase is committed. Cancelling it also cancels the
// underlying click, so the host engine drops the trade too.
type Trade struct {
	PlayerID     string
	ShopkeeperID string
	Recipe       recipe.TradingRecipe
	Offered1     item.Stack
	Offered2     item.Stack

	Click Cancellable
}

func (e *Trade) Cancel() {
	if e.Click != nil {
		e.Click.Cancel()
	}
}

func (e *Trade) Cancelled() bool {
	return e.Click != nil && e.Click.Cancelled()
}

// TradeCompleted is informational; it mirrors the Trade notification that
// was committed. Observers cannot veto it.
type TradeCompleted struct {
	PlayerID     string
	ShopkeeperID string
	Recipe       recipe.TradingRecipe
	Offered1     item.Stack
	Offered2     item.Stack
}

// Bus delivers notifications synchronously to observers in registration
// order. Registration happens during wiring; publishing happens on the main
// tick only, so no locking is needed.
type Bus struct {
	openTrade      []func(*OpenTrade)
	trade          []func(*Trade)
	tradeCompleted []func(TradeCompleted)
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) OnOpenTrade(fn func(*OpenTrade)) {
	b.openTrade = append(b.openTrade, fn)
}

func (b *Bus) OnTrade(fn func(*Trade)) {
	b.trade = append(b.trade, fn)
}

func (b *Bus) OnTradeCompleted(fn func(TradeCompleted)) {
	b.tradeCompleted = append(b.tradeCompleted, fn)
}

// PublishOpenTrade runs all observers and reports whether the open may
// proceed.
func (b *Bus) PublishOpenTrade(e *OpenTrade) bool {
	for _, fn := range b.openTrade {
		fn(e)
	}
	return !e.Cancelled()
}

// PublishTrade runs all observers and reports whether the trade may
// proceed. A veto leaves the underlying click cancelled.
func (b *Bus) PublishTrade(e *Trade) bool {
	for _, fn := range b.trade {
		fn(e)
	}
	return !e.Cancelled()
}

func (b *Bus) PublishTradeCompleted(e TradeCompleted) {
	for _, fn := range b.tradeCompleted {
		fn(e)
	}
}
