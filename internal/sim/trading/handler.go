// Package trading implements the merchant-window interaction core: opening
// a trade window for a player, validating the engine-proposed trade of a
// result-slot click, taxing proceeds and committing the exchange.
package trading

import (
	"log"

	"shopcraft.gg/internal/config"
	"shopcraft.gg/internal/sim/catalogs"
	"shopcraft.gg/internal/sim/compat"
	"shopcraft.gg/internal/sim/events"
	"shopcraft.gg/internal/sim/item"
	"shopcraft.gg/internal/sim/sched"
	"shopcraft.gg/internal/sim/shopkeeper"
)

// Deps are the collaborators a Handler needs; all injected, none global.
type Deps struct {
	Settings  config.Settings
	Catalog   *catalogs.ItemCatalog
	Compat    compat.Profile
	Bus       *events.Bus
	Queue     *sched.Queue
	Windows   WindowOpener
	Resolver  RecipeResolver
	Refresher InventoryRefresher
	Log       *log.Logger
}

// Handler drives trading for one shopkeeper. Per-variant behavior (extra
// authorization, shift-trade policy, purchase effects) comes from the
// shopkeeper's optional capability interfaces, not from subclassing.
type Handler struct {
	shop shopkeeper.Shopkeeper
	deps Deps
	cfg  config.Settings
}

func NewHandler(shop shopkeeper.Shopkeeper, deps Deps) *Handler {
	return &Handler{shop: shop, deps: deps, cfg: deps.Settings}
}

func (h *Handler) Shopkeeper() shopkeeper.Shopkeeper { return h.shop }

// Open opens the trade window for the player. Returns false without side
// effects when the player lacks permission or an observer vetoes the open.
func (h *Handler) Open(p shopkeeper.Player) bool {
	if !h.canOpen(p) {
		return false
	}
	ev := &events.OpenTrade{PlayerID: p.ID(), ShopkeeperID: h.shop.ID()}
	if !h.deps.Bus.PublishOpenTrade(ev) {
		h.debugf("trade window not opened for %s: cancelled by an observer", p.Name())
		return false
	}
	return h.deps.Windows.OpenTradeWindow(h.windowTitle(), h.shop.TradingRecipes(p), p)
}

func (h *Handler) canOpen(p shopkeeper.Player) bool {
	if !p.HasPermission(h.cfg.TradePermission) {
		h.debugf("blocked trade window opening from %s: missing trade permission", p.Name())
		p.SendMessage(h.cfg.MsgMissingTradePerm)
		return false
	}
	if auth, ok := h.shop.(shopkeeper.TradeAuthorizer); ok && !auth.AuthorizeTrade(p) {
		h.debugf("blocked trade window opening from %s: missing custom trade permission for %s", p.Name(), h.shop.ID())
		p.SendMessage(h.cfg.MsgMissingCustomTradePerm)
		return false
	}
	return true
}

func (h *Handler) windowTitle() string {
	title := h.shop.Name()
	if title == "" {
		title = h.cfg.MsgTradingTitleDefault
	}
	return h.cfg.MsgTradingTitlePrefix + title
}

// HandleClick validates one raw window click and, if it is a genuine
// completed trade, commits it. Guards run in strict order; every rejection
// cancels the click and (except the cursor guard, where the engine refuses
// on its own) schedules a deferred inventory refresh for the viewer.
func (h *Handler) HandleClick(click *ClickEvent, p shopkeeper.Player) {
	if click.Cancelled() {
		h.debugf("click in trading window for %s at %s was already cancelled", p.Name(), h.shop.PositionString())
		return
	}

	unwantedSpecialClick := false
	if click.Action == ActionCollectToCursor {
		unwantedSpecialClick = true
	} else if click.RawSlot == SlotResult {
		if !click.LeftClick || (click.ShiftClick && !h.shiftTradeAllowed()) {
			unwantedSpecialClick = true
		}
	}
	if unwantedSpecialClick {
		h.debugf("prevented special click in trading window by %s at %s", p.Name(), h.shop.PositionString())
		click.Cancel()
		h.scheduleRefresh(p)
		return
	}

	if click.RawSlot != SlotResult {
		return
	}

	resultItem := item.NilIfEmpty(click.Slots[SlotResult])
	if resultItem.IsEmpty() {
		h.debugf("not handling trade: no item in the clicked result slot")
		return
	}

	offered1 := item.NilIfEmpty(click.Slots[SlotInputA])
	offered2 := item.NilIfEmpty(click.Slots[SlotInputB])
	// The engine also allows the trade when the single required item sits in
	// the second slot and the first is empty; mirror that here.
	if offered1.IsEmpty() {
		offered1, offered2 = offered2, item.Stack{}
	}

	usedRecipe, found := h.deps.Resolver.UsedTradingRecipe(p, h.shop, click.Slots)
	invalidRecipe := false
	if !found {
		// Shouldn't happen: the engine offered a trade we can't resolve.
		h.debugf("invalid trade by %s with shopkeeper at %s: engine offered a trade but no used recipe was found", p.Name(), h.shop.PositionString())
		invalidRecipe = true
	} else if !usedRecipe.Result().Equal(resultItem) {
		h.debugf("invalid trade by %s with shopkeeper at %s: result item doesn't match the used recipe", p.Name(), h.shop.PositionString())
		invalidRecipe = true
	}
	if invalidRecipe {
		click.Cancel()
		h.scheduleRefresh(p)
		return
	}

	required1 := usedRecipe.Item1()
	required2 := usedRecipe.Item2()

	// Old engine versions may under-consume mutually stackable inputs,
	// which players can exploit to keep items they should have spent.
	if h.deps.Compat.StackedInputUnderConsume && offered1.Similar(offered2) {
		if offered1.Amount < required1.Amount || offered2.Amount < required2.Amount {
			h.debugf("preventing trade by %s with shopkeeper at %s: stacked inputs may not get consumed correctly on engine %s", p.Name(), h.shop.PositionString(), h.deps.Compat.EngineVersion)
			click.Cancel()
			h.scheduleRefresh(p)
			return
		}
	}

	if h.cfg.UseStrictItemComparison {
		if !required1.Similar(offered1) || !required2.Similar(offered2) {
			if h.cfg.Debug {
				h.debugf("invalid trade by %s with shopkeeper at %s using strict item comparison:", p.Name(), h.shop.PositionString())
				h.debugf("used recipe: %s", usedRecipe)
				h.debugf("recipe item 1: %s", similarity(required1, offered1))
				h.debugf("recipe item 2: %s", similarity(required2, offered2))
			}
			click.Cancel()
			h.scheduleRefresh(p)
			return
		}
	}

	cursor := item.NilIfEmpty(click.Cursor)
	if !cursor.IsEmpty() {
		// The engine won't run the trade if the cursor can't hold the result;
		// our logic must not run either.
		if !cursor.Similar(resultItem) || cursor.Amount+resultItem.Amount > h.deps.Catalog.MaxStack(cursor.Type) {
			h.debugf("skipping trade by %s with shopkeeper at %s: the cursor cannot carry the resulting items", p.Name(), h.shop.PositionString())
			click.Cancel()
			return
		}
	}

	tradeEvent := &events.Trade{
		PlayerID:     p.ID(),
		ShopkeeperID: h.shop.ID(),
		Recipe:       usedRecipe,
		Offered1:     offered1,
		Offered2:     offered2,
		Click:        click,
	}
	if !h.deps.Bus.PublishTrade(tradeEvent) {
		h.debugf("trade by %s was cancelled by an observer", p.Name())
		return
	}

	h.shop.CommitPurchase(click, p, usedRecipe, offered1, offered2)

	h.deps.Bus.PublishTradeCompleted(events.TradeCompleted{
		PlayerID:     p.ID(),
		ShopkeeperID: h.shop.ID(),
		Recipe:       usedRecipe,
		Offered1:     offered1,
		Offered2:     offered2,
	})
}

func (h *Handler) shiftTradeAllowed() bool {
	if st, ok := h.shop.(shopkeeper.ShiftTrader); ok {
		return st.ShiftTradeAllowed()
	}
	return false
}

func (h *Handler) scheduleRefresh(p shopkeeper.Player) {
	if h.deps.Refresher == nil {
		return
	}
	h.deps.Queue.RunOnNextTick(func() {
		h.deps.Refresher.RefreshInventory(p)
	})
}

func (h *Handler) debugf(format string, args ...any) {
	if h.deps.Log != nil && h.cfg.Debug {
		h.deps.Log.Printf(format, args...)
	}
}

func similarity(a, b item.Stack) string {
	if a.Similar(b) {
		return "similar"
	}
	return "not similar"
}
