// Package market is the simulation kernel: it owns the shopkeepers, the
// connected player sessions and the tick loop, and wires the trading and
// naming components to the transport.
package market

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"shopcraft.gg/internal/config"
	"shopcraft.gg/internal/protocol"
	"shopcraft.gg/internal/sim/catalogs"
	"shopcraft.gg/internal/sim/compat"
	"shopcraft.gg/internal/sim/events"
	"shopcraft.gg/internal/sim/item"
	"shopcraft.gg/internal/sim/naming"
	"shopcraft.gg/internal/sim/recipe"
	"shopcraft.gg/internal/sim/sched"
	"shopcraft.gg/internal/sim/shopkeeper"
	"shopcraft.gg/internal/sim/trading"
)

type Market struct {
	cfg  config.Settings
	cats *catalogs.Catalogs
	log  *log.Logger

	bus      *events.Bus
	queue    *sched.Queue
	shops    *shopkeeper.Registry
	handlers map[string]*trading.Handler
	renames  *naming.Registry
	chat     *naming.Listener

	players    map[string]*PlayerSession
	recorder   TradeRecorder
	nextPlayer uint64

	tick atomic.Uint64

	// Mirrors for /metrics; the maps themselves are tick-owned.
	playerCount atomic.Int64
	shopCount   atomic.Int64

	join  chan JoinRequest
	leave chan string
	inbox chan ActionEnvelope
	stop  chan struct{}
}

func New(cfg config.Settings, cats *catalogs.Catalogs, recorder TradeRecorder, logger *log.Logger) (*Market, error) {
	m := &Market{
		cfg:      cfg,
		cats:     cats,
		log:      logger,
		bus:      events.NewBus(),
		queue:    sched.NewQueue(),
		shops:    shopkeeper.NewRegistry(),
		handlers: map[string]*trading.Handler{},
		renames:  naming.NewRegistry(),
		players:  map[string]*PlayerSession{},
		recorder: recorder,
		join:     make(chan JoinRequest, 16),
		leave:    make(chan string, 16),
		inbox:    make(chan ActionEnvelope, 256),
		stop:     make(chan struct{}),
	}

	policy, err := naming.NewSettingsPolicy(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("naming policy: %w", err)
	}
	m.chat = naming.NewListener(m.renames, m.shops, m.queue, policy, logger)

	m.bus.OnTradeCompleted(m.recordTrade)
	return m, nil
}

func (m *Market) Bus() *events.Bus              { return m.bus }
func (m *Market) Shops() *shopkeeper.Registry   { return m.shops }
func (m *Market) Join() chan<- JoinRequest      { return m.join }
func (m *Market) Leave() chan<- string          { return m.leave }
func (m *Market) Inbox() chan<- ActionEnvelope  { return m.inbox }
func (m *Market) Tick() uint64                  { return m.tick.Load() }

// MarketMetrics is a point-in-time snapshot safe to read off-tick.
type MarketMetrics struct {
	Tick    uint64
	Players int64
	Shops   int64

	InboxDepth int
	JoinDepth  int
	LeaveDepth int
}

func (m *Market) Metrics() MarketMetrics {
	return MarketMetrics{
		Tick:       m.tick.Load(),
		Players:    m.playerCount.Load(),
		Shops:      m.shopCount.Load(),
		InboxDepth: len(m.inbox),
		JoinDepth:  len(m.join),
		LeaveDepth: len(m.leave),
	}
}

// AddShopkeeper registers a shopkeeper and builds its trading handler.
// Main tick only (or before Run starts).
func (m *Market) AddShopkeeper(s shopkeeper.Shopkeeper) {
	if _, exists := m.shops.Get(s.ID()); !exists {
		m.shopCount.Add(1)
	}
	m.shops.Add(s)
	m.handlers[s.ID()] = trading.NewHandler(s, trading.Deps{
		Settings:  m.cfg,
		Catalog:   &m.cats.Items,
		Compat:    compat.ForEngineVersion(m.cfg.EngineVersion),
		Bus:       m.bus,
		Queue:     m.queue,
		Windows:   m,
		Resolver:  m,
		Refresher: m,
		Log:       m.log,
	})
}

// RemoveShopkeeper unregisters a shopkeeper and closes any windows open on
// it. Pending rename sessions for it die at consumption time.
func (m *Market) RemoveShopkeeper(id string) {
	if _, exists := m.shops.Get(id); exists {
		m.shopCount.Add(-1)
	}
	m.shops.Remove(id)
	delete(m.handlers, id)
	for _, p := range m.players {
		if p.openShop == id {
			p.openShop = ""
		}
	}
}

// NewAdminShopkeeper is a convenience for wiring and tests.
func (m *Market) NewAdminShopkeeper(name, position string, recipes []recipe.TradingRecipe) *shopkeeper.AdminShopkeeper {
	s := shopkeeper.NewAdmin(m.shops.NewID(), name, position, recipes)
	m.AddShopkeeper(s)
	return s
}

// OpenTradeWindow implements trading.WindowOpener by messaging the client.
func (m *Market) OpenTradeWindow(title string, recipes []recipe.TradingRecipe, p shopkeeper.Player) bool {
	session, ok := m.players[p.ID()]
	if !ok {
		return false
	}
	encoded := make([]protocol.Event, 0, len(recipes))
	for _, r := range recipes {
		encoded = append(encoded, protocol.Event{
			"item1":  encodeStack(r.Item1()),
			"item2":  encodeStack(r.Item2()),
			"result": encodeStack(r.Result()),
		})
	}
	session.AddEvent(protocol.Event{
		"type":    protocol.EventOpenWindow,
		"t":       m.tick.Load(),
		"title":   title,
		"recipes": encoded,
	})
	return true
}

// RefreshInventory implements trading.InventoryRefresher; the kernel's
// next-tick queue has already deferred the call to a safe point.
func (m *Market) RefreshInventory(p shopkeeper.Player) {
	session, ok := m.players[p.ID()]
	if !ok {
		return
	}
	session.AddEvent(protocol.Event{"type": protocol.EventInventorySync, "t": m.tick.Load()})
}

// UsedTradingRecipe implements trading.RecipeResolver: the engine-side
// matching for the window's current content. First recipe whose required
// items are covered by the offered ones wins, in display order.
func (m *Market) UsedTradingRecipe(p shopkeeper.Player, s shopkeeper.Shopkeeper, slots [3]item.Stack) (recipe.TradingRecipe, bool) {
	offered1 := item.NilIfEmpty(slots[trading.SlotInputA])
	offered2 := item.NilIfEmpty(slots[trading.SlotInputB])
	if offered1.IsEmpty() {
		offered1, offered2 = offered2, item.Stack{}
	}
	for _, r := range s.TradingRecipes(p) {
		if covers(offered1, r.Item1()) && covers(offered2, r.Item2()) {
			return r, true
		}
	}
	return recipe.TradingRecipe{}, false
}

func covers(offered, required item.Stack) bool {
	if required.IsEmpty() {
		return offered.IsEmpty()
	}
	return offered.Similar(required) && offered.Amount >= required.Amount
}

func (m *Market) recordTrade(e events.TradeCompleted) {
	session := m.players[e.PlayerID]
	shop, _ := m.shops.Get(e.ShopkeeperID)

	offered1 := e.Offered1
	offered2 := e.Offered2
	result := e.Recipe.Result()
	rec := TradeRecord{
		Tick:         m.tick.Load(),
		PlayerID:     e.PlayerID,
		ShopkeeperID: e.ShopkeeperID,
		Item1:        offered1.Type,
		Item1Amount:  offered1.Amount,
		Item2:        offered2.Type,
		Item2Amount:  offered2.Amount,
		Result:       result.Type,
		ResultAmount: result.Amount,
		// Revenue after taxes, in units of the first offered item.
		Proceeds:   trading.ProceedsAfterTax(offered1.Amount, m.cfg.TaxRate, m.cfg.TaxRoundUp),
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if session != nil {
		rec.PlayerName = session.Name()
		session.AddEvent(protocol.Event{
			"type":    protocol.EventTradeDone,
			"t":       rec.Tick,
			"shop_id": e.ShopkeeperID,
			"result":  encodeStack(result),
		})
	}
	if shop != nil {
		rec.ShopName = shop.Name()
	}
	if m.recorder != nil {
		m.recorder.RecordTrade(rec)
	}
}

func encodeStack(s item.Stack) protocol.Event {
	if s.IsEmpty() {
		return nil
	}
	ev := protocol.Event{"item": s.Type, "amount": s.Amount}
	if len(s.Meta) > 0 {
		meta := map[string]string{}
		for k, v := range s.Meta {
			meta[k] = v
		}
		ev["meta"] = meta
	}
	return ev
}

func decodeStack(s *protocol.ItemStack) item.Stack {
	if s == nil || s.Item == "" || s.Amount <= 0 {
		return item.Stack{}
	}
	st := item.Stack{Type: s.Item, Amount: s.Amount}
	if len(s.Meta) > 0 {
		st.Meta = map[string]string{}
		for k, v := range s.Meta {
			st.Meta[k] = v
		}
	}
	return st
}
