package market

import (
	"context"
	"fmt"
	"time"

	"shopcraft.gg/internal/protocol"
	"shopcraft.gg/internal/sim/trading"
)

// Run drives the tick loop until the context is cancelled or Stop is
// called. All kernel state is owned by this goroutine.
func (m *Market) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(m.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingActions []ActionEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stop:
			return nil
		case req := <-m.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-m.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-m.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			m.step(pendingJoins, pendingLeaves, pendingActions)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingActions = pendingActions[:0]
		}
	}
}

func (m *Market) Stop() { close(m.stop) }

// StepOnce advances the kernel by a single tick with the same ordering as
// Run; used by tests.
func (m *Market) StepOnce(joins []JoinRequest, leaves []string, actions []ActionEnvelope) uint64 {
	m.step(joins, leaves, actions)
	return m.tick.Load()
}

func (m *Market) step(joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	m.tick.Add(1)

	// Deferred work from the previous tick runs before new input.
	m.queue.Drain()

	for _, req := range joins {
		m.handleJoin(req)
	}
	for _, id := range leaves {
		m.handleLeave(id)
	}
	for _, env := range actions {
		m.handleAction(env)
	}
}

func (m *Market) handleJoin(req JoinRequest) {
	m.nextPlayer++
	id := fmt.Sprintf("P%06d", m.nextPlayer)
	session := &PlayerSession{id: id, name: req.Name, perms: req.Perms, out: req.Out}
	if session.perms == nil {
		session.perms = map[string]bool{}
	}
	m.players[id] = session
	m.playerCount.Add(1)

	shops := make([]protocol.ShopRef, 0, m.shops.Len())
	for _, sid := range m.shops.IDs() {
		s, _ := m.shops.Get(sid)
		shops = append(shops, protocol.ShopRef{ShopID: sid, Name: s.Name()})
	}
	if req.Resp != nil {
		req.Resp <- JoinResponse{PlayerID: id, Shops: shops}
	}
}

func (m *Market) handleLeave(id string) {
	if _, ok := m.players[id]; !ok {
		return
	}
	m.renames.Drop(id)
	delete(m.players, id)
	m.playerCount.Add(-1)
}

func (m *Market) handleAction(env ActionEnvelope) {
	p, ok := m.players[env.PlayerID]
	if !ok {
		return
	}
	switch {
	case env.Open != nil:
		m.handleOpenShop(p, env.Open)
	case env.Click != nil:
		m.handleClick(p, env.Click)
	case env.Chat != nil:
		m.handleChat(p, env.Chat)
	case env.Rename != nil:
		m.handleRename(p, env.Rename)
	}
}

func (m *Market) handleOpenShop(p *PlayerSession, msg *protocol.OpenShopMsg) {
	h, ok := m.handlers[msg.ShopID]
	if !ok {
		return
	}
	if h.Open(p) {
		p.openShop = msg.ShopID
	}
}

func (m *Market) handleClick(p *PlayerSession, msg *protocol.ClickMsg) {
	// Clicks are only meaningful for the window the player actually has
	// open; anything else is stale or forged.
	if p.openShop == "" || p.openShop != msg.ShopID {
		return
	}
	h, ok := m.handlers[msg.ShopID]
	if !ok {
		return
	}
	click := &trading.ClickEvent{
		RawSlot:    msg.RawSlot,
		LeftClick:  msg.LeftClick,
		ShiftClick: msg.ShiftClick,
		Cursor:     decodeStack(msg.Cursor),
	}
	if msg.Action == protocol.ClickActionCollect {
		click.Action = trading.ActionCollectToCursor
	}
	for i := 0; i < 3 && i < len(msg.Slots); i++ {
		click.Slots[i] = decodeStack(msg.Slots[i])
	}
	h.HandleClick(click, p)
}

func (m *Market) handleChat(p *PlayerSession, msg *protocol.ChatMsg) {
	// The naming intercept runs before the broadcast path, like a
	// lowest-priority listener.
	if m.chat.HandleChat(p, msg.Message) {
		return
	}
	for _, other := range m.players {
		other.AddEvent(protocol.Event{
			"type": protocol.EventChat,
			"t":    m.tick.Load(),
			"from": p.Name(),
			"text": msg.Message,
		})
	}
}

func (m *Market) handleRename(p *PlayerSession, msg *protocol.RenameMsg) {
	if _, ok := m.shops.Get(msg.ShopID); !ok {
		return
	}
	m.renames.Begin(p.ID(), msg.ShopID, m.tick.Load())
	p.SendMessage("Type the new shop name in chat, or - to reset it.")
}
