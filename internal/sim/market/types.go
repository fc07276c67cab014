package market

import (
	"shopcraft.gg/internal/protocol"
)

// JoinRequest is a player connecting through the transport.
type JoinRequest struct {
	Name  string
	Perms map[string]bool
	Out   chan protocol.Event
	Resp  chan JoinResponse
}

type JoinResponse struct {
	PlayerID string
	Shops    []protocol.ShopRef
}

// ActionEnvelope carries one decoded client message into the tick loop.
type ActionEnvelope struct {
	PlayerID string
	Open     *protocol.OpenShopMsg
	Click    *protocol.ClickMsg
	Chat     *protocol.ChatMsg
	Rename   *protocol.RenameMsg
}

// PlayerSession is the server-side state of one connected player.
type PlayerSession struct {
	id    string
	name  string
	perms map[string]bool
	out   chan protocol.Event

	// id of the shop whose trade window is currently open, or "".
	openShop string
}

func (p *PlayerSession) ID() string   { return p.id }
func (p *PlayerSession) Name() string { return p.name }

func (p *PlayerSession) HasPermission(perm string) bool {
	return p.perms[perm]
}

func (p *PlayerSession) SendMessage(msg string) {
	p.AddEvent(protocol.Event{"type": protocol.EventMessage, "text": msg})
}

// AddEvent queues an outbound event, dropping it if the client can't keep
// up. Dropping beats stalling the tick loop.
func (p *PlayerSession) AddEvent(ev protocol.Event) {
	if p.out == nil {
		return
	}
	select {
	case p.out <- ev:
	default:
	}
}

// TradeRecord is the persisted form of one completed trade.
type TradeRecord struct {
	Tick         uint64 `json:"tick"`
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	ShopkeeperID string `json:"shopkeeper_id"`
	ShopName     string `json:"shop_name,omitempty"`
	Item1        string `json:"item1"`
	Item1Amount  int    `json:"item1_amount"`
	Item2        string `json:"item2,omitempty"`
	Item2Amount  int    `json:"item2_amount,omitempty"`
	Result       string `json:"result"`
	ResultAmount int    `json:"result_amount"`
	Proceeds     int    `json:"proceeds"`
	RecordedAt   string `json:"recorded_at"`
}

// TradeRecorder receives completed trades; implementations must not block
// the tick loop.
type TradeRecorder interface {
	RecordTrade(TradeRecord)
}
