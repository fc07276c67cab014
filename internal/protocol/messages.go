package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	PlayerID        string    `json:"player_id"`
	ItemsDigest     string    `json:"items_digest,omitempty"`
	Shops           []ShopRef `json:"shops,omitempty"`
}

type ShopRef struct {
	ShopID string `json:"shop_id"`
	Name   string `json:"name,omitempty"`
}

// OPEN_SHOP (client -> server): request a trade window for a shopkeeper.
type OpenShopMsg struct {
	Type   string `json:"type"`
	ShopID string `json:"shop_id"`
}

// CLICK (client -> server): one raw click in an open trade window.
type ClickMsg struct {
	Type       string        `json:"type"`
	ShopID     string        `json:"shop_id"`
	RawSlot    int           `json:"raw_slot"`
	Action     string        `json:"action"` // "NORMAL" or "COLLECT"
	LeftClick  bool          `json:"left_click"`
	ShiftClick bool          `json:"shift_click"`
	Slots      [3]*ItemStack `json:"slots"`
	Cursor     *ItemStack    `json:"cursor,omitempty"`
}

const (
	ClickActionNormal  = "NORMAL"
	ClickActionCollect = "COLLECT"
)

type ItemStack struct {
	Item   string            `json:"item"`
	Amount int               `json:"amount"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// CHAT (client -> server)
type ChatMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RENAME (client -> server): start a naming session for a shopkeeper; the
// player's next chat message becomes the shop name.
type RenameMsg struct {
	Type   string `json:"type"`
	ShopID string `json:"shop_id"`
}

// Event is an outbound server -> client notification. Kept schemaless so
// handler code can attach whatever detail applies.
type Event map[string]interface{}

// Outbound event types.
const (
	EventOpenWindow    = "OPEN_WINDOW"
	EventInventorySync = "INVENTORY_SYNC"
	EventMessage       = "MSG"
	EventTradeDone     = "TRADE_DONE"
	EventChat          = "CHAT"
)
