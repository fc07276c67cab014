// Command bot is a minimal trading client for dev servers: it connects,
// opens the first advertised shop and buys the first recipe's result once
// per window, logging what comes back.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"shopcraft.gg/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "player name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var shopID string
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		if base.Type == protocol.TypeWelcome {
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME player_id=%s shops=%d", w.PlayerID, len(w.Shops))
			if len(w.Shops) == 0 {
				logger.Printf("no shops advertised; idling")
				continue
			}
			shopID = w.Shops[0].ShopID
			_ = conn.WriteJSON(protocol.OpenShopMsg{Type: protocol.TypeOpenShop, ShopID: shopID})
			continue
		}

		var ev protocol.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			continue
		}
		switch ev["type"] {
		case protocol.EventOpenWindow:
			handleWindow(conn, logger, shopID, ev)
		case protocol.EventTradeDone:
			logger.Printf("TRADE_DONE shop=%v result=%v", ev["shop_id"], ev["result"])
		case protocol.EventMessage:
			logger.Printf("MSG %v", ev["text"])
		}
	}
}

// handleWindow clicks the result slot of the first recipe, offering exactly
// the required inputs.
func handleWindow(conn *websocket.Conn, logger *log.Logger, shopID string, ev protocol.Event) {
	recipes, _ := ev["recipes"].([]interface{})
	if len(recipes) == 0 {
		logger.Printf("OPEN_WINDOW title=%v (no recipes)", ev["title"])
		return
	}
	first, _ := recipes[0].(map[string]interface{})
	logger.Printf("OPEN_WINDOW title=%v recipes=%d", ev["title"], len(recipes))

	click := protocol.ClickMsg{
		Type:      protocol.TypeClick,
		ShopID:    shopID,
		RawSlot:   2,
		Action:    protocol.ClickActionNormal,
		LeftClick: true,
		Slots: [3]*protocol.ItemStack{
			decodeStack(first["item1"]),
			decodeStack(first["item2"]),
			decodeStack(first["result"]),
		},
	}
	_ = conn.WriteJSON(click)
}

func decodeStack(v interface{}) *protocol.ItemStack {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	itemType, _ := m["item"].(string)
	amount, _ := m["amount"].(float64)
	if itemType == "" || amount <= 0 {
		return nil
	}
	s := &protocol.ItemStack{Item: itemType, Amount: int(amount)}
	if meta, ok := m["meta"].(map[string]interface{}); ok {
		s.Meta = map[string]string{}
		for k, mv := range meta {
			if sv, ok := mv.(string); ok {
				s.Meta[k] = sv
			}
		}
	}
	return s
}
