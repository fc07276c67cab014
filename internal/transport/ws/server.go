package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"shopcraft.gg/internal/protocol"
	"shopcraft.gg/internal/sim/market"
)

type Server struct {
	market      *market.Market
	itemsDigest string
	perms       map[string]bool
	log         *log.Logger

	upgrader websocket.Upgrader
}

// NewServer wires websocket clients to the market tick loop. Every player
// joining through this transport is granted defaultPerms.
func NewServer(m *market.Market, itemsDigest string, defaultPerms []string, logger *log.Logger) *Server {
	perms := make(map[string]bool, len(defaultPerms))
	for _, p := range defaultPerms {
		perms[p] = true
	}
	s := &Server{
		market:      m,
		itemsDigest: itemsDigest,
		perms:       perms,
		log:         logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out := s.handshake(conn)
		if playerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-out:
					if !ok {
						return
					}
					b, err := json.Marshal(ev)
					if err != nil {
						continue
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			env, ok := s.decodeAction(playerID, msg)
			if !ok {
				continue
			}
			s.market.Inbox() <- env
		}

		// Cleanup.
		s.market.Leave() <- playerID
	}
}

// decodeAction turns one raw client frame into an envelope for the tick
// loop. Unknown or malformed frames are dropped.
func (s *Server) decodeAction(playerID string, msg []byte) (market.ActionEnvelope, bool) {
	env := market.ActionEnvelope{PlayerID: playerID}

	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return env, false
	}
	switch base.Type {
	case protocol.TypeOpenShop:
		var open protocol.OpenShopMsg
		if json.Unmarshal(msg, &open) != nil || open.ShopID == "" {
			return env, false
		}
		env.Open = &open
	case protocol.TypeClick:
		var click protocol.ClickMsg
		if json.Unmarshal(msg, &click) != nil || click.ShopID == "" {
			return env, false
		}
		env.Click = &click
	case protocol.TypeChat:
		var chat protocol.ChatMsg
		if json.Unmarshal(msg, &chat) != nil || chat.Message == "" {
			return env, false
		}
		env.Chat = &chat
	case protocol.TypeRename:
		var rename protocol.RenameMsg
		if json.Unmarshal(msg, &rename) != nil || rename.ShopID == "" {
			return env, false
		}
		env.Rename = &rename
	default:
		return env, false
	}
	return env, true
}

func (s *Server) handshake(conn *websocket.Conn) (playerID string, out chan protocol.Event) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "player"
	}

	out = make(chan protocol.Event, 64)

	respCh := make(chan market.JoinResponse, 1)
	s.market.Join() <- market.JoinRequest{
		Name:  hello.PlayerName,
		Perms: s.perms,
		Out:   out,
		Resp:  respCh,
	}
	resp := <-respCh

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        resp.PlayerID,
		ItemsDigest:     s.itemsDigest,
		Shops:           resp.Shops,
	}
	if err := writeJSON(conn, welcome); err != nil {
		s.market.Leave() <- resp.PlayerID
		return "", nil
	}

	return resp.PlayerID, out
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
