package ws

import (
	"testing"

	"shopcraft.gg/internal/protocol"
)

func TestDecodeAction(t *testing.T) {
	s := NewServer(nil, "", nil, nil)

	env, ok := s.decodeAction("P000001", []byte(`{"type":"OPEN_SHOP","shop_id":"SK000001"}`))
	if !ok || env.Open == nil || env.Open.ShopID != "SK000001" {
		t.Fatalf("open: ok=%v env=%+v", ok, env)
	}
	if env.PlayerID != "P000001" {
		t.Fatalf("player id = %q", env.PlayerID)
	}

	env, ok = s.decodeAction("P000001", []byte(`{"type":"CLICK","shop_id":"SK000001","raw_slot":2,"action":"NORMAL","left_click":true,"slots":[{"item":"EMERALD","amount":5},null,{"item":"BREAD","amount":1}]}`))
	if !ok || env.Click == nil || env.Click.RawSlot != 2 {
		t.Fatalf("click: ok=%v env=%+v", ok, env)
	}
	if env.Click.Action != protocol.ClickActionNormal {
		t.Fatalf("action = %q", env.Click.Action)
	}

	env, ok = s.decodeAction("P000001", []byte(`{"type":"CHAT","message":"hello"}`))
	if !ok || env.Chat == nil || env.Chat.Message != "hello" {
		t.Fatalf("chat: ok=%v env=%+v", ok, env)
	}

	env, ok = s.decodeAction("P000001", []byte(`{"type":"RENAME","shop_id":"SK000001"}`))
	if !ok || env.Rename == nil {
		t.Fatalf("rename: ok=%v env=%+v", ok, env)
	}
}

func TestDecodeActionRejectsMalformed(t *testing.T) {
	s := NewServer(nil, "", nil, nil)

	cases := []string{
		`not json`,
		`{"type":"HELLO","protocol_version":"1.0","player_name":"x"}`,
		`{"type":"OPEN_SHOP"}`,
		`{"type":"CHAT","message":""}`,
		`{"type":"UNKNOWN"}`,
	}
	for _, c := range cases {
		if _, ok := s.decodeAction("P000001", []byte(c)); ok {
			t.Fatalf("accepted %s", c)
		}
	}
}
