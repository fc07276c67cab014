package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	clickSchema := compile("click.schema.json")
	chatSchema := compile("chat.schema.json")
	openShopSchema := compile("open_shop.schema.json")
	renameSchema := compile("rename.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"alice"
	}`), &hello)
	validate(helloSchema, hello)

	var click any
	_ = json.Unmarshal([]byte(`{
	  "type":"CLICK",
	  "shop_id":"SK000001",
	  "raw_slot":2,
	  "action":"NORMAL",
	  "left_click":true,
	  "shift_click":false,
	  "slots":[
	    {"item":"EMERALD","amount":5},
	    null,
	    {"item":"BREAD","amount":1}
	  ],
	  "cursor":{"item":"BREAD","amount":3}
	}`), &click)
	validate(clickSchema, click)

	var chat any
	_ = json.Unmarshal([]byte(`{"type":"CHAT","message":"Fancy Shop"}`), &chat)
	validate(chatSchema, chat)

	var openShop any
	_ = json.Unmarshal([]byte(`{"type":"OPEN_SHOP","shop_id":"SK000001"}`), &openShop)
	validate(openShopSchema, openShop)

	var rename any
	_ = json.Unmarshal([]byte(`{"type":"RENAME","shop_id":"SK000001"}`), &rename)
	validate(renameSchema, rename)
}

func TestClickSchema_RejectsBadAction(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "click.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var click any
	_ = json.Unmarshal([]byte(`{
	  "type":"CLICK",
	  "shop_id":"SK000001",
	  "raw_slot":2,
	  "action":"TELEPORT",
	  "slots":[null,null,null]
	}`), &click)
	if err := s.Validate(click); err == nil {
		t.Fatalf("unknown click action should fail validation")
	}
}
