package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadShops(t *testing.T) {
	p := filepath.Join(t.TempDir(), "shops.yaml")
	body := `
shops:
  - name: Baker
    position: "12,64,-3"
    recipes:
      - item1: {item: EMERALD, amount: 5}
        result: {item: BREAD, amount: 1}
      - item1: {item: EMERALD, amount: 5}
        item2: {item: EMERALD, amount: 5}
        result: {item: CAKE, amount: 1}
  - name: Armory
    trade_permission: shop.trade.armory
    recipes:
      - item1: {item: DIAMOND, amount: 3}
        result: {item: DIAMOND_SWORD, amount: 1, meta: {enchant: "sharpness:1"}}
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	shops, err := LoadShops(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(shops) != 2 {
		t.Fatalf("shops = %d, want 2", len(shops))
	}
	if shops[0].Name != "Baker" || len(shops[0].Recipes) != 2 {
		t.Fatalf("baker = %+v", shops[0])
	}
	if shops[0].Recipes[1].Item2 == nil || shops[0].Recipes[1].Item2.Amount != 5 {
		t.Fatalf("two-input recipe not parsed: %+v", shops[0].Recipes[1])
	}
	if shops[1].TradePermission != "shop.trade.armory" {
		t.Fatalf("armory perm = %q", shops[1].TradePermission)
	}
	if shops[1].Recipes[0].Result.Meta["enchant"] != "sharpness:1" {
		t.Fatalf("meta not parsed: %+v", shops[1].Recipes[0].Result)
	}
}

func TestLoadShopsMissingFileIsEmpty(t *testing.T) {
	shops, err := LoadShops(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil || shops != nil {
		t.Fatalf("missing file: shops=%v err=%v", shops, err)
	}
}

func TestLoadShopsRejectsBadRecipe(t *testing.T) {
	p := filepath.Join(t.TempDir(), "shops.yaml")
	body := `
shops:
  - name: Broken
    recipes:
      - item1: {item: EMERALD, amount: 0}
        result: {item: BREAD, amount: 1}
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadShops(p); err == nil {
		t.Fatalf("expected zero-amount item1 to fail")
	}
}
