package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ShopDef is one admin shop as declared in shops.yaml.
type ShopDef struct {
	Name     string `yaml:"name"`
	Position string `yaml:"position"`

	// Optional extra permission required to trade with this shop.
	TradePermission string `yaml:"trade_permission"`

	Recipes []RecipeDef `yaml:"recipes"`
}

// RecipeDef mirrors a trading recipe row: one or two inputs and a result.
type RecipeDef struct {
	Item1  StackDef  `yaml:"item1"`
	Item2  *StackDef `yaml:"item2"`
	Result StackDef  `yaml:"result"`
}

type StackDef struct {
	Item   string            `yaml:"item"`
	Amount int               `yaml:"amount"`
	Meta   map[string]string `yaml:"meta"`
}

// LoadShops reads the admin shop roster. A missing path is not an error so
// servers can come up empty and be populated at runtime.
func LoadShops(path string) ([]ShopDef, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var doc struct {
		Shops []ShopDef `yaml:"shops"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("shops.yaml: %w", err)
	}
	for i, s := range doc.Shops {
		if err := validateShop(s); err != nil {
			return nil, fmt.Errorf("shops.yaml: shop %d: %w", i, err)
		}
	}
	return doc.Shops, nil
}

func validateShop(s ShopDef) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("empty name")
	}
	for i, r := range s.Recipes {
		if r.Item1.Item == "" || r.Item1.Amount <= 0 {
			return fmt.Errorf("recipe %d: bad item1", i)
		}
		if r.Result.Item == "" || r.Result.Amount <= 0 {
			return fmt.Errorf("recipe %d: bad result", i)
		}
		if r.Item2 != nil && (r.Item2.Item == "" || r.Item2.Amount <= 0) {
			return fmt.Errorf("recipe %d: bad item2", i)
		}
	}
	return nil
}
