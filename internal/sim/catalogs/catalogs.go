package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Catalogs holds the static item definitions the shop server trades in.
// Loaded once at startup; read-only afterwards.
type Catalogs struct {
	Items ItemCatalog
}

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
	DefsDigest    string
}

type ItemDef struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"` // "MATERIAL","TOOL","CURRENCY","FOOD"
	MaxStack int    `json:"max_stack,omitempty"`
}

const defaultMaxStack = 64

// MaxStack returns the stack limit for an item type. Unknown items get the
// engine default so the cursor-capacity guard stays aligned with the host
// engine's behavior for unregistered items.
func (c *ItemCatalog) MaxStack(itemType string) int {
	if c != nil {
		if d, ok := c.Defs[itemType]; ok && d.MaxStack > 0 {
			return d.MaxStack
		}
	}
	return defaultMaxStack
}

func Load(path string) (*Catalogs, error) {
	var c Catalogs
	if err := loadItems(path, &c.Items); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		if d.MaxStack < 0 {
			return fmt.Errorf("items.json: %s: negative max_stack", d.ID)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}
