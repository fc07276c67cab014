package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings is the full configuration surface of the shop server, loaded
// from settings.yaml. Zero values fall back to defaults in applyDefaults.
type Settings struct {
	Debug bool `yaml:"debug"`

	EngineVersion string `yaml:"engine_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	// Trading.
	UseStrictItemComparison bool `yaml:"use_strict_item_comparison"`
	TaxRate                 int  `yaml:"tax_rate"`
	TaxRoundUp              bool `yaml:"tax_round_up"`

	// Permissions.
	TradePermission string `yaml:"trade_permission"`

	// Naming.
	NameMinLen  int    `yaml:"name_min_len"`
	NameMaxLen  int    `yaml:"name_max_len"`
	NamePattern string `yaml:"name_pattern"`

	// Messages.
	MsgTradingTitlePrefix     string `yaml:"msg_trading_title_prefix"`
	MsgTradingTitleDefault    string `yaml:"msg_trading_title_default"`
	MsgMissingTradePerm       string `yaml:"msg_missing_trade_perm"`
	MsgMissingCustomTradePerm string `yaml:"msg_missing_custom_trade_perm"`
	MsgNameSet                string `yaml:"msg_name_set"`
	MsgNameInvalid            string `yaml:"msg_name_invalid"`
}

func Load(path string) (Settings, error) {
	s := Defaults()
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("settings.yaml: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("settings.yaml: %w", err)
	}
	return s, nil
}

func Defaults() Settings {
	s := Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.TickRateHz <= 0 {
		s.TickRateHz = 20
	}
	if s.TradePermission == "" {
		s.TradePermission = "shop.trade"
	}
	if s.NameMinLen <= 0 {
		s.NameMinLen = 1
	}
	if s.NameMaxLen <= 0 {
		s.NameMaxLen = 32
	}
	if s.NamePattern == "" {
		s.NamePattern = `^[A-Za-z0-9 _-]+$`
	}
	if s.MsgTradingTitlePrefix == "" {
		s.MsgTradingTitlePrefix = "Shop: "
	}
	if s.MsgTradingTitleDefault == "" {
		s.MsgTradingTitleDefault = "Shopkeeper"
	}
	if s.MsgMissingTradePerm == "" {
		s.MsgMissingTradePerm = "You do not have permission to trade with shopkeepers."
	}
	if s.MsgMissingCustomTradePerm == "" {
		s.MsgMissingCustomTradePerm = "You do not have permission to trade with this shop."
	}
	if s.MsgNameSet == "" {
		s.MsgNameSet = "Shop name set."
	}
	if s.MsgNameInvalid == "" {
		s.MsgNameInvalid = "That name is not allowed."
	}
}

func (s *Settings) Validate() error {
	if s.TaxRate < 0 || s.TaxRate > 100 {
		return fmt.Errorf("tax_rate must be in 0..100, got %d", s.TaxRate)
	}
	if s.NameMinLen > s.NameMaxLen {
		return fmt.Errorf("name_min_len %d exceeds name_max_len %d", s.NameMinLen, s.NameMaxLen)
	}
	return nil
}
