package naming

import (
	"log"
	"regexp"

	"shopcraft.gg/internal/config"
	"shopcraft.gg/internal/sim/shopkeeper"
)

// SettingsPolicy validates names against the configured bounds and applies
// them. A single "-" clears the name back to the default.
type SettingsPolicy struct {
	cfg     config.Settings
	pattern *regexp.Regexp
	log     *log.Logger
}

func NewSettingsPolicy(cfg config.Settings, logger *log.Logger) (*SettingsPolicy, error) {
	re, err := regexp.Compile(cfg.NamePattern)
	if err != nil {
		return nil, err
	}
	return &SettingsPolicy{cfg: cfg, pattern: re, log: logger}, nil
}

func (p *SettingsPolicy) RequestNameChange(player shopkeeper.Player, s shopkeeper.Shopkeeper, newName string) {
	if newName == "-" {
		s.SetName("")
		player.SendMessage(p.cfg.MsgNameSet)
		return
	}
	if !p.Valid(newName) {
		if p.log != nil && p.cfg.Debug {
			p.log.Printf("naming: rejected name %q from %s for %s", newName, player.Name(), s.ID())
		}
		player.SendMessage(p.cfg.MsgNameInvalid)
		return
	}
	s.SetName(newName)
	player.SendMessage(p.cfg.MsgNameSet)
}

func (p *SettingsPolicy) Valid(name string) bool {
	if len(name) < p.cfg.NameMinLen || len(name) > p.cfg.NameMaxLen {
		return false
	}
	return p.pattern.MatchString(name)
}
