package compat

import "strings"

// Profile describes the quirks of the host engine version the server is
// embedded in. The integration layer supplies it; the trading core only
// reads flags and never inspects version strings itself.
type Profile struct {
	EngineVersion string

	// StackedInputUnderConsume marks engine versions that may remove fewer
	// items than the recipe requires when both input slots hold mutually
	// stackable items. Trades that could hit the bug are rejected.
	StackedInputUnderConsume bool
}

// ForEngineVersion maps a host engine version id to its quirk profile.
// Unknown versions are assumed quirk-free.
func ForEngineVersion(version string) Profile {
	p := Profile{EngineVersion: version}
	if strings.HasPrefix(version, "1_8_") {
		p.StackedInputUnderConsume = true
	}
	return p
}
