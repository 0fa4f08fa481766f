package domain

import "strings"

// Mode separates real money from sandbox traffic. A ledger process is
// pinned to exactly one mode at startup and every monetary read and
// write checks provider references against it.
type Mode string

const (
	ModeTest Mode = "TEST"
	ModeLive Mode = "LIVE"
)

// ClassifyMode derives the mode from a provider reference. Provider
// references are underscore-delimited ("cs_test_a1B2c3"); a reference
// is test money only when one whole token equals "test". Anything
// unrecognized is classified live, so a mistake can never leak live
// money into the sandbox view.
func ClassifyMode(providerRef string) Mode {
	for _, token := range strings.Split(providerRef, "_") {
		if strings.EqualFold(token, "test") {
			return ModeTest
		}
	}
	return ModeLive
}

// MatchesMode reports whether a provider reference belongs to the
// given mode.
func MatchesMode(providerRef string, mode Mode) bool {
	return ClassifyMode(providerRef) == mode
}

// ParseMode reads a configured mode name ("test" or "live").
func ParseMode(s string) (Mode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ModeTest):
		return ModeTest, true
	case string(ModeLive):
		return ModeLive, true
	default:
		return "", false
	}
}
