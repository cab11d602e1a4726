package datatypes

import (
	"sort"
	"strings"
)

// consoleCodes is the fixed set of canonical console codes accepted by the
// marketplace. Loaded once at process start; never mutated.
var consoleCodes = map[string]struct{}{
	"nes":  {},
	"snes": {},
	"gb":   {},
	"gbc":  {},
	"gba":  {},
	"md":   {},
	"n64":  {},
	"ps":   {},
	"ps2":  {},
	"dc":   {},
	"pc":   {},
}

// consoleAliases maps common long-form console spellings to canonical codes.
// Like consoleCodes, it is immutable after init.
var consoleAliases = map[string]string{
	"famicom":                           "nes",
	"nintendo":                          "nes",
	"nintendo entertainment system":     "nes",
	"super nintendo entertainment system": "snes",
	"super nintendo":                    "snes",
	"super famicom":                     "snes",
	"gameboy":                           "gb",
	"game boy":                          "gb",
	"gameboy color":                     "gbc",
	"game boy color":                    "gbc",
	"gameboycolor":                      "gbc",
	"gameboy advance":                   "gba",
	"game boy advance":                  "gba",
	"gameboyadvance":                    "gba",
	"mega drive":                        "md",
	"megadrive":                         "md",
	"sega mega drive":                   "md",
	"sega megadrive":                    "md",
	"segamegadrive":                     "md",
	"nintendo64":                        "n64",
	"nintendo 64":                       "n64",
	"ultra64":                           "n64",
	"ultra 64":                          "n64",
	"playstation":                       "ps",
	"play station":                      "ps",
	"playstation1":                      "ps",
	"playstation 1":                     "ps",
	"psx":                               "ps",
	"playstation2":                      "ps2",
	"play station2":                     "ps2",
	"play station 2":                    "ps2",
	"sega dreamcast":                    "dc",
	"segadreamcast":                     "dc",
	"sega dream cast":                   "dc",
	"dreamcast":                         "dc",
	"dream cast":                        "dc",
}

// CanonicalConsole resolves a user-supplied console name to its canonical
// code. Matching is case-insensitive and tolerates surrounding whitespace.
// Returns the code and true when the name is a known code or alias.
func CanonicalConsole(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))

	if code, ok := consoleAliases[n]; ok {
		return code, true
	}

	if _, ok := consoleCodes[n]; ok {
		return n, true
	}

	return "", false
}

// IsValidConsole checks whether a string is a canonical console code.
func IsValidConsole(code string) bool {
	_, ok := consoleCodes[code]

	return ok
}

// Consoles returns all canonical console codes, sorted for stable output
// (e.g. error messages listing supported consoles).
func Consoles() []string {
	codes := make([]string, 0, len(consoleCodes))
	for code := range consoleCodes {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}

// SupportedConsolesString returns all canonical codes as a comma-separated
// string, for use in client-facing error messages.
func SupportedConsolesString() string {
	return strings.Join(Consoles(), ", ")
}
