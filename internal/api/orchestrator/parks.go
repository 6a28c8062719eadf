package orchestrator

import (
	"strings"
)

// ParkInfo is one row of the supported-parks table.
type ParkInfo struct {
	Code string
	Name string
}

// SupportedParks is the closed set of parks the concierge serves. Codes are
// the registry's canonical short keys.
var SupportedParks = []ParkInfo{
	{"yose", "Yosemite National Park"},
	{"zion", "Zion National Park"},
	{"grca", "Grand Canyon National Park"},
	{"brca", "Bryce Canyon National Park"},
	{"glac", "Glacier National Park"},
	{"glba", "Glacier Bay National Park"},
	{"grte", "Grand Teton National Park"},
}

// parkAliases resolves names the first-word rule cannot: "glacier" and
// "grand" are shared across parks, so these mappings win over it.
var parkAliases = map[string]string{
	"glacier":      "glac",
	"glacier bay":  "glba",
	"teton":        "grte",
	"grand teton":  "grte",
	"tetons":       "grte",
	"bryce":        "brca",
	"grand canyon": "grca",
}

// nameToCode is built once from the table: canonical codes, full names with
// "national park(s)" stripped, unique first words, then aliases on top.
var nameToCode = buildNameToCode()

func buildNameToCode() map[string]string {
	m := map[string]string{}

	// First words, only when unique across the table.
	firstWordCount := map[string]int{}
	for _, p := range SupportedParks {
		firstWordCount[strings.ToLower(strings.Fields(p.Name)[0])]++
	}
	for _, p := range SupportedParks {
		first := strings.ToLower(strings.Fields(p.Name)[0])
		if firstWordCount[first] == 1 {
			m[first] = p.Code
		}
	}

	for _, p := range SupportedParks {
		m[p.Code] = p.Code
		full := strings.ToLower(p.Name)
		m[full] = p.Code
		m[stripNationalPark(full)] = p.Code
	}

	// Aliases win over everything derived above.
	for alias, code := range parkAliases {
		m[alias] = code
	}
	return m
}

func stripNationalPark(name string) string {
	name = strings.ReplaceAll(name, "national parks", "")
	name = strings.ReplaceAll(name, "national park", "")
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeParkCode maps any accepted spelling of a supported park onto its
// canonical code. Unknown input returns the empty string.
func NormalizeParkCode(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if code, ok := nameToCode[key]; ok {
		return code
	}
	if code, ok := nameToCode[stripNationalPark(key)]; ok {
		return code
	}
	return ""
}

// IsSupported reports whether code is a canonical supported park code.
func IsSupported(code string) bool {
	for _, p := range SupportedParks {
		if p.Code == code {
			return true
		}
	}
	return false
}

// parkDisplayName returns the full name for a canonical code.
func parkDisplayName(code string) string {
	for _, p := range SupportedParks {
		if p.Code == code {
			return p.Name
		}
	}
	return code
}
