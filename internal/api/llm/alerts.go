package llm

import (
	"strings"

	"github.com/trailwise-ai/trailwise/internal/types"
)

var trailStopWords = map[string]bool{
	"trail": true, "trails": true, "trailhead": true, "hike": true,
	"path": true, "the": true, "and": true, "to": true, "of": true,
	"at": true, "a": true,
}

// normalizeAlertText lowercases text, drops apostrophes so "Angel's"
// equals "Angels", and folds remaining punctuation to spaces.
func normalizeAlertText(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, s)
}

// significantTokens splits a trail name into lowercase tokens longer than
// two characters, minus stop-words and punctuation.
func significantTokens(name string) []string {
	cleaned := normalizeAlertText(name)

	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 2 || trailStopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// alertMatchesTrail reports whether an alert concerns a trail: either the
// trail's full core name appears in the alert text, or any adjacent token
// bigram does.
func alertMatchesTrail(alert types.Alert, trailName string) bool {
	tokens := significantTokens(trailName)
	if len(tokens) == 0 {
		return false
	}

	haystack := normalizeAlertText(alert.Title + " " + alert.Description)
	haystack = " " + strings.Join(strings.Fields(haystack), " ") + " "

	if strings.Contains(haystack, " "+strings.Join(tokens, " ")+" ") {
		return true
	}
	for i := 0; i+1 < len(tokens); i++ {
		if strings.Contains(haystack, " "+tokens[i]+" "+tokens[i+1]+" ") {
			return true
		}
	}
	// Single-token names match on that token alone.
	if len(tokens) == 1 {
		return strings.Contains(haystack, " "+tokens[0]+" ")
	}
	return false
}

// MatchingAlerts returns the alerts that concern the named trail.
func MatchingAlerts(alerts []types.Alert, trailName string) []types.Alert {
	var matched []types.Alert
	for _, a := range alerts {
		if alertMatchesTrail(a, trailName) {
			matched = append(matched, a)
		}
	}
	return matched
}
