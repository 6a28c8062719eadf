// Package match implements the fuzzy trail-name matching shared by the
// review scraper, the context builder and the orchestrator's target
// resolution.
package match

import "strings"

var nameSuffixes = []string{"trail", "trailhead", "hike", "path", "loop"}

// significantTokens strips common trail suffixes, drops punctuation and
// keeps tokens longer than three characters.
func significantTokens(name string) []string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	s = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, s)

	var tokens []string
	for _, tok := range strings.Fields(s) {
		if len(tok) <= 3 || isSuffix(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isSuffix(tok string) bool {
	for _, suffix := range nameSuffixes {
		if tok == suffix {
			return true
		}
	}
	return false
}

// singular trims a trailing "s" for plural-insensitive comparison.
func singular(tok string) string {
	if len(tok) > 3 && strings.HasSuffix(tok, "s") {
		return tok[:len(tok)-1]
	}
	return tok
}

func tokenEqual(a, b string) bool {
	return a == b || singular(a) == singular(b)
}

// Names reports whether two trail names refer to the same trail: every
// significant token on one side must have a plural-insensitive equal on the
// other side. This is stricter than substring containment so "Vernal Falls"
// does not match "Bridalveil Falls" on the shared word.
func Names(a, b string) bool {
	ta, tb := significantTokens(a), significantTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	return covered(ta, tb) || covered(tb, ta)
}

// covered reports whether every token in sub has an equal in super.
func covered(sub, super []string) bool {
	for _, st := range sub {
		found := false
		for _, pt := range super {
			if tokenEqual(st, pt) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
