package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "Angels Landing Trail", "Angels Landing Trail", true},
		{"suffix dropped", "Angels Landing", "Angels Landing Trail", true},
		{"trailhead vs trail", "Watchman Trailhead", "Watchman Trail", true},
		{"plural insensitive", "The Narrows", "The Narrow Trail", true},
		{"apostrophes", "Angel's Landing", "Angels Landing", true},
		{"partial coverage one side", "Narrows", "The Narrows via Riverside Walk", true},
		{"shared word only", "Vernal Falls", "Bridalveil Falls", false},
		{"unrelated", "Mist Trail", "Emerald Pools", false},
		{"short tokens ignored", "Rim Trail", "The Rim", false},
		{"empty", "", "Mist Trail", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Names(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		})
	}
}

func TestSignificantTokens(t *testing.T) {
	assert.Equal(t, []string{"angels", "landing"}, significantTokens("Angel's Landing Trailhead"))
	assert.Empty(t, significantTokens("the big gap"))
	assert.Equal(t, []string{"narrows", "riverside", "walk"}, significantTokens("The Narrows via Riverside Walk"))
}
