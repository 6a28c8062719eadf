package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeParkCodeCanonicalAndFullNames(t *testing.T) {
	for _, p := range SupportedParks {
		assert.Equal(t, p.Code, NormalizeParkCode(p.Code), "code %s", p.Code)
		assert.Equal(t, p.Code, NormalizeParkCode(p.Name), "full name %s", p.Name)
		stripped := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(p.Name), "national park", ""))
		assert.Equal(t, p.Code, NormalizeParkCode(stripped), "stripped name %s", stripped)
	}
}

func TestNormalizeParkCodeAliasesWinOverFirstWord(t *testing.T) {
	// "glacier" is the first word of two parks; the alias pins it.
	assert.Equal(t, "glac", NormalizeParkCode("glacier"))
	assert.Equal(t, "glba", NormalizeParkCode("glacier bay"))
	assert.Equal(t, "grte", NormalizeParkCode("teton"))
	assert.Equal(t, "grte", NormalizeParkCode("grand teton"))
	assert.Equal(t, "grca", NormalizeParkCode("grand canyon"))
}

func TestNormalizeParkCodeUniqueFirstWords(t *testing.T) {
	assert.Equal(t, "yose", NormalizeParkCode("Yosemite"))
	assert.Equal(t, "zion", NormalizeParkCode("ZION"))
	assert.Equal(t, "brca", NormalizeParkCode("Bryce"))
	// Shared first word with no alias resolves to nothing.
	assert.Empty(t, NormalizeParkCode("grand"))
}

func TestNormalizeParkCodeUnknown(t *testing.T) {
	assert.Empty(t, NormalizeParkCode("Acadia"))
	assert.Empty(t, NormalizeParkCode("Acadia National Park"))
	assert.Empty(t, NormalizeParkCode(""))
	assert.Empty(t, NormalizeParkCode("  "))
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("zion"))
	assert.False(t, IsSupported("acad"))
	assert.False(t, IsSupported("Zion"))
}
