package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "fr", DetectLanguage("Bonjour, je voudrais savoir quand la réunion du conseil d'administration aura lieu la semaine prochaine."))
	assert.Equal(t, "en", DetectLanguage("The quick brown fox jumps over the lazy dog while the children are playing in the garden behind the house."))
	assert.Equal(t, "", DetectLanguage("   "))
}

func TestCascade_LanguageFallback(t *testing.T) {
	c, err := NewCascade(WithDetector(func(string) string { return "" }))
	require.NoError(t, err)
	assert.Equal(t, "fr", c.Language("xyz"))

	c, err = NewCascade(WithDetector(func(string) string { return "" }), WithDefaultLanguage("en"))
	require.NoError(t, err)
	assert.Equal(t, "en", c.Language("xyz"))

	c, err = NewCascade(WithDetector(func(string) string { return "de" }))
	require.NoError(t, err)
	assert.Equal(t, "de", c.Language("xyz"))
}
