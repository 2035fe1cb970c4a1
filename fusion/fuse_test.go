package fusion

import (
	"strings"
	"testing"

	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
)

func items(origin core.Origin, texts ...string) []core.EvidenceItem {
	out := make([]core.EvidenceItem, len(texts))
	for i, t := range texts {
		out[i] = core.EvidenceItem{Text: t, Origin: origin}
	}
	return out
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "bonjour", DedupKey("  Bonjour  ", 120))
	assert.Equal(t, "éléph", DedupKey("Éléphant", 5))
	long := strings.Repeat("a", 130)
	assert.Len(t, DedupKey(long, 120), 120)
}

func TestFuse_DensePrecedence(t *testing.T) {
	dense := items(core.OriginDense, "Le contrat est signé.", "Clause de résiliation")
	lexical := items(core.OriginLexical, "le contrat est signé.", "Annexe financière")

	fused := Fuse(120, dense, lexical)

	assert.Len(t, fused, 3)
	assert.Equal(t, core.OriginDense, fused[0].Origin)
	assert.Equal(t, "Le contrat est signé.", fused[0].Text)
	assert.Equal(t, "Annexe financière", fused[2].Text)
}

func TestFuse_PrefixOnly(t *testing.T) {
	prefix := strings.Repeat("x", 120)
	fused := Fuse(120, items(core.OriginDense, prefix+" fin A", prefix+" fin B"))
	assert.Len(t, fused, 1)
	assert.Equal(t, prefix+" fin A", fused[0].Text)
}

func TestFuse_Idempotent(t *testing.T) {
	input := items(core.OriginDense, "Alpha", "alpha ", "Beta", "Gamma", "BETA")
	once := Fuse(120, input)
	twice := Fuse(120, once)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 3)
}

func TestFuse_Empty(t *testing.T) {
	assert.Empty(t, Fuse(120))
	assert.Empty(t, Fuse(120, nil, nil))
}
