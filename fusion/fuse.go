package fusion

import (
	"strings"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/index"
)

// DedupKey returns the normalized key used to detect duplicate passages:
// the first n characters of text, trimmed and lowercased.
func DedupKey(text string, n int) string {
	r := []rune(text)
	if len(r) > n {
		r = r[:n]
	}
	return strings.ToLower(strings.TrimSpace(string(r)))
}

// Fuse concatenates the lists in order and keeps the first item for every
// dedup key. Passing the dense list first makes dense duplicates win.
func Fuse(prefixLen int, lists ...[]core.EvidenceItem) []core.EvidenceItem {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	seen := make(map[string]struct{}, total)
	out := make([]core.EvidenceItem, 0, total)
	for _, l := range lists {
		for _, item := range l {
			key := DedupKey(item.Text, prefixLen)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

func toEvidence(hits []index.Hit, origin core.Origin) []core.EvidenceItem {
	items := make([]core.EvidenceItem, len(hits))
	for i, h := range hits {
		items[i] = core.EvidenceItem{
			Text:       h.Text,
			Metadata:   h.Metadata,
			IndexScore: h.Score,
			Origin:     origin,
		}
	}
	return items
}
