package extraction

import (
	"regexp"
	"strings"
)

var (
	amountPattern = regexp.MustCompile(`(\d{1,3}(?:[\s\p{Zs}.,]\d{3})*(?:[.,]\d+)?[\s\p{Zs}]*(?:€|euros?|dollars?|\$))`)
	datePattern   = regexp.MustCompile(`\b(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})\b`)
)

// ExtractAmounts returns currency-suffixed amounts in order of appearance.
func ExtractAmounts(text string) []string {
	if text == "" {
		return nil
	}
	flat := strings.NewReplacer("\u00a0", " ", "\n", " ").Replace(text)
	found := amountPattern.FindAllString(flat, -1)
	out := make([]string, 0, len(found))
	for _, m := range found {
		out = append(out, strings.TrimSpace(m))
	}
	return out
}

// ExtractDates returns distinct numeric dates such as 01/02/2023 or 1-2-23,
// in order of first appearance.
func ExtractDates(text string) []string {
	if text == "" {
		return nil
	}
	found := datePattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(found))
	out := make([]string, 0, len(found))
	for _, d := range found {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
