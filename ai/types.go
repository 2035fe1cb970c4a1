package ai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	numberPattern = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)
)

// CleanJSON strips markdown code fences and surrounding prose from a model
// response and repairs unquoted keys. It returns the outermost object, or the
// trimmed input when no object is present.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if m := objectPattern.FindString(s); m != "" {
		s = m
	}
	return repairJSON(s)
}

// ParseScore extracts the first number of a model response.
func ParseScore(s string) (float64, error) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("%w: %q", ErrNoScore, s)
	}
	return strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
}

// StringList coerces a decoded JSON value into a list of strings.
// Scalars become a single-element list; nil and empty strings are dropped.
func StringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{strings.TrimSpace(t)}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, StringList(item)...)
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
