package extraction

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// DefaultLanguage is used when detection fails or is unreliable.
const DefaultLanguage = "fr"

// Detector maps text to an ISO 639-1 language code, or "" when unsure.
type Detector func(text string) string

// DetectLanguage reports the ISO 639-1 code of text, or "" when the
// detection is unreliable.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
