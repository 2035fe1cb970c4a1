package ingestion

import (
	"strings"
	"unicode/utf8"
)

// Split cuts text into chunks of at most size runes, preferring paragraph
// and then word boundaries. Consecutive chunks share up to overlap runes of
// trailing words.
func Split(text string, size, overlap int) []string {
	if size < 1 {
		return nil
	}
	var chunks []string
	for _, para := range paragraphs(text) {
		chunks = append(chunks, splitWords(para, size, overlap)...)
	}
	return chunks
}

func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitWords(para string, size, overlap int) []string {
	if utf8.RuneCountInString(para) <= size {
		return []string{para}
	}

	var chunks []string
	var current []string
	length := 0
	flush := func() {
		chunks = append(chunks, strings.Join(current, " "))
		// Carry trailing words into the next chunk while they fit the overlap.
		kept, keptLen := 0, 0
		for i := len(current) - 1; i >= 0; i-- {
			n := utf8.RuneCountInString(current[i]) + 1
			if keptLen+n > overlap {
				break
			}
			keptLen += n
			kept++
		}
		current = append([]string(nil), current[len(current)-kept:]...)
		length = max(keptLen-1, 0)
	}

	for _, word := range strings.Fields(para) {
		for utf8.RuneCountInString(word) > size {
			if len(current) > 0 {
				flush()
				current, length = nil, 0
			}
			head, tail := splitRunes(word, size)
			chunks = append(chunks, head)
			word = tail
		}
		if word == "" {
			continue
		}
		n := utf8.RuneCountInString(word)
		if len(current) > 0 && length+1+n > size {
			flush()
			if length+1+n > size {
				current, length = nil, 0
			}
		}
		if len(current) > 0 {
			length++
		}
		current = append(current, word)
		length += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}
