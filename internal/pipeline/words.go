package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTranscriptWords is the transcript budget: 90 seconds of speech at
// roughly 2.5 words per second.
const MaxTranscriptWords = 225

// countWords counts whitespace-separated words.
func countWords(s string) int {
	return len(strings.Fields(s))
}

// truncateWords cuts s after exactly n words, preserving the original text
// up to the end of the nth word.
func truncateWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	inWord := false
	words := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			words++
			if words == n {
				end := i
				for end < len(s) {
					next, nextSize := utf8.DecodeRuneInString(s[end:])
					if unicode.IsSpace(next) {
						break
					}
					end += nextSize
				}
				return s[:end]
			}
		}
		i += size
	}
	return s
}
