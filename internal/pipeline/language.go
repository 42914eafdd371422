package pipeline

import "strings"

// languageMarkers are phrases that count as the user explicitly naming an
// output language, in which case the language setting is not enforced on
// top of the raw input. A deliberately simple heuristic: the list is
// incomplete and will miss some phrasings; swapping it for a detection
// call only requires replacing MentionsLanguage.
var languageMarkers = []string{
	"in english", "in spanish", "in french", "in german", "in italian",
	"in portuguese", "in dutch", "in japanese", "in korean", "in chinese",
	"in mandarin", "in hindi", "in russian", "in arabic", "in turkish",
	"en español", "en français", "auf deutsch", "in italiano",
	"em português", "по-русски", "日本語で", "한국어로", "用中文",
}

// MentionsLanguage reports whether the raw input already names an output
// language explicitly.
func MentionsLanguage(input string) bool {
	lower := strings.ToLower(input)
	for _, marker := range languageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
