// Package voices provides the static registry of synthesis voice identities,
// partitioned by gender tag.
package voices

import (
	"math/rand"

	"github.com/jonathan/podcast-studio/internal/types"
)

// Prebuilt voice pools. The names are the concrete identities the speech
// capability accepts; the descriptions are not needed at runtime.
var (
	femaleVoices = []string{
		"Zephyr", "Kore", "Leda", "Aoede",
		"Callirrhoe", "Autonoe", "Umbriel",
		"Despina", "Erinome", "Laomedeia", "Achernar",
		"Pulcherrima", "Achird", "Vindemiatrix",
		"Sadachbia", "Sulafat",
	}
	maleVoices = []string{
		"Puck", "Charon", "Fenrir", "Orus",
		"Enceladus", "Iapetus", "Algieba", "Algenib",
		"Rasalgethi", "Alnilam", "Schedar", "Gacrux",
		"Zubenelgenubi", "Sadaltager",
	}
)

// PickFunc selects one index from a pool of size n. It is pluggable so
// tests can make voice assignment deterministic.
type PickFunc func(n int) int

// RandomPick is the default draw function.
func RandomPick(n int) int {
	return rand.Intn(n)
}

// Pool returns the voice identities for a gender tag ("M" or "F"). Any
// other tag returns the combined pool.
func Pool(gender string) []string {
	switch gender {
	case "M":
		return maleVoices
	case "F":
		return femaleVoices
	default:
		combined := make([]string, 0, len(femaleVoices)+len(maleVoices))
		combined = append(combined, femaleVoices...)
		combined = append(combined, maleVoices...)
		return combined
	}
}

// GenderWord maps a gender tag to the word used in speaker instructions.
func GenderWord(gender string) string {
	switch gender {
	case "M":
		return "male"
	case "F":
		return "female"
	default:
		return "unspecified gender"
	}
}

// Assign draws one voice identity per speaker slot, capped at the synthesis
// stage's speaker limit. Missing gender slots draw from the combined pool.
// The result is fixed at job creation and must never be re-drawn.
func Assign(genders []string, speakerCount int, pick PickFunc) []string {
	if pick == nil {
		pick = RandomPick
	}
	n := speakerCount
	if n > types.MaxSynthesisSpeakers {
		n = types.MaxSynthesisSpeakers
	}
	if n < 1 {
		n = 1
	}
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		gender := ""
		if i < len(genders) {
			gender = genders[i]
		}
		pool := Pool(gender)
		names = append(names, pool[pick(len(pool))])
	}
	return names
}
