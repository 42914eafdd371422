package voices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstPick always selects index 0, making assignment deterministic.
func firstPick(int) int { return 0 }

func TestPool(t *testing.T) {
	female := Pool("F")
	male := Pool("M")
	combined := Pool("")

	assert.Contains(t, female, "Kore")
	assert.Contains(t, male, "Puck")
	assert.NotContains(t, female, "Puck")
	assert.NotContains(t, male, "Kore")
	assert.Len(t, combined, len(female)+len(male))
}

func TestGenderWord(t *testing.T) {
	assert.Equal(t, "male", GenderWord("M"))
	assert.Equal(t, "female", GenderWord("F"))
	assert.Equal(t, "unspecified gender", GenderWord(""))
	assert.Equal(t, "unspecified gender", GenderWord("X"))
}

func TestAssignDrawsFromGenderPools(t *testing.T) {
	names := Assign([]string{"F", "M"}, 2, firstPick)
	require.Len(t, names, 2)
	assert.Equal(t, Pool("F")[0], names[0])
	assert.Equal(t, Pool("M")[0], names[1])
}

func TestAssignCapsAtSynthesisLimit(t *testing.T) {
	names := Assign([]string{"F", "M", "F", "M"}, 4, firstPick)
	assert.Len(t, names, 2)
}

func TestAssignCoercesZeroSpeakers(t *testing.T) {
	names := Assign(nil, 0, firstPick)
	require.Len(t, names, 1)
	assert.Equal(t, Pool("")[0], names[0])
}

func TestAssignMissingGenderUsesCombinedPool(t *testing.T) {
	names := Assign([]string{"F"}, 2, firstPick)
	require.Len(t, names, 2)
	assert.Equal(t, Pool("F")[0], names[0])
	assert.Equal(t, Pool("")[0], names[1])
}

func TestAssignDefaultPickStaysInPool(t *testing.T) {
	for i := 0; i < 50; i++ {
		names := Assign([]string{"M"}, 1, nil)
		require.Len(t, names, 1)
		assert.Contains(t, Pool("M"), names[0])
	}
}
