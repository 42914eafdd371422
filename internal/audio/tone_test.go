package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTonesProducesPlayableWAV(t *testing.T) {
	wav := EncodeTones("Speaker 1: Hello there.\nSpeaker 2: Hi.", []string{"F", "M"})

	require.Greater(t, len(wav), 44)
	assert.Equal(t, MimeWAV, DetectContainer(wav))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))

	dataLen := binary.LittleEndian.Uint32(wav[40:44])
	assert.Greater(t, dataLen, uint32(0))
	assert.Equal(t, int(dataLen), len(wav)-44)
}

func TestEncodeTonesLongerTranscriptLongerAudio(t *testing.T) {
	short := EncodeTones("Hi.", nil)
	long := EncodeTones("One line.\nAnother line here.\nAnd a third, somewhat longer line.", nil)
	assert.Greater(t, len(long), len(short))
}

func TestEncodeTonesLineDurationIsClamped(t *testing.T) {
	// A very long line must not exceed the per-line ceiling plus the gap.
	line := make([]byte, 2000)
	for i := range line {
		line[i] = 'a'
	}
	wav := EncodeTones(string(line), nil)

	maxSamples := int((maxLineDuration + gapDuration) * toneSampleRate)
	gotSamples := (len(wav) - 44) / 2
	assert.LessOrEqual(t, gotSamples, maxSamples)
}

func TestEncodeTonesEmptyTranscript(t *testing.T) {
	wav := EncodeTones("", nil)
	// Still a valid container, just with no samples.
	assert.Equal(t, MimeWAV, DetectContainer(wav))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestToneFrequencyByGenderAndSpeaker(t *testing.T) {
	assert.Equal(t, 220.0, toneFrequency(0, []string{"F", "M"}))
	assert.Equal(t, 98.0, toneFrequency(1, []string{"F", "M"}))
	assert.Equal(t, 130.0, toneFrequency(0, []string{"M"}))
	assert.Equal(t, 196.0, toneFrequency(1, nil))
	// Unknown gender tags fall back to the neutral band.
	assert.Equal(t, 165.0, toneFrequency(0, []string{"X"}))
}

func TestSpeakerForLine(t *testing.T) {
	assert.Equal(t, 0, speakerForLine("Speaker 1: hello"))
	assert.Equal(t, 1, speakerForLine("Speaker 2: hello"))
	assert.Equal(t, 1, speakerForLine("speaker 2: lower case"))
	assert.Equal(t, 0, speakerForLine("no prefix at all"))
}
