package audio

import (
	"encoding/binary"
	"math"
	"strings"
)

// Tone encoder parameters. Intentionally crude: the output only has to be
// playable, not pleasant.
const (
	toneSampleRate  = 16000
	toneAmplitude   = 0.32
	baseDuration    = 0.45
	perCharDuration = 0.03
	maxLineDuration = 4.0
	attackFraction  = 0.05
	releaseFraction = 0.08
	gapDuration     = 0.18
)

// baseToneHz maps a gender tag to base frequencies for the first two
// speaker slots.
var baseToneHz = map[string][2]float64{
	"M": {130, 98},
	"F": {220, 262},
	"":  {165, 196},
}

// EncodeTones renders a transcript as a sequence of sine tones, one per
// non-empty line, keyed by the line's speaker prefix and that speaker's
// gender tag. Returns a 16 kHz mono 16-bit WAV payload.
func EncodeTones(transcript string, genders []string) []byte {
	var samples []int16
	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		speaker := speakerForLine(line)
		freq := toneFrequency(speaker, genders)

		seconds := baseDuration + perCharDuration*float64(len(line))
		if seconds > maxLineDuration {
			seconds = maxLineDuration
		}
		samples = append(samples, renderTone(freq, seconds)...)
		samples = append(samples, make([]int16, int(gapDuration*toneSampleRate))...)
	}

	pcm := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(s))
	}
	return WrapPCM(pcm, toneSampleRate)
}

// speakerForLine infers the zero-based speaker slot from a literal
// "speaker N:" line prefix, defaulting to the first speaker.
func speakerForLine(line string) int {
	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, "speaker 2:") {
		return 1
	}
	return 0
}

func toneFrequency(speaker int, genders []string) float64 {
	if speaker >= 2 {
		speaker = 1
	}
	gender := ""
	if speaker < len(genders) {
		switch genders[speaker] {
		case "M", "F":
			gender = genders[speaker]
		}
	}
	return baseToneHz[gender][speaker]
}

// renderTone produces one sine tone with a linear attack/release envelope.
func renderTone(freq, seconds float64) []int16 {
	n := int(seconds * toneSampleRate)
	attack := int(float64(n) * attackFraction)
	release := int(float64(n) * releaseFraction)

	out := make([]int16, n)
	for i := range out {
		env := 1.0
		if attack > 0 && i < attack {
			env = float64(i) / float64(attack)
		} else if release > 0 && i >= n-release {
			env = float64(n-i) / float64(release)
		}
		v := toneAmplitude * env * math.Sin(2*math.Pi*freq*float64(i)/toneSampleRate)
		out[i] = int16(v * math.MaxInt16)
	}
	return out
}
