// Package audio provides WAV container plumbing and the deterministic tone
// fallback encoder used when real speech synthesis is unavailable.
package audio

import (
	"bytes"
	"encoding/binary"
)

// MimeWAV is the mime type of the containers this package produces.
const MimeWAV = "audio/wav"

// WrapPCM wraps raw 16-bit little-endian mono PCM samples in a minimal WAV
// container at the given sample rate.
func WrapPCM(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm))) //nolint:errcheck
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))            //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(1))             //nolint:errcheck // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))      //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))    //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))      //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))    //nolint:errcheck
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample)) //nolint:errcheck

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm))) //nolint:errcheck
	buf.Write(pcm)
	return buf.Bytes()
}

// DetectContainer sniffs a recognized audio container signature and returns
// its mime type, or "" when the payload looks like raw headerless PCM.
func DetectContainer(b []byte) string {
	if len(b) < 4 {
		return ""
	}
	switch {
	case bytes.HasPrefix(b, []byte("RIFF")):
		return MimeWAV
	case bytes.HasPrefix(b, []byte("OggS")):
		return "audio/ogg"
	case bytes.HasPrefix(b, []byte("ID3")):
		return "audio/mpeg"
	case b[0] == 0xFF && (b[1]&0xE0) == 0xE0:
		return "audio/mpeg" // raw MP3 frame sync
	case bytes.HasPrefix(b, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "audio/webm"
	default:
		return ""
	}
}
