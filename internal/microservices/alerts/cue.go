package alerts

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// Cue parameters for the notification chime.
const (
	cueSampleRate = 22050
	cueFrequency  = 880.0
	cueDuration   = 150 * time.Millisecond
	cueVolume     = 0.3
)

// Cue renders the notification chime as a mono 16-bit PCM WAV file.
func Cue() []byte {
	samples := int(cueDuration.Seconds() * cueSampleRate)
	dataSize := samples * 2

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	// fmt chunk: PCM, mono, 16 bit
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(cueSampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(cueSampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for i := 0; i < samples; i++ {
		// linear fade-out so the tone does not click
		envelope := 1 - float64(i)/float64(samples)
		v := math.Sin(2*math.Pi*cueFrequency*float64(i)/cueSampleRate) * cueVolume * envelope
		_ = binary.Write(&buf, binary.LittleEndian, int16(v*math.MaxInt16))
	}
	return buf.Bytes()
}
