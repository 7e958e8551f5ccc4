package audioconv

import (
	"bytes"
	"encoding/binary"
	"math"
)

// EncodeLinear16 converts float32 PCM to little-endian 16-bit samples, the
// raw LINEAR16 payload cloud speech APIs take.
func EncodeLinear16(pcm []float32) []byte {
	out := make([]byte, 2*len(pcm))
	for i, s := range pcm {
		v := int16(clamp(float64(s), -1.0, 1.0) * math.MaxInt16)
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

// EncodeWAV wraps mono PCM in a minimal RIFF header so it can be handed to
// upload endpoints that want a complete file.
func EncodeWAV(pcm []float32, sampleRate int) []byte {
	data := EncodeLinear16(pcm)

	var buf bytes.Buffer
	buf.Grow(44 + len(data))

	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * channels * bitsPerSample / 8

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*bitsPerSample/8))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}
