package wav

import (
	"bytes"
	"encoding/binary"
)

// Encode serializes mono float32 samples as a 16-bit PCM WAV byte buffer.
// Samples outside [-1, 1] are clipped.
func Encode(samples []float32, sampleRate int) []byte {
	return EncodeInterleaved(samples, sampleRate, 1)
}

// EncodeInterleaved serializes interleaved float32 samples as a 16-bit PCM
// WAV byte buffer with the given channel count.
func EncodeInterleaved(samples []float32, sampleRate, numChannels int) []byte {
	dataSize := uint32(len(samples) * 2)
	blockAlign := numChannels * 2

	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))

	// RIFF header
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	// fmt chunk: PCM, 16-bit
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample

	// data chunk
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.Write(&buf, binary.LittleEndian, int16(s*32767))
	}

	return buf.Bytes()
}
