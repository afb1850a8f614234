package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Header holds the format information parsed from a WAV container.
type Header struct {
	SampleRate    uint32
	NumChannels   uint16
	BitsPerSample uint16
	DataSize      uint32
}

// Clip is a decoded audio clip: mono float32 samples in [-1, 1] at the
// container's native sample rate.
type Clip struct {
	Samples    []float32
	SampleRate int
}

// Decode parses a WAV byte buffer and returns mono float32 samples at the
// container's native sample rate. Stereo input is downmixed by averaging
// the two channels. Only 16-bit PCM is supported.
func Decode(data []byte) (Clip, error) {
	r := bytes.NewReader(data)

	header, err := readHeader(r)
	if err != nil {
		return Clip{}, err
	}

	// Cap at the bytes actually present; some encoders overstate the
	// data chunk size.
	dataSize := int(header.DataSize)
	if remaining := r.Len(); dataSize > remaining {
		dataSize = remaining
	}

	pcm := make([]byte, dataSize)
	if _, err := io.ReadFull(r, pcm); err != nil {
		return Clip{}, fmt.Errorf("failed to read audio data: %w", err)
	}

	samples := decodePCM16(pcm, int(header.NumChannels))
	return Clip{Samples: samples, SampleRate: int(header.SampleRate)}, nil
}

// decodePCM16 converts little-endian 16-bit PCM to mono float32 samples.
func decodePCM16(pcm []byte, numChannels int) []float32 {
	frameBytes := numChannels * 2
	numFrames := len(pcm) / frameBytes
	samples := make([]float32, numFrames)

	for i := 0; i < numFrames; i++ {
		var sum int32
		for ch := 0; ch < numChannels; ch++ {
			off := i*frameBytes + ch*2
			sum += int32(int16(binary.LittleEndian.Uint16(pcm[off : off+2])))
		}
		samples[i] = float32(sum/int32(numChannels)) / 32768.0
	}

	return samples
}

// readHeader reads and validates the RIFF header and the fmt chunk, leaving
// the reader positioned at the start of the data chunk's payload.
func readHeader(r *bytes.Reader) (Header, error) {
	var header Header

	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return header, fmt.Errorf("failed to read RIFF header: %w", err)
	}

	if string(riffHeader[0:4]) != "RIFF" {
		return header, fmt.Errorf("not a valid RIFF file")
	}
	if string(riffHeader[8:12]) != "WAVE" {
		return header, fmt.Errorf("not a valid WAVE file")
	}

	if err := readFmtChunk(r, &header); err != nil {
		return header, err
	}

	if err := readDataChunk(r, &header); err != nil {
		return header, err
	}

	if header.BitsPerSample != 16 {
		return header, fmt.Errorf("only 16-bit samples are supported, got %d-bit", header.BitsPerSample)
	}
	if header.NumChannels != 1 && header.NumChannels != 2 {
		return header, fmt.Errorf("only mono and stereo are supported, got %d channels", header.NumChannels)
	}
	if header.SampleRate == 0 {
		return header, fmt.Errorf("invalid sample rate 0")
	}

	return header, nil
}

// readFmtChunk scans for the fmt chunk and parses it.
func readFmtChunk(r *bytes.Reader, header *Header) error {
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			return fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		if chunkID == "fmt " {
			if chunkSize < 16 {
				return fmt.Errorf("fmt chunk too small: %d bytes", chunkSize)
			}

			var fmtData [16]byte
			if _, err := io.ReadFull(r, fmtData[:]); err != nil {
				return fmt.Errorf("failed to read fmt data: %w", err)
			}

			audioFormat := binary.LittleEndian.Uint16(fmtData[0:2])
			if audioFormat != 1 {
				return fmt.Errorf("only PCM format is supported, got format %d", audioFormat)
			}

			header.NumChannels = binary.LittleEndian.Uint16(fmtData[2:4])
			header.SampleRate = binary.LittleEndian.Uint32(fmtData[4:8])
			header.BitsPerSample = binary.LittleEndian.Uint16(fmtData[14:16])

			if chunkSize > 16 {
				if _, err := r.Seek(int64(chunkSize-16), io.SeekCurrent); err != nil {
					return fmt.Errorf("failed to skip fmt data: %w", err)
				}
			}

			return nil
		}

		// Skip unknown chunk
		if _, err := r.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
			return fmt.Errorf("failed to skip chunk: %w", err)
		}
	}
}

// readDataChunk scans for the data chunk and positions the reader at the
// start of the audio payload.
func readDataChunk(r *bytes.Reader, header *Header) error {
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			return fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		if chunkID == "data" {
			header.DataSize = chunkSize
			return nil
		}

		// Skip unknown chunk
		if _, err := r.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
			return fmt.Errorf("failed to skip chunk: %w", err)
		}
	}
}
