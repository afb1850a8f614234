package turn

import (
	"errors"
	"math"
	"testing"

	"github.com/valtbarbos/Vocalis/pkg/audio/wav"
)

func testTone(sampleRate, numSamples int) []float32 {
	samples := make([]float32, numSamples)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*t))
	}
	return samples
}

func TestPreprocessKeepsTargetRateInput(t *testing.T) {
	audio := wav.Encode(testTone(TargetSampleRate, TargetSampleRate/2), TargetSampleRate)

	samples, err := Preprocess(audio)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if len(samples) != TargetSampleRate/2 {
		t.Errorf("Expected %d samples, got %d", TargetSampleRate/2, len(samples))
	}
}

func TestPreprocessResamplesToTargetRate(t *testing.T) {
	for _, rate := range []int{8000, 22050, 44100, 48000} {
		audio := wav.Encode(testTone(rate, rate/2), rate) // half a second

		samples, err := Preprocess(audio)
		if err != nil {
			t.Fatalf("Preprocess failed for %dHz: %v", rate, err)
		}

		// Half a second at the target rate, with tolerance for converter
		// latency at the clip edges.
		expected := float64(TargetSampleRate) / 2
		if math.Abs(float64(len(samples))-expected) > expected*0.05 {
			t.Errorf("%dHz input: expected ~%.0f samples, got %d", rate, expected, len(samples))
		}
	}
}

func TestPreprocessMalformedAudio(t *testing.T) {
	for _, audio := range [][]byte{nil, {}, []byte("definitely not a wav file")} {
		_, err := Preprocess(audio)
		if !errors.Is(err, ErrDecode) {
			t.Errorf("Expected ErrDecode, got %v", err)
		}
	}
}
