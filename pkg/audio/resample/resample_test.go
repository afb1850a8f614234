package resample

import (
	"math"
	"testing"
)

func sine(freq float64, sampleRate, numSamples int) []float32 {
	samples := make([]float32, numSamples)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*freq*t))
	}
	return samples
}

func TestToRateSameRateIsNoop(t *testing.T) {
	in := sine(440, 16000, 1600)
	out, err := ToRate(in, 16000, 16000)
	if err != nil {
		t.Fatalf("ToRate failed: %v", err)
	}
	if len(out) != len(in) {
		t.Errorf("Expected %d samples, got %d", len(in), len(out))
	}
}

func TestToRatePreservesDuration(t *testing.T) {
	cases := []struct {
		srcRate int
		dstRate int
	}{
		{48000, 16000},
		{44100, 16000},
		{22050, 16000},
		{8000, 16000},
	}

	for _, tc := range cases {
		in := sine(440, tc.srcRate, tc.srcRate/2) // half a second
		out, err := ToRate(in, tc.srcRate, tc.dstRate)
		if err != nil {
			t.Fatalf("ToRate %d->%d failed: %v", tc.srcRate, tc.dstRate, err)
		}

		expected := float64(len(in)) * float64(tc.dstRate) / float64(tc.srcRate)
		// Allow a small tolerance for converter latency at the edges.
		if math.Abs(float64(len(out))-expected) > expected*0.05 {
			t.Errorf("%d->%d: expected ~%.0f samples, got %d", tc.srcRate, tc.dstRate, expected, len(out))
		}
	}
}

func TestToRateKeepsSamplesInRange(t *testing.T) {
	in := sine(1000, 48000, 4800)
	out, err := ToRate(in, 48000, 16000)
	if err != nil {
		t.Fatalf("ToRate failed: %v", err)
	}
	for i, s := range out {
		if s < -1 || s > 1 {
			t.Fatalf("Sample %d out of range: %f", i, s)
		}
	}
}

func TestToRateInvalidRates(t *testing.T) {
	if _, err := ToRate(nil, 0, 16000); err == nil {
		t.Error("Expected error for zero source rate")
	}
	if _, err := ToRate(nil, 16000, -1); err == nil {
		t.Error("Expected error for negative target rate")
	}
}
