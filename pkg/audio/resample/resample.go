// Package resample converts complete audio clips between sample rates.
package resample

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// ToRate resamples a mono clip from srcRate to dstRate. When the rates
// already match the input is returned unchanged. Output duration is
// proportional to the input: len(out) ≈ len(in) * dstRate / srcRate.
func ToRate(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate {
		return samples, nil
	}

	config := &resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}
	resampler, err := resampling.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s)
	}

	output, err := resampler.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	result := make([]float32, len(output))
	for i, s := range output {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		result[i] = float32(s)
	}

	return result, nil
}
