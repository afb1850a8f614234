package turn

import (
	"fmt"

	"github.com/valtbarbos/Vocalis/pkg/audio/resample"
	"github.com/valtbarbos/Vocalis/pkg/audio/wav"
)

// TargetSampleRate is the sample rate the model expects.
const TargetSampleRate = 16000

// Preprocess decodes a WAV byte buffer into mono float32 samples at
// TargetSampleRate, resampling when the native rate differs. It is a pure
// function of its input: no normalization, truncation or padding beyond
// what resampling implies.
func Preprocess(audio []byte) ([]float32, error) {
	clip, err := wav.Decode(audio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if clip.SampleRate == TargetSampleRate {
		return clip.Samples, nil
	}

	samples, err := resample.ToRate(clip.Samples, clip.SampleRate, TargetSampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return samples, nil
}
