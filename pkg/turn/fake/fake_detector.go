package fake

import (
	"context"
	"sync/atomic"
)

// FakeDetector is a simple fake implementation for testing.
type FakeDetector struct {
	probability float64
	err         error
	calls       atomic.Int64
}

// NewFakeDetector creates a fake detector reporting a fixed probability.
func NewFakeDetector(probability float64) *FakeDetector {
	return &FakeDetector{probability: probability}
}

// NewFailingDetector creates a fake detector that always returns err.
func NewFailingDetector(err error) *FakeDetector {
	return &FakeDetector{err: err}
}

// PredictEndOfTurn returns the configured probability or error.
func (f *FakeDetector) PredictEndOfTurn(ctx context.Context, audio []byte) (float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return f.probability, nil
}

// ModelName identifies the fake model.
func (f *FakeDetector) ModelName() string {
	return "fake-detector"
}

// Calls reports how many predictions were requested.
func (f *FakeDetector) Calls() int {
	return int(f.calls.Load())
}
