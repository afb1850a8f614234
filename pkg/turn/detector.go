package turn

import "context"

// Detector scores a complete, WAV-encoded utterance for end-of-turn.
// Implementations must be safe for concurrent use once constructed.
type Detector interface {
	// PredictEndOfTurn returns probability (0–1) that the speaker has
	// finished their conversational turn. Higher values indicate higher
	// likelihood of turn completion.
	PredictEndOfTurn(ctx context.Context, audio []byte) (float64, error)

	// ModelName identifies the backing model for health and metadata
	// reporting.
	ModelName() string
}

// Result pairs an end-of-turn probability with its threshold decision.
type Result struct {
	Prob      float64
	IsEOT     bool
	Threshold float64
}

// EndOfTurnProbability converts the model's native continuation
// probability into end-of-turn probability. The two always sum to 1; the
// raw model output is NOT the end-of-turn probability, and this sign
// convention is what downstream thresholds are calibrated against.
func EndOfTurnProbability(probContinue float64) float64 {
	return 1.0 - probContinue
}

// Decide applies a threshold to an end-of-turn probability.
func Decide(prob, threshold float64) Result {
	return Result{
		Prob:      prob,
		IsEOT:     prob >= threshold,
		Threshold: threshold,
	}
}
