package turn

import "testing"

func TestDecideThresholdSweep(t *testing.T) {
	probs := []float64{0.0, 0.1, 0.49, 0.5, 0.51, 0.9, 1.0}

	for threshold := 0.0; threshold <= 1.0; threshold += 0.05 {
		for _, prob := range probs {
			result := Decide(prob, threshold)

			if result.IsEOT != (prob >= threshold) {
				t.Errorf("Decide(%f, %f): IsEOT=%v, expected %v",
					prob, threshold, result.IsEOT, prob >= threshold)
			}
			if result.Prob != prob || result.Threshold != threshold {
				t.Errorf("Decide(%f, %f) did not echo inputs: %+v", prob, threshold, result)
			}
		}
	}
}

func TestInversionInvariant(t *testing.T) {
	for _, probContinue := range []float64{0.0, 0.12, 0.5, 0.77, 1.0} {
		eot := EndOfTurnProbability(probContinue)
		if eot+probContinue != 1.0 {
			t.Errorf("Inversion invariant broken: %f + %f != 1", eot, probContinue)
		}
	}
}

func TestDecideBoundary(t *testing.T) {
	// Equality counts as end of turn.
	if !Decide(0.5, 0.5).IsEOT {
		t.Error("Probability equal to threshold must decide end of turn")
	}
	if Decide(0.4999, 0.5).IsEOT {
		t.Error("Probability below threshold must not decide end of turn")
	}
}
