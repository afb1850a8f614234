package turn

import "errors"

// Error taxonomy for the detection pipeline. Server-side failures wrap one
// of these sentinels; the client-side Gate never surfaces any of them.
var (
	// ErrDecode indicates malformed audio input. Surfaced as a per-request
	// failure; the process stays healthy.
	ErrDecode = errors.New("failed to decode audio")

	// ErrArtifactDownload indicates the model artifact could not be fetched.
	// Fatal at startup: the service cannot become healthy without the model.
	ErrArtifactDownload = errors.New("model artifact download failed")

	// ErrModelNotLoaded indicates Predict was called before Load succeeded.
	// This is an ordering bug in the caller, not a runtime condition.
	ErrModelNotLoaded = errors.New("model not loaded, call Load first")
)
