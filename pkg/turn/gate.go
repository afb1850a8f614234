package turn

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// DefaultGateTimeout bounds the gate's single network attempt.
const DefaultGateTimeout = 5 * time.Second

// GateConfig configures the client-side turn-detection gate.
type GateConfig struct {
	// Endpoint is the prediction service URL, e.g. http://host:8500/predict.
	Endpoint string

	// Enabled toggles the feature. When false the gate makes no network
	// calls and always reports end of turn.
	Enabled bool

	// Timeout bounds each network attempt. Zero means DefaultGateTimeout.
	Timeout time.Duration
}

// Outcome is the gate's caller-facing result. Degraded marks a fail-open
// (or disabled-feature) default rather than a genuine model inference;
// the decision values are identical either way, so callers that only look
// at Prob and IsEOT keep the original two-value contract.
type Outcome struct {
	Prob     float64
	IsEOT    bool
	Degraded bool
	Reason   string
}

// Gate wraps the prediction service with a fail-open policy: a service
// outage must never block or stall conversational turn-taking, so every
// failure mode resolves to "let the turn end" rather than an error.
type Gate struct {
	endpoint string
	enabled  bool
	client   *http.Client
}

// NewGate creates a gate for the given configuration.
func NewGate(cfg GateConfig) *Gate {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultGateTimeout
	}

	return &Gate{
		endpoint: cfg.Endpoint,
		enabled:  cfg.Enabled,
		client:   &http.Client{Timeout: timeout},
	}
}

// gateResponse mirrors the prediction endpoint's success body. Pointer
// fields distinguish absent keys from zero values.
type gateResponse struct {
	EOTProb *float64 `json:"eot_prob"`
	IsEOT   *bool    `json:"is_eot"`
}

// Check reports whether the audio ends a turn. It never returns an error
// and makes at most one network attempt. Disabled, non-200, timeout and
// transport failures each independently resolve to the permissive
// (1.0, true) default.
func (g *Gate) Check(ctx context.Context, audio []byte) Outcome {
	if !g.enabled {
		slog.Debug("Turn detection disabled, defaulting to end of turn")
		return Outcome{Prob: 1.0, IsEOT: true, Degraded: true, Reason: "disabled"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(audio))
	if err != nil {
		return g.failOpen("invalid request", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := g.client.Do(req)
	if err != nil {
		return g.failOpen("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return g.failOpen("service error", nil)
	}

	var body gateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return g.failOpen("malformed response", err)
	}

	// A well-formed 200 with missing fields defaults the opposite way from
	// the failure paths: "still speaking" (0.0, false) keeps the caller
	// listening, while transport failures let the turn end. Deliberate
	// asymmetry; keep it.
	out := Outcome{}
	if body.EOTProb != nil {
		out.Prob = *body.EOTProb
	}
	if body.IsEOT != nil {
		out.IsEOT = *body.IsEOT
	}

	slog.Debug("Turn prediction received",
		slog.Float64("eot_prob", out.Prob),
		slog.Bool("is_eot", out.IsEOT))

	return out
}

// failOpen absorbs a failure into the permissive default.
func (g *Gate) failOpen(reason string, err error) Outcome {
	if err != nil {
		slog.Error("Turn detection unavailable, failing open",
			slog.String("reason", reason),
			slog.String("error", err.Error()))
	} else {
		slog.Error("Turn detection unavailable, failing open",
			slog.String("reason", reason))
	}

	return Outcome{Prob: 1.0, IsEOT: true, Degraded: true, Reason: reason}
}
