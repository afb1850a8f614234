package turn

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"
)

// Model owns the acquisition, one-time loading and invocation of the
// smart-turn ONNX classification model. The loaded session is immutable and
// read-only after Load, so concurrent Predict calls need no external
// locking of model state.
type Model struct {
	modelDir string
	source   ArtifactSource

	loadOnce sync.Once
	loadErr  error

	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

// NewModel creates a model backed by the given cache directory and artifact
// source. An empty modelDir uses DefaultModelDir; a nil source uses the
// fixed HuggingFace URL.
func NewModel(modelDir string, source ArtifactSource) *Model {
	if modelDir == "" {
		modelDir = DefaultModelDir()
	}
	if source == nil {
		source = NewHTTPArtifactSource()
	}

	return &Model{
		modelDir: modelDir,
		source:   source,
	}
}

// ModelName identifies the backing model.
func (m *Model) ModelName() string {
	return ModelName
}

// Load acquires the artifact if absent and constructs the CPU inference
// session. It runs exactly once per Model; later calls return the first
// outcome. Load must complete before any Predict call.
func (m *Model) Load(ctx context.Context) error {
	m.loadOnce.Do(func() {
		modelFile, err := EnsureArtifact(ctx, m.modelDir, m.source)
		if err != nil {
			m.loadErr = err
			return
		}

		if err := ensureOrtEnv(); err != nil {
			m.loadErr = fmt.Errorf("failed to initialize ONNX runtime: %w", err)
			return
		}

		// Read tensor names from the model file rather than hardcoding them.
		inputs, outputs, err := ort.GetInputOutputInfo(modelFile)
		if err != nil {
			m.loadErr = fmt.Errorf("failed to inspect model: %w", err)
			return
		}
		if len(inputs) == 0 || len(outputs) == 0 {
			m.loadErr = fmt.Errorf("model has no input or output tensors: %s", modelFile)
			return
		}
		m.inputName = inputs[0].Name
		m.outputName = outputs[0].Name

		options, err := ort.NewSessionOptions()
		if err != nil {
			m.loadErr = fmt.Errorf("failed to create session options: %w", err)
			return
		}
		defer options.Destroy()

		// Configure CPU execution provider with thread settings
		intraOpThreads := max(1, runtime.NumCPU()/2)
		if err := options.SetIntraOpNumThreads(intraOpThreads); err != nil {
			m.loadErr = fmt.Errorf("failed to set intra-op threads: %w", err)
			return
		}
		if err := options.SetInterOpNumThreads(1); err != nil {
			m.loadErr = fmt.Errorf("failed to set inter-op threads: %w", err)
			return
		}

		// Clip length varies per request, so the session must accept
		// dynamic input shapes.
		session, err := ort.NewDynamicAdvancedSession(
			modelFile,
			[]string{m.inputName},
			[]string{m.outputName},
			options,
		)
		if err != nil {
			m.loadErr = fmt.Errorf("failed to create ONNX session: %w", err)
			return
		}

		m.session = session
		slog.Info("ONNX model loaded",
			slog.String("model", ModelName),
			slog.String("path", modelFile))
	})

	return m.loadErr
}

// Predict runs inference on a preprocessed sample sequence and returns the
// model's native continuation probability: the probability the speaker
// intends to keep talking, clamped to [0, 1].
func (m *Model) Predict(samples []float32) (float64, error) {
	if m.session == nil {
		return 0, ErrModelNotLoaded
	}
	if len(samples) == 0 {
		return 0, fmt.Errorf("%w: empty sample sequence", ErrDecode)
	}

	// Single batch of one sequence
	inputShape := ort.NewShape(1, int64(len(samples)))
	inputTensor, err := ort.NewTensor(inputShape, samples)
	if err != nil {
		return 0, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := m.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return 0, fmt.Errorf("ONNX inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return 0, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	outputData := outputTensor.GetData()
	if len(outputData) == 0 {
		return 0, fmt.Errorf("empty output tensor")
	}

	prob := float64(outputData[0])
	if prob < 0 {
		prob = 0
	} else if prob > 1 {
		prob = 1
	}

	return prob, nil
}

// PredictEndOfTurn implements Detector: decode and resample the clip, run
// inference, and invert the result. The model natively reports the
// probability of CONTINUATION; end-of-turn probability is its complement,
// and downstream thresholds depend on this sign convention.
func (m *Model) PredictEndOfTurn(ctx context.Context, audio []byte) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	startTime := time.Now()

	samples, err := Preprocess(audio)
	if err != nil {
		return 0, err
	}

	probContinue, err := m.Predict(samples)
	if err != nil {
		return 0, err
	}

	probEOT := EndOfTurnProbability(probContinue)

	latency := time.Since(startTime)
	slog.Debug("Turn prediction",
		slog.Float64("prob_continue", probContinue),
		slog.Float64("prob_eot", probEOT),
		slog.Duration("latency", latency))

	return probEOT, nil
}

// Close releases the inference session.
func (m *Model) Close() error {
	if m.session != nil {
		return m.session.Destroy()
	}
	return nil
}
