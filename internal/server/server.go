// Package server exposes the prediction service over HTTP: a single
// inference operation and a health check. The detector is a shared
// read-only handle injected at construction; there is no package-level
// model state.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valtbarbos/Vocalis/pkg/turn"
)

// ServiceName identifies this service in health payloads and logs.
const ServiceName = "vocalis"

// Options configures the HTTP server.
type Options struct {
	Detector  turn.Detector
	Threshold float64
	Logger    *slog.Logger
	Debug     bool
}

// Server handles prediction and health requests.
type Server struct {
	detector  turn.Detector
	threshold float64
	logger    *slog.Logger
	engine    *gin.Engine
}

// New constructs the server and its routes. The detector must already be
// loaded: the service accepts no inference traffic before the model is
// ready, and New is called after loading completes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		detector:  opts.Detector,
		threshold: opts.Threshold,
		logger:    logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	engine.POST("/predict", s.handlePredict)
	engine.GET("/health", s.handleHealth)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Prediction service listening",
			slog.String("addr", addr),
			slog.String("model", s.detector.ModelName()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type predictMeta struct {
	Threshold      float64 `json:"threshold"`
	AudioSizeBytes int     `json:"audio_size_bytes"`
	Model          string  `json:"model"`
	Timestamp      string  `json:"timestamp"`
}

type predictResponse struct {
	EOTProb float64     `json:"eot_prob"`
	IsEOT   bool        `json:"is_eot"`
	Meta    predictMeta `json:"meta"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
}

// handlePredict runs the full inference pipeline on a raw WAV body.
// Failures are caught per request; the process stays healthy.
func (s *Server) handlePredict(c *gin.Context) {
	audio, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:     "failed to read request body",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	if len(audio) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no audio data received"})
		return
	}

	prob, err := s.detector.PredictEndOfTurn(c.Request.Context(), audio)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, turn.ErrDecode) {
			s.logger.Warn("Rejected undecodable audio", slog.String("error", err.Error()))
		} else {
			s.logger.Error("Prediction failed", slog.String("error", err.Error()))
		}
		c.JSON(status, errorResponse{
			Error:     err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	result := turn.Decide(prob, s.threshold)

	s.logger.Info("Prediction",
		slog.Float64("eot_prob", result.Prob),
		slog.Bool("is_eot", result.IsEOT),
		slog.Float64("threshold", result.Threshold))

	c.JSON(http.StatusOK, predictResponse{
		EOTProb: result.Prob,
		IsEOT:   result.IsEOT,
		Meta: predictMeta{
			Threshold:      result.Threshold,
			AudioSizeBytes: len(audio),
			Model:          s.detector.ModelName(),
			Timestamp:      time.Now().Format(time.RFC3339),
		},
	})
}

// handleHealth reports liveness and the identity of the loaded model,
// independent of inference load.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   ServiceName,
		"model":     s.detector.ModelName(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// requestLogger logs every request with status and latency.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}
