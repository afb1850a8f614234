package turn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

const (
	// ModelName identifies the turn-detection model in health and meta
	// payloads.
	ModelName = "smart-turn-v3"

	// ModelFileName is the artifact file name within the model directory.
	ModelFileName = "smart-turn-v3.0.onnx"

	// ModelURL is the fixed location the artifact is fetched from when
	// absent on disk.
	ModelURL = "https://huggingface.co/pipecat-ai/smart-turn-v3/resolve/main/smart-turn-v3.0.onnx"

	// downloadChunkSize bounds the copy buffer while streaming the artifact
	// to disk.
	downloadChunkSize = 8192
)

// ArtifactSource fetches the model artifact into a destination path. It is
// a pluggable collaborator so tests can supply a local source instead of
// the real registry.
type ArtifactSource interface {
	Fetch(ctx context.Context, destination string) error
}

// HTTPArtifactSource downloads the artifact from a fixed remote URL,
// streaming to disk in bounded chunks.
type HTTPArtifactSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPArtifactSource creates a source pointed at the default model URL.
func NewHTTPArtifactSource() *HTTPArtifactSource {
	return &HTTPArtifactSource{
		URL:    ModelURL,
		Client: &http.Client{},
	}
}

// Fetch downloads the artifact to destination. The transfer goes through a
// temporary file that is renamed into place only after a complete, successful
// copy, so a failed download never leaves a usable artifact behind.
func (s *HTTPArtifactSource) Fetch(ctx context.Context, destination string) error {
	slog.Info("Downloading model artifact",
		slog.String("url", s.URL),
		slog.String("destination", destination))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactDownload, err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", ErrArtifactDownload, resp.StatusCode)
	}

	tmpPath := destination + ".part"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactDownload, err)
	}

	if _, err := io.CopyBuffer(file, resp.Body, make([]byte, downloadChunkSize)); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrArtifactDownload, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrArtifactDownload, err)
	}

	if err := os.Rename(tmpPath, destination); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrArtifactDownload, err)
	}

	slog.Info("Model artifact downloaded", slog.String("path", destination))
	return nil
}

// EnsureArtifact returns the artifact path within modelDir, fetching it via
// source when absent. An existing non-empty file is reused without any
// network request.
func EnsureArtifact(ctx context.Context, modelDir string, source ArtifactSource) (string, error) {
	path := filepath.Join(modelDir, ModelFileName)

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		slog.Info("Model artifact found", slog.String("path", path))
		return path, nil
	}

	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrArtifactDownload, err)
	}

	if err := source.Fetch(ctx, path); err != nil {
		return "", err
	}

	return path, nil
}

// DefaultModelDir returns the directory where model artifacts are cached.
func DefaultModelDir() string {
	if path := os.Getenv("EOT_MODEL_DIR"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/vocalis-models" // Fallback
	}

	return filepath.Join(homeDir, ".vocalis", "models")
}
