package turn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/matryer/is"
)

func TestEnsureArtifactReusesExistingFile(t *testing.T) {
	is := is.New(t)

	modelDir := t.TempDir()
	path := filepath.Join(modelDir, ModelFileName)
	is.NoErr(os.WriteFile(path, []byte("cached model"), 0644))

	var fetches atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
	}))
	defer server.Close()

	source := &HTTPArtifactSource{URL: server.URL, Client: server.Client()}

	got, err := EnsureArtifact(context.Background(), modelDir, source)
	is.NoErr(err)
	is.Equal(got, path)
	is.Equal(fetches.Load(), int64(0)) // present artifact must not trigger a download
}

func TestEnsureArtifactDownloadsWhenAbsent(t *testing.T) {
	is := is.New(t)

	payload := make([]byte, downloadChunkSize*3+17) // forces multiple chunks
	for i := range payload {
		payload[i] = byte(i)
	}

	var fetches atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write(payload)
	}))
	defer server.Close()

	modelDir := t.TempDir()
	source := &HTTPArtifactSource{URL: server.URL, Client: server.Client()}

	path, err := EnsureArtifact(context.Background(), modelDir, source)
	is.NoErr(err)
	is.Equal(fetches.Load(), int64(1)) // exactly one download

	data, err := os.ReadFile(path)
	is.NoErr(err)
	is.Equal(len(data), len(payload))
}

func TestEnsureArtifactNon200Fails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	modelDir := t.TempDir()
	source := &HTTPArtifactSource{URL: server.URL, Client: server.Client()}

	_, err := EnsureArtifact(context.Background(), modelDir, source)
	if !errors.Is(err, ErrArtifactDownload) {
		t.Fatalf("Expected ErrArtifactDownload, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(modelDir, ModelFileName)); !os.IsNotExist(statErr) {
		t.Error("Failed download must not leave an artifact file")
	}
}

func TestEnsureArtifactPartialDownloadLeavesNoArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Advertise more bytes than are sent so the client sees a
		// truncated body.
		w.Header().Set("Content-Length", "4096")
		w.Write([]byte("short"))
	}))
	defer server.Close()

	modelDir := t.TempDir()
	source := &HTTPArtifactSource{URL: server.URL, Client: server.Client()}

	_, err := EnsureArtifact(context.Background(), modelDir, source)
	if !errors.Is(err, ErrArtifactDownload) {
		t.Fatalf("Expected ErrArtifactDownload for truncated transfer, got %v", err)
	}

	entries, readErr := os.ReadDir(modelDir)
	if readErr != nil {
		t.Fatalf("Failed to read model dir: %v", readErr)
	}
	for _, e := range entries {
		t.Errorf("Partial download left file behind: %s", e.Name())
	}
}

func TestDefaultModelDirHonorsEnv(t *testing.T) {
	t.Setenv("EOT_MODEL_DIR", "/srv/models")
	if got := DefaultModelDir(); got != "/srv/models" {
		t.Errorf("Expected /srv/models, got %s", got)
	}
}
