package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valtbarbos/Vocalis/internal/config"
	"github.com/valtbarbos/Vocalis/internal/server"
	"github.com/valtbarbos/Vocalis/pkg/turn"
	"github.com/valtbarbos/Vocalis/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "vocalis",
	Short: "Vocalis - end-of-turn detection service for voice applications",
	Long: `vocalis serves single-shot end-of-turn predictions over HTTP using the
pipecat smart-turn ONNX model, and ships a fail-open client for callers.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the prediction service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := setupLogger(cfg)

		logger.Info("Starting prediction service",
			slog.String("service", server.ServiceName),
			slog.String("version", version.Version),
			slog.String("addr", cfg.Addr()),
			slog.Float64("threshold", cfg.Threshold))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// Model loading is a blocking startup step; the listener only
		// opens once the session is ready.
		model := turn.NewModel(cfg.ModelDir, nil)
		if err := model.Load(ctx); err != nil {
			logger.Error("Model load failed", slog.String("error", err.Error()))
			return err
		}
		defer model.Close()

		srv := server.New(server.Options{
			Detector:  model,
			Threshold: cfg.Threshold,
			Logger:    logger,
			Debug:     cfg.LogLevel == "debug",
		})

		if err := srv.Run(ctx, cfg.Addr()); err != nil {
			logger.Error("Server failed", slog.String("error", err.Error()))
			return err
		}

		logger.Info("Shut down cleanly")
		return nil
	},
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Model artifact commands",
}

var modelDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Prefetch the model artifact into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		setupLogger(cfg)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		modelDir := cfg.ModelDir
		if modelDir == "" {
			modelDir = turn.DefaultModelDir()
		}

		path, err := turn.EnsureArtifact(ctx, modelDir, turn.NewHTTPArtifactSource())
		if err != nil {
			return err
		}

		fmt.Printf("✓ Model ready at %s\n", path)
		return nil
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Send a WAV file to a running prediction service",
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		if filePath == "" {
			return fmt.Errorf("--file is required")
		}

		cfg := config.Load()
		setupLogger(cfg)

		audio, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read audio file: %w", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		gate := turn.NewGate(cfg.Gate)
		out := gate.Check(ctx, audio)

		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	},
}

// setupLogger builds the process logger from config and installs it as the
// slog default so package-level logging flows through it.
func setupLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{}

	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.LogFormat == "console" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Default to JSON
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func main() {
	predictCmd.Flags().String("file", "", "Path to a WAV file")

	modelCmd.AddCommand(modelDownloadCmd)
	rootCmd.AddCommand(versionCmd, serveCmd, modelCmd, predictCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
