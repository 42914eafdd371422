package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/podcast-studio/internal/config"
	"github.com/jonathan/podcast-studio/internal/llm"
	"github.com/jonathan/podcast-studio/internal/pipeline"
	"github.com/jonathan/podcast-studio/internal/server"
	"github.com/jonathan/podcast-studio/internal/store"
	"github.com/jonathan/podcast-studio/internal/synthesis"
	"github.com/jonathan/podcast-studio/internal/tts"
)

var (
	servePort    int
	serveDataDir string
	serveConfig  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for generating, streaming, and saving podcast episodes.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "Directory for persisted job snapshots")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Config{
		DataDir: serveDataDir,
	}
	// Only carry the flag value when it was set explicitly, so a port in
	// the config file is not shadowed by the flag default.
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if serveConfig != "" {
		fileCfg, err := config.LoadConfig(serveConfig)
		if err != nil {
			return err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}
	if cfg.Port == 0 {
		cfg.Port = servePort
	}
	if cfg.DataDir == "" {
		cfg.DataDir = os.Getenv("PODCAST_DATA_DIR")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data/jobs"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	snapshots, err := store.NewSnapshotStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	jobs := store.New(snapshots)

	llmConfig := llm.DefaultConfig()
	if cfg.TextModel != "" {
		llmConfig.TextModel = cfg.TextModel
	}
	llmClient, err := llm.NewClient(context.Background(), llmConfig, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer llmClient.Close()

	synth, err := tts.NewGeminiSynthesizer(cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create speech synthesizer: %w", err)
	}
	synth.WithModel(cfg.SpeechModel)

	pl := pipeline.New(jobs, llmClient)
	stage := synthesis.New(jobs, synth)

	srv := server.New(server.Config{Port: cfg.Port}, jobs, pl, stage)
	return srv.Start()
}
