package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"spriteforge/internal/infra"
	"spriteforge/internal/pipeline"
	"spriteforge/internal/renderapi"
)

func main() {
	name := flag.String("name", "asset", "Logical asset name")
	prompt := flag.String("prompt", "", "Generation prompt (required)")
	model := flag.String("model", "", "Model identifier (required)")
	out := flag.String("out", "", "Destination file; defaults to <output dir>/<name>.png")
	width := flag.Int("width", 1024, "Image width")
	height := flag.Int("height", 1024, "Image height")
	steps := flag.Int("steps", 30, "Inference steps")
	guidance := flag.Float64("guidance", 7.5, "Guidance scale")
	seed := flag.Int64("seed", 0, "Optional seed; 0 leaves it unset")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if *prompt == "" || *model == "" {
		logger.Fatal().Msg("generate: -prompt and -model are required")
	}
	if err := cfg.RequireRenderCredentials(); err != nil {
		logger.Fatal().Err(err).Msg("generate: missing render credentials")
	}

	dest := *out
	if dest == "" {
		dest = filepath.Join(cfg.OutputDir, *name+".png")
	}

	client, err := renderapi.NewClient(renderapi.Options{
		APIKey:     cfg.RenderAPIKey,
		APISecret:  cfg.RenderAPISecret,
		BaseURL:    cfg.RenderBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("generate: failed to configure render client")
	}

	generator := pipeline.NewGenerator(client, pipeline.GeneratorOptions{
		MaxWait:      cfg.MaxWait,
		PollInterval: cfg.PollInterval,
	}, logger)

	req := renderapi.GenerationRequest{
		Prompt:        *prompt,
		Width:         *width,
		Height:        *height,
		Steps:         *steps,
		GuidanceScale: *guidance,
		ReferenceID:   *name,
	}
	if *seed > 0 {
		req.Seed = seed
	}
	task := pipeline.AssetTask{Name: *name, Request: req, TargetPath: dest}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome := generator.Generate(ctx, task, *model)
	if !outcome.Success() {
		logger.Error().Str("task", outcome.Task).Str("reason", outcome.FailureReason).Msg("generate: failed")
		os.Exit(1)
	}
	fmt.Printf("%s -> %s (%dx%d, %d bytes)\n", outcome.Task, outcome.Asset.Path, outcome.Asset.Width, outcome.Asset.Height, outcome.Asset.Size)
}
