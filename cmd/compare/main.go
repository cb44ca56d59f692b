package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"spriteforge/internal/adapter/repo"
	"spriteforge/internal/infra"
	"spriteforge/internal/manifest"
	"spriteforge/internal/pipeline"
	"spriteforge/internal/renderapi"
	"spriteforge/internal/report"
)

func main() {
	manifestPath := flag.String("manifest", "compare.yaml", "Path to the comparison manifest")
	cronSpec := flag.String("cron", "", "Cron spec (with seconds) for scheduled re-runs; runs once when empty")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := cfg.RequireRenderCredentials(); err != nil {
		logger.Fatal().Err(err).Msg("compare: missing render credentials")
	}

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("compare: failed to load manifest")
	}
	outputDir := m.OutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	client, err := renderapi.NewClient(renderapi.Options{
		APIKey:     cfg.RenderAPIKey,
		APISecret:  cfg.RenderAPISecret,
		BaseURL:    cfg.RenderBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("compare: failed to configure render client")
	}

	generator := pipeline.NewGenerator(client, pipeline.GeneratorOptions{
		MaxWait:      cfg.MaxWait,
		PollInterval: cfg.PollInterval,
	}, logger)
	runner := pipeline.NewRunner(generator, cfg.Throttle, logger)
	engine := pipeline.NewEngine(runner, outputDir, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var archive *repo.ReportRepo
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("compare: db connection failed")
		}
		defer pool.Close()
		archive = repo.NewReportRepo(infra.NewSQLRunner(pool, logger))
	}

	runOnce := func() error {
		result, err := engine.Compare(ctx, m.PipelineApproaches(), m.PipelineTasks())
		if err != nil {
			return err
		}
		fmt.Println(report.Render(result))
		path, err := report.WriteJSON(result, outputDir)
		if err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("compare: report written")
		if archive != nil {
			if err := archive.Save(ctx, result); err != nil {
				logger.Error().Err(err).Msg("compare: failed to archive report")
			}
		}
		return nil
	}

	if *cronSpec == "" {
		if err := runOnce(); err != nil {
			logger.Fatal().Err(err).Msg("compare: run failed")
		}
		return
	}

	// Scheduled mode: re-run the comparison on the given spec. The mutex
	// keeps overlapping triggers from running concurrently.
	scheduler := cron.New(cron.WithSeconds())
	var runMutex sync.Mutex
	_, err = scheduler.AddFunc(*cronSpec, func() {
		runMutex.Lock()
		defer runMutex.Unlock()
		logger.Info().Msg("compare: scheduled run starting")
		if err := runOnce(); err != nil {
			logger.Error().Err(err).Msg("compare: scheduled run failed")
		}
	})
	if err != nil {
		logger.Fatal().Err(err).Str("spec", *cronSpec).Msg("compare: invalid cron spec")
	}
	scheduler.Start()
	logger.Info().Str("spec", *cronSpec).Msg("compare: scheduler started")

	<-ctx.Done()
	scheduler.Stop()
	logger.Info().Msg("compare: stopped")
}
