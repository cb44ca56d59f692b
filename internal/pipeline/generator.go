package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spriteforge/internal/infra"
	"spriteforge/internal/renderapi"
)

// GeneratorOptions tunes the timing of a single generation.
type GeneratorOptions struct {
	// MaxWait bounds how long a submitted job may stay non-terminal.
	MaxWait time.Duration
	// PollInterval separates consecutive status checks.
	PollInterval time.Duration
}

func (o GeneratorOptions) withDefaults() GeneratorOptions {
	if o.MaxWait <= 0 {
		o.MaxWait = 5 * time.Minute
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	return o
}

// Generator produces one named asset under one model: submit, await
// completion, download, validate. It never returns an error; every failure
// path becomes a failure Outcome so batch orchestration can continue past it.
type Generator struct {
	client  renderClient
	poller  *Poller
	fetcher *Fetcher
	opts    GeneratorOptions
	logger  infra.Logger
}

// NewGenerator wires a generator and its poller and fetcher over one shared
// client.
func NewGenerator(client renderClient, opts GeneratorOptions, logger infra.Logger) *Generator {
	return &Generator{
		client:  client,
		poller:  NewPoller(client, logger),
		fetcher: NewFetcher(client, logger),
		opts:    opts.withDefaults(),
		logger:  logger,
	}
}

// Generate runs the full submit -> poll -> download pipeline for one task.
func (g *Generator) Generate(ctx context.Context, task AssetTask, model string) Outcome {
	req := task.Request
	req.Model = model

	log := g.logger.With().Str("task", task.Name).Str("model", model).Logger()
	log.Info().Msg("generate: submitting job")

	handle, err := g.client.Submit(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("generate: submit rejected")
		return failure(task, fmt.Sprintf("remote rejected the request: %v", err), statusCodeOf(err))
	}

	job, err := g.poller.AwaitCompletion(ctx, handle, g.opts.MaxWait, g.opts.PollInterval)
	if err != nil {
		log.Warn().Err(err).Str("job_id", handle.ID).Msg("generate: polling abandoned")
		return failure(task, fmt.Sprintf("remote never finished: %v", err), 0)
	}

	switch job.Status {
	case JobCompleted:
		if len(job.Artifacts) == 0 {
			log.Warn().Str("job_id", handle.ID).Msg("generate: job completed without artifacts")
			return failure(task, "remote completed without artifacts", 0)
		}
		asset, err := g.fetcher.DownloadAndValidate(ctx, job.Artifacts[0], task.TargetPath)
		if err != nil {
			log.Warn().Err(err).Str("job_id", handle.ID).Msg("generate: download failed")
			return failure(task, fmt.Sprintf("download/validation failed locally: %v", err), 0)
		}
		log.Info().Str("path", asset.Path).Int64("size", asset.Size).Msg("generate: asset ready")
		return Outcome{Task: task.Name, Asset: &asset}
	case JobTimedOut:
		log.Warn().Str("job_id", handle.ID).Msg("generate: job timed out")
		return failure(task, fmt.Sprintf("remote never finished within %s", g.opts.MaxWait), 0)
	default:
		reason := job.ErrorMessage
		if reason == "" {
			reason = "remote reported failure"
		}
		log.Warn().Str("job_id", handle.ID).Str("reason", reason).Msg("generate: job failed")
		return failure(task, fmt.Sprintf("remote generation failed: %s", reason), 0)
	}
}

func failure(task AssetTask, reason string, statusCode int) Outcome {
	return Outcome{Task: task.Name, FailureReason: reason, StatusCode: statusCode}
}

func statusCodeOf(err error) int {
	var te *renderapi.TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
