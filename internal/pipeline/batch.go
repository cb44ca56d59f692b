package pipeline

import (
	"context"
	"time"

	"spriteforge/internal/infra"
)

// Scoring constants preserved verbatim for output compatibility with
// existing reports: a fully complete batch is rewarded disproportionately.
const (
	scoreRatioWeight   = 8.0
	scoreCompleteBonus = 1.5
	scoreCap           = 10.0
)

// Runner drives the Generator across an ordered task list for one approach,
// throttling between remote calls and isolating per-task failures.
type Runner struct {
	generator *Generator
	throttle  time.Duration
	logger    infra.Logger
}

// NewRunner constructs a batch runner. throttle is the fixed delay between
// consecutive tasks; it applies whether or not the previous task succeeded.
func NewRunner(generator *Generator, throttle time.Duration, logger infra.Logger) *Runner {
	return &Runner{generator: generator, throttle: throttle, logger: logger}
}

// RunApproach attempts every task strictly in order and returns exactly one
// outcome per task, in input order. A failed task never stops the batch.
func (r *Runner) RunApproach(ctx context.Context, model, approachName string, tasks []AssetTask) ApproachResult {
	result := ApproachResult{
		Model:    model,
		Name:     approachName,
		Outcomes: make([]Outcome, 0, len(tasks)),
	}

	r.logger.Info().
		Str("approach", approachName).
		Str("model", model).
		Int("tasks", len(tasks)).
		Msg("batch: starting approach")

	for i, task := range tasks {
		result.Outcomes = append(result.Outcomes, r.generator.Generate(ctx, task, model))
		if i < len(tasks)-1 {
			sleepCtx(ctx, r.throttle)
		}
	}

	result.Score = ConsistencyScore(result.Outcomes)
	r.logger.Info().
		Str("approach", approachName).
		Int("successes", result.Successes()).
		Int("tasks", len(tasks)).
		Float64("score", result.Score).
		Msg("batch: approach finished")
	return result
}

// ConsistencyScore is a 0-10 completeness heuristic over a batch's outcomes,
// not a visual-quality metric. The formula is deliberately kept as-is:
// ratio * 8.0, +1.5 when every task succeeded, capped at 10.0.
func ConsistencyScore(outcomes []Outcome) float64 {
	total := len(outcomes)
	if total == 0 {
		return 0.0
	}
	successes := 0
	for _, o := range outcomes {
		if o.Success() {
			successes++
		}
	}
	score := float64(successes) / float64(total) * scoreRatioWeight
	if successes == total {
		score += scoreCompleteBonus
	}
	if score > scoreCap {
		score = scoreCap
	}
	return score
}

// sleepCtx pauses for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
