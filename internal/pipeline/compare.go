package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"spriteforge/internal/infra"
)

// minApproaches gates comparison runs: with fewer model approaches there is
// nothing meaningful to compare.
const minApproaches = 3

// Engine runs the batch orchestrator once per approach and assembles the
// decision report.
type Engine struct {
	runner    *Runner
	outputDir string
	logger    infra.Logger
}

// NewEngine constructs a comparison engine. outputDir is the root under
// which per-approach asset directories are created.
func NewEngine(runner *Runner, outputDir string, logger infra.Logger) *Engine {
	return &Engine{runner: runner, outputDir: outputDir, logger: logger}
}

// Compare runs every approach strictly sequentially, in the given order,
// against the same task set. Approaches are labeled alphabetically by
// position for human presentation. Fewer than minApproaches fails with
// ErrInsufficientApproaches and produces no partial report.
func (e *Engine) Compare(ctx context.Context, approaches []Approach, tasks []AssetTask) (ComparisonReport, error) {
	if len(approaches) < minApproaches {
		return ComparisonReport{}, fmt.Errorf("%w: got %d, need at least %d", ErrInsufficientApproaches, len(approaches), minApproaches)
	}

	report := ComparisonReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Approaches:  make([]ApproachResult, 0, len(approaches)),
	}

	e.logger.Info().
		Str("run_id", report.RunID).
		Int("approaches", len(approaches)).
		Int("tasks", len(tasks)).
		Msg("compare: starting run")

	for i, approach := range approaches {
		scoped := e.retarget(tasks, approach)
		result := e.runner.RunApproach(ctx, approach.Model, approach.Name, scoped)
		result.Label = approachLabel(i)
		report.Approaches = append(report.Approaches, result)
	}

	return report, nil
}

// retarget copies the task list with destinations nested under a
// per-approach directory so no two approaches share a target path.
func (e *Engine) retarget(tasks []AssetTask, approach Approach) []AssetTask {
	dir := filepath.Join(e.outputDir, slug(approach.Name))
	scoped := make([]AssetTask, len(tasks))
	for i, task := range tasks {
		task.TargetPath = filepath.Join(dir, filepath.Base(task.TargetPath))
		scoped[i] = task
	}
	return scoped
}

// approachLabel assigns presentation labels A, B, C, ... by position.
func approachLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("Z%d", i-25)
}

func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "approach"
	}
	return b.String()
}
