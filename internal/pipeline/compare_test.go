package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spriteforge/internal/renderapi"
)

func newTestEngine(t *testing.T, client *fakeRenderClient, outputDir string) *Engine {
	t.Helper()
	gen := NewGenerator(client, testGeneratorOptions(), testLogger(t))
	runner := NewRunner(gen, 0, testLogger(t))
	return NewEngine(runner, outputDir, testLogger(t))
}

func testApproaches(n int) []Approach {
	all := []Approach{
		{Model: "glyph-sd-xl", Name: "baseline"},
		{Model: "glyph-sd-turbo", Name: "fast draft"},
		{Model: "glyph-pixel-v2", Name: "pixel tuned"},
		{Model: "glyph-anime-v1", Name: "stylized"},
	}
	return all[:n]
}

func TestCompareRequiresMinimumApproaches(t *testing.T) {
	engine := newTestEngine(t, &fakeRenderClient{}, t.TempDir())

	_, err := engine.Compare(context.Background(), testApproaches(2), []AssetTask{{Name: "hero"}})
	if !errors.Is(err, ErrInsufficientApproaches) {
		t.Fatalf("expected ErrInsufficientApproaches, got %v", err)
	}
}

func TestCompareRunsAllApproachesInOrder(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t, &fakeRenderClient{}, dir)
	tasks := []AssetTask{
		{Name: "hero", Request: renderapi.GenerationRequest{Prompt: "hero sprite"}, TargetPath: "hero.png"},
		{Name: "tileset", Request: renderapi.GenerationRequest{Prompt: "tileset"}, TargetPath: "tileset.png"},
	}

	report, err := engine.Compare(context.Background(), testApproaches(3), tasks)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	if report.RunID == "" {
		t.Fatalf("missing run id")
	}
	if report.GeneratedAt.IsZero() {
		t.Fatalf("missing timestamp")
	}
	if len(report.Approaches) != 3 {
		t.Fatalf("unexpected approach count: %d", len(report.Approaches))
	}
	wantLabels := []string{"A", "B", "C"}
	for i, result := range report.Approaches {
		if result.Label != wantLabels[i] {
			t.Fatalf("approach %d label = %s, want %s", i, result.Label, wantLabels[i])
		}
		if len(result.Outcomes) != len(tasks) {
			t.Fatalf("approach %s outcome count = %d", result.Name, len(result.Outcomes))
		}
		if result.Score != 10.0 {
			t.Fatalf("all-success approach must score 10.0, got %v", result.Score)
		}
		for _, o := range result.Outcomes {
			if !strings.HasPrefix(o.Asset.Path, dir) {
				t.Fatalf("asset path %s escapes output dir", o.Asset.Path)
			}
		}
	}
	// Approaches must not share destination paths.
	pathA := report.Approaches[0].Outcomes[0].Asset.Path
	pathB := report.Approaches[1].Outcomes[0].Asset.Path
	if pathA == pathB {
		t.Fatalf("approaches share a destination path: %s", pathA)
	}
}

func TestCompareToleratesFailingApproach(t *testing.T) {
	client := &fakeRenderClient{
		submitFn: func(req renderapi.GenerationRequest) (renderapi.JobHandle, error) {
			if req.Model == "glyph-sd-turbo" {
				return renderapi.JobHandle{}, &renderapi.TransportError{Op: "submit", StatusCode: 500, Err: errors.New("unexpected status 500")}
			}
			return renderapi.JobHandle{ID: "job-1", Request: req}, nil
		},
	}
	engine := newTestEngine(t, client, t.TempDir())
	tasks := []AssetTask{{Name: "hero", Request: renderapi.GenerationRequest{Prompt: "hero"}, TargetPath: "hero.png"}}

	report, err := engine.Compare(context.Background(), testApproaches(3), tasks)
	if err != nil {
		t.Fatalf("a failing approach must not abort the comparison: %v", err)
	}
	if got := report.Approaches[1].Score; got != 0.0 {
		t.Fatalf("failing approach score = %v, want 0.0", got)
	}
	if got := report.Approaches[0].Score; got != 10.0 {
		t.Fatalf("healthy approach score = %v, want 10.0", got)
	}
}

func TestApproachLabelSequence(t *testing.T) {
	if got := approachLabel(0); got != "A" {
		t.Fatalf("label 0 = %s", got)
	}
	if got := approachLabel(25); got != "Z" {
		t.Fatalf("label 25 = %s", got)
	}
	if got := approachLabel(26); got != "Z1" {
		t.Fatalf("label 26 = %s", got)
	}
}

func TestSlug(t *testing.T) {
	if got := slug("Fast Draft/v2"); got != "fast_draft_v2" {
		t.Fatalf("slug = %s", got)
	}
	if got := slug("???"); got != "approach" {
		t.Fatalf("slug fallback = %s", got)
	}
}
