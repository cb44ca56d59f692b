package pipeline

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"spriteforge/internal/renderapi"
)

func TestConsistencyScore(t *testing.T) {
	success := Outcome{Task: "t", Asset: &DownloadedAsset{Path: "p"}}
	fail := Outcome{Task: "t", FailureReason: "boom"}

	cases := []struct {
		name     string
		outcomes []Outcome
		want     float64
	}{
		{"empty batch", nil, 0.0},
		{"all success capped", []Outcome{success, success, success, success}, 10.0},
		{"single success gets bonus", []Outcome{success}, 9.5},
		{"half of four", []Outcome{success, fail, success, fail}, 4.0},
		{"all failed", []Outcome{fail, fail, fail}, 0.0},
		{"three of four", []Outcome{success, success, success, fail}, 6.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ConsistencyScore(tc.outcomes)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ConsistencyScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRunApproachPreservesOrderAndIsolation(t *testing.T) {
	// Tasks whose prompt contains "fail" are rejected at submission; the
	// batch must still attempt every task and keep input order.
	client := &fakeRenderClient{
		submitFn: func(req renderapi.GenerationRequest) (renderapi.JobHandle, error) {
			if strings.Contains(req.Prompt, "fail") {
				return renderapi.JobHandle{}, &renderapi.TransportError{Op: "submit", StatusCode: 400, Err: fmt.Errorf("unexpected status 400")}
			}
			return renderapi.JobHandle{ID: "job-" + req.ReferenceID, Request: req}, nil
		},
	}
	gen := NewGenerator(client, testGeneratorOptions(), testLogger(t))
	runner := NewRunner(gen, 0, testLogger(t))

	dir := t.TempDir()
	names := []string{"hero", "villain", "tileset", "banner"}
	tasks := make([]AssetTask, 0, len(names))
	for i, name := range names {
		prompt := "sprite of " + name
		if i%2 == 1 {
			prompt += " fail"
		}
		tasks = append(tasks, AssetTask{
			Name:       name,
			Request:    renderapi.GenerationRequest{Prompt: prompt, ReferenceID: name},
			TargetPath: filepath.Join(dir, name+".png"),
		})
	}

	result := runner.RunApproach(context.Background(), "glyph-sd-xl", "baseline", tasks)
	if len(result.Outcomes) != len(tasks) {
		t.Fatalf("exactly one outcome per task required: got %d, want %d", len(result.Outcomes), len(tasks))
	}
	for i, o := range result.Outcomes {
		if o.Task != names[i] {
			t.Fatalf("outcome %d out of order: got %s, want %s", i, o.Task, names[i])
		}
	}
	if got := result.Successes(); got != 2 {
		t.Fatalf("unexpected success count: %d", got)
	}
	if math.Abs(result.Score-4.0) > 1e-9 {
		t.Fatalf("unexpected score: %v", result.Score)
	}
}

func TestRunApproachEmptyTaskList(t *testing.T) {
	gen := NewGenerator(&fakeRenderClient{}, testGeneratorOptions(), testLogger(t))
	runner := NewRunner(gen, 0, testLogger(t))

	result := runner.RunApproach(context.Background(), "glyph-sd-xl", "baseline", nil)
	if len(result.Outcomes) != 0 {
		t.Fatalf("unexpected outcomes: %d", len(result.Outcomes))
	}
	if result.Score != 0.0 {
		t.Fatalf("empty batch must score 0.0, got %v", result.Score)
	}
}
