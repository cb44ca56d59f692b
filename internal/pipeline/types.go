// Package pipeline drives generation jobs from submission through polling,
// download, and validation, and aggregates batches of them into a comparison
// report across model approaches.
package pipeline

import (
	"context"
	"time"

	"spriteforge/internal/renderapi"
)

// renderClient is the slice of the render service consumed by the pipeline.
// *renderapi.Client satisfies it; tests substitute fakes.
type renderClient interface {
	Submit(ctx context.Context, req renderapi.GenerationRequest) (renderapi.JobHandle, error)
	FetchStatus(ctx context.Context, handle renderapi.JobHandle) (renderapi.JobStatusSnapshot, error)
	FetchBytes(ctx context.Context, ref renderapi.ArtifactRef) ([]byte, error)
}

// JobStatus enumerates the local job lifecycle states.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobTimedOut   JobStatus = "timed_out"
)

// Terminal reports whether no further transition can occur.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobTimedOut:
		return true
	}
	return false
}

// Job is the poller's view of a submitted generation. It is mutated only by
// the poller and becomes immutable once Status is terminal.
type Job struct {
	Handle       renderapi.JobHandle
	Status       JobStatus
	Artifacts    []renderapi.ArtifactRef
	ErrorMessage string
}

// DownloadedAsset records a validated artifact on local disk.
type DownloadedAsset struct {
	Ref    renderapi.ArtifactRef `json:"-"`
	URL    string                `json:"url"`
	Path   string                `json:"path"`
	Size   int64                 `json:"size"`
	Width  int                   `json:"width"`
	Height int                   `json:"height"`
}

// AssetTask is one unit of requested generation work. Immutable; the model
// identifier is supplied per approach at run time.
type AssetTask struct {
	Name       string
	Request    renderapi.GenerationRequest
	TargetPath string
}

// Outcome is the single result of attempting one AssetTask. Exactly one
// Outcome exists per task; FailureReason is empty on success.
type Outcome struct {
	Task          string           `json:"task"`
	Asset         *DownloadedAsset `json:"asset,omitempty"`
	FailureReason string           `json:"failure_reason,omitempty"`
	StatusCode    int              `json:"status_code,omitempty"`
}

// Success reports whether the task produced a validated asset.
func (o Outcome) Success() bool {
	return o.FailureReason == "" && o.Asset != nil
}

// Approach names one model configuration evaluated against the task set.
type Approach struct {
	Model string `json:"model"`
	Name  string `json:"name"`
}

// ApproachResult aggregates one approach's ordered outcomes. Score is a pure
// function of the outcome list and is never mutated after computation.
type ApproachResult struct {
	Model    string    `json:"model"`
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Outcomes []Outcome `json:"outcomes"`
	Score    float64   `json:"score"`
}

// Successes counts outcomes that produced an asset.
func (r ApproachResult) Successes() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success() {
			n++
		}
	}
	return n
}

// ComparisonReport is the final aggregate across all approaches.
type ComparisonReport struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Approaches  []ApproachResult `json:"approaches"`
}
