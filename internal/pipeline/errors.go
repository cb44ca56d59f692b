package pipeline

import (
	"errors"
	"fmt"
)

// ErrInsufficientApproaches is returned by Compare when fewer than
// minApproaches model approaches are requested. No partial report is built.
var ErrInsufficientApproaches = errors.New("pipeline: insufficient approaches for a comparison")

// PollError indicates the consecutive transport-failure bound was exceeded
// while polling a job. Callers treat it as a Failed-equivalent terminal
// outcome rather than a crash.
type PollError struct {
	JobID    string
	Failures int
	Err      error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("pipeline: polling job %s failed %d consecutive times: %v", e.JobID, e.Failures, e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}

// DownloadError indicates an artifact could not be fetched, validated, or
// written locally. The destination path is left untouched.
type DownloadError struct {
	Reason string
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pipeline: download failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("pipeline: download failed: %s", e.Reason)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
