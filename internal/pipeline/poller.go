package pipeline

import (
	"context"
	"strings"
	"time"

	"spriteforge/internal/infra"
	"spriteforge/internal/renderapi"
)

// maxConsecutivePollFailures bounds transport errors tolerated back to back
// before the poll is abandoned with a PollError.
const maxConsecutivePollFailures = 3

// Poller turns a freshly submitted job into a terminal Job record by
// repeatedly querying the render service.
type Poller struct {
	client renderClient
	logger infra.Logger
}

// NewPoller constructs a poller over the given client.
func NewPoller(client renderClient, logger infra.Logger) *Poller {
	return &Poller{client: client, logger: logger}
}

// AwaitCompletion polls the job until a terminal state or until maxWait
// elapses. A timeout is a normal outcome: the returned Job carries status
// JobTimedOut and the error is nil. The only error returned is *PollError,
// after maxConsecutivePollFailures transport failures in a row; the returned
// Job is then Failed-equivalent so callers can record it without inspecting
// the error.
func (p *Poller) AwaitCompletion(ctx context.Context, handle renderapi.JobHandle, maxWait, pollInterval time.Duration) (Job, error) {
	job := Job{Handle: handle, Status: JobQueued}
	deadline := time.Now().Add(maxWait)
	consecutive := 0
	var lastErr error

	for {
		snapshot, err := p.client.FetchStatus(ctx, handle)
		if err != nil {
			consecutive++
			lastErr = err
			p.logger.Warn().
				Err(err).
				Str("job_id", handle.ID).
				Int("consecutive_failures", consecutive).
				Msg("poll: status fetch failed")
			if consecutive >= maxConsecutivePollFailures {
				job.Status = JobFailed
				job.ErrorMessage = lastErr.Error()
				return job, &PollError{JobID: handle.ID, Failures: consecutive, Err: lastErr}
			}
			// One extra interval of backoff after a transport failure.
			if timedOut := p.wait(ctx, 2*pollInterval, deadline); timedOut {
				job.Status = JobTimedOut
				job.ErrorMessage = "gave up waiting for remote completion"
				return job, nil
			}
			continue
		}
		consecutive = 0

		status := mapRemoteStatus(snapshot.Status)
		p.logger.Debug().
			Str("job_id", handle.ID).
			Str("remote_status", snapshot.Status).
			Str("status", string(status)).
			Msg("poll: observed status")

		job.Status = status
		if status.Terminal() {
			job.Artifacts = snapshot.Artifacts
			job.ErrorMessage = snapshot.Error
			return job, nil
		}

		if timedOut := p.wait(ctx, pollInterval, deadline); timedOut {
			job.Status = JobTimedOut
			job.ErrorMessage = "gave up waiting for remote completion"
			return job, nil
		}
	}
}

// wait sleeps for interval but never past the deadline. It reports true when
// the wall-clock budget is spent. Context cancellation counts against the
// budget as well; there is no mid-flight abort of the remote job.
func (p *Poller) wait(ctx context.Context, interval time.Duration, deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return true
	}
	if interval > remaining {
		interval = remaining
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
	}
	return !time.Now().Before(deadline)
}

// mapRemoteStatus folds the service's open-ended status vocabulary onto the
// local enum. Unrecognized values are treated as still processing so a new
// remote status can never fail a job outright; maxWait bounds the optimism.
func mapRemoteStatus(remote string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(remote)) {
	case "queued", "pending", "initial", "accepted":
		return JobQueued
	case "succeeded", "success", "done", "completed", "complete":
		return JobCompleted
	case "failed", "error", "canceled", "cancelled", "rejected":
		return JobFailed
	default:
		return JobProcessing
	}
}
