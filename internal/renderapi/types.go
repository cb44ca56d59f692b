package renderapi

import "fmt"

// GenerationRequest identifies what to generate. Immutable once constructed.
type GenerationRequest struct {
	Prompt        string
	Model         string
	Width         int
	Height        int
	Steps         int
	GuidanceScale float64
	Seed          *int64
	// ReferenceID is a client-side correlation id echoed into service logs.
	ReferenceID string
}

// JobHandle couples the remote job identifier with its originating request.
type JobHandle struct {
	ID      string
	Request GenerationRequest
}

// JobStatusSnapshot is one observation of a remote job. The status string is
// the service's own vocabulary; mapping it onto local states is the poller's
// concern.
type JobStatusSnapshot struct {
	Status    string
	Artifacts []ArtifactRef
	Error     string
}

// ArtifactRef locates a generated artifact on the remote side.
type ArtifactRef struct {
	URL         string
	SizeHint    int64
	ContentType string
}

// TransportError is the failure type for every remote call. Timeout is set
// when the underlying cause was a deadline rather than a rejection.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Timeout    bool
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("renderapi: %s timed out: %v", e.Op, e.Err)
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("renderapi: %s failed: status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("renderapi: %s failed: status %d: %v", e.Op, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("renderapi: %s failed: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
