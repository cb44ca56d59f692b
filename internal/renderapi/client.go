// Package renderapi is the HTTP client for the Glyphforge render service.
// It carries no retry or orchestration logic; callers own those policies.
package renderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"spriteforge/internal/infra"
)

// ErrMissingCredentials indicates the client was configured without the
// API key pair.
var ErrMissingCredentials = errors.New("renderapi: api key and secret are required")

// Options configures the render service client.
type Options struct {
	APIKey         string
	APISecret      string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs authenticated HTTP calls against the render service.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.glyphforge.io/v1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		apiSecret:  strings.TrimSpace(opts.APISecret),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

type submitPayload struct {
	Model         string  `json:"model"`
	Prompt        string  `json:"prompt"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Steps         int     `json:"steps"`
	GuidanceScale float64 `json:"guidance_scale"`
	Seed          *int64  `json:"seed,omitempty"`
	ReferenceID   string  `json:"reference_id,omitempty"`
}

type submitResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Submit enqueues a generation job and returns its handle.
func (c *Client) Submit(ctx context.Context, req GenerationRequest) (JobHandle, error) {
	if !c.HasCredentials() {
		return JobHandle{}, ErrMissingCredentials
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return JobHandle{}, errors.New("renderapi: prompt is required")
	}
	payload := submitPayload{
		Model:         req.Model,
		Prompt:        req.Prompt,
		Width:         req.Width,
		Height:        req.Height,
		Steps:         req.Steps,
		GuidanceScale: req.GuidanceScale,
		Seed:          req.Seed,
		ReferenceID:   req.ReferenceID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return JobHandle{}, fmt.Errorf("renderapi: encode request: %w", err)
	}

	raw, status, err := c.do(ctx, "submit", http.MethodPost, c.baseURL+"/generations", bytes.NewReader(body))
	if err != nil {
		return JobHandle{}, err
	}

	var decoded submitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return JobHandle{}, &TransportError{Op: "submit", StatusCode: status, Body: string(raw), Err: err}
	}
	if decoded.ID == "" {
		return JobHandle{}, &TransportError{Op: "submit", StatusCode: status, Body: string(raw), Err: errors.New("missing job id")}
	}
	c.logger.Debug().
		Str("job_id", decoded.ID).
		Str("model", req.Model).
		Str("status", decoded.Status).
		Msg("renderapi: job submitted")
	return JobHandle{ID: decoded.ID, Request: req}, nil
}

// statusResponse tolerates the three artifact shapes observed in the wild:
// output.artifacts[].url, top-level artifacts[] of plain URLs, and
// result.images[]. They are tried in that order.
type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
	Output struct {
		Artifacts []struct {
			URL         string `json:"url"`
			SizeBytes   int64  `json:"size_bytes"`
			ContentType string `json:"content_type"`
		} `json:"artifacts"`
	} `json:"output"`
	Artifacts []string `json:"artifacts"`
	Result    struct {
		Images []string `json:"images"`
	} `json:"result"`
}

// FetchStatus retrieves the remote view of a submitted job.
func (c *Client) FetchStatus(ctx context.Context, handle JobHandle) (JobStatusSnapshot, error) {
	if !c.HasCredentials() {
		return JobStatusSnapshot{}, ErrMissingCredentials
	}
	if handle.ID == "" {
		return JobStatusSnapshot{}, errors.New("renderapi: job id is required")
	}

	endpoint := fmt.Sprintf("%s/generations/%s", c.baseURL, url.PathEscape(handle.ID))
	raw, status, err := c.do(ctx, "status", http.MethodGet, endpoint, nil)
	if err != nil {
		return JobStatusSnapshot{}, err
	}

	var decoded statusResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return JobStatusSnapshot{}, &TransportError{Op: "status", StatusCode: status, Body: string(raw), Err: err}
	}
	return JobStatusSnapshot{
		Status:    decoded.Status,
		Artifacts: extractArtifacts(decoded),
		Error:     decoded.Error,
	}, nil
}

// FetchBytes downloads the raw bytes behind an artifact reference.
func (c *Client) FetchBytes(ctx context.Context, ref ArtifactRef) ([]byte, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref.URL))
	if err != nil || parsed.Scheme == "" {
		return nil, &TransportError{Op: "fetch", Err: fmt.Errorf("invalid artifact url: %q", ref.URL)}
	}
	raw, _, err := c.do(ctx, "fetch", http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// do issues one authenticated request and normalizes every failure into a
// *TransportError. Bodies of non-2xx responses are preserved for callers.
func (c *Client) do(ctx context.Context, op, method, endpoint string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Api-Secret", c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: op, StatusCode: resp.StatusCode, Timeout: isTimeout(err), Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return raw, resp.StatusCode, nil
}

func extractArtifacts(resp statusResponse) []ArtifactRef {
	if len(resp.Output.Artifacts) > 0 {
		refs := make([]ArtifactRef, 0, len(resp.Output.Artifacts))
		for _, a := range resp.Output.Artifacts {
			if strings.TrimSpace(a.URL) == "" {
				continue
			}
			refs = append(refs, ArtifactRef{URL: a.URL, SizeHint: a.SizeBytes, ContentType: a.ContentType})
		}
		if len(refs) > 0 {
			return refs
		}
	}
	for _, shape := range [][]string{resp.Artifacts, resp.Result.Images} {
		refs := make([]ArtifactRef, 0, len(shape))
		for _, u := range shape {
			if strings.TrimSpace(u) == "" {
				continue
			}
			refs = append(refs, ArtifactRef{URL: u})
		}
		if len(refs) > 0 {
			return refs
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
