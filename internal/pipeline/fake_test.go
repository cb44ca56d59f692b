package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"spriteforge/internal/renderapi"
)

// fakeRenderClient scripts the remote service for pipeline tests. Behavior
// funcs default to a job that completes immediately with one artifact.
type fakeRenderClient struct {
	mu          sync.Mutex
	submitFn    func(renderapi.GenerationRequest) (renderapi.JobHandle, error)
	statusFn    func(renderapi.JobHandle) (renderapi.JobStatusSnapshot, error)
	bytesFn     func(renderapi.ArtifactRef) ([]byte, error)
	statusCalls int
}

func (f *fakeRenderClient) Submit(_ context.Context, req renderapi.GenerationRequest) (renderapi.JobHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitFn != nil {
		return f.submitFn(req)
	}
	return renderapi.JobHandle{ID: "job-1", Request: req}, nil
}

func (f *fakeRenderClient) FetchStatus(_ context.Context, handle renderapi.JobHandle) (renderapi.JobStatusSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusFn != nil {
		return f.statusFn(handle)
	}
	return renderapi.JobStatusSnapshot{
		Status:    "succeeded",
		Artifacts: []renderapi.ArtifactRef{{URL: "https://cdn.example.com/out.png"}},
	}, nil
}

func (f *fakeRenderClient) FetchBytes(_ context.Context, ref renderapi.ArtifactRef) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bytesFn != nil {
		return f.bytesFn(ref)
	}
	return testPNG(8, 8), nil
}

func (f *fakeRenderClient) statusCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// testPNG encodes a solid-color PNG so the decode check in the fetcher
// passes.
func testPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func testLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.Nop()
}
