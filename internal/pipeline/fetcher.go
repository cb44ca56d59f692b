package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"spriteforge/internal/infra"
	"spriteforge/internal/renderapi"
)

// Fetcher downloads a completed job's artifact, validates it, and installs it
// at its canonical destination path.
type Fetcher struct {
	client renderClient
	logger infra.Logger
}

// NewFetcher constructs a fetcher over the given client.
func NewFetcher(client renderClient, logger infra.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

// DownloadAndValidate fetches the artifact bytes, rejects empty or
// undecodable payloads, writes them to a temporary file beside destPath, and
// renames into place. An existing file at destPath is overwritten; generation
// is idempotent per destination and last write wins. Every failure is a
// *DownloadError and leaves nothing at destPath.
func (f *Fetcher) DownloadAndValidate(ctx context.Context, ref renderapi.ArtifactRef, destPath string) (DownloadedAsset, error) {
	data, err := f.client.FetchBytes(ctx, ref)
	if err != nil {
		return DownloadedAsset{}, &DownloadError{Reason: "fetch artifact bytes", Err: err}
	}
	if len(data) == 0 {
		return DownloadedAsset{}, &DownloadError{Reason: fmt.Sprintf("empty payload from %s", ref.URL)}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return DownloadedAsset{}, &DownloadError{Reason: "decode artifact image", Err: err}
	}
	bounds := img.Bounds()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return DownloadedAsset{}, &DownloadError{Reason: "create destination directory", Err: err}
	}
	tmpPath := destPath + ".partial"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return DownloadedAsset{}, &DownloadError{Reason: "write temporary file", Err: err}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return DownloadedAsset{}, &DownloadError{Reason: "install artifact at destination", Err: err}
	}

	asset := DownloadedAsset{
		Ref:    ref,
		URL:    ref.URL,
		Path:   destPath,
		Size:   int64(len(data)),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	f.logger.Debug().
		Str("path", destPath).
		Int64("size", asset.Size).
		Int("width", asset.Width).
		Int("height", asset.Height).
		Msg("fetch: artifact installed")
	return asset, nil
}
