package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"spriteforge/internal/pipeline"
)

// WriteJSON persists the report as pretty-printed JSON under dir and returns
// the file path. The file name embeds the run id so successive runs never
// clobber each other.
func WriteJSON(r pipeline.ComparisonReport, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: ensure output dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: encode report: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("comparison_%s.json", r.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("report: write report: %w", err)
	}
	return path, nil
}
