package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"spriteforge/internal/adapter/repo"
	"spriteforge/internal/pipeline"
)

type fakeArchive struct {
	reports map[string]pipeline.ComparisonReport
}

func (f *fakeArchive) Get(_ context.Context, runID string) (pipeline.ComparisonReport, error) {
	r, ok := f.reports[runID]
	if !ok {
		return pipeline.ComparisonReport{}, repo.ErrReportNotFound
	}
	return r, nil
}

func (f *fakeArchive) List(context.Context) ([]repo.ReportSummary, error) {
	var out []repo.ReportSummary
	for id, r := range f.reports {
		out = append(out, repo.ReportSummary{RunID: id, GeneratedAt: r.GeneratedAt})
	}
	return out, nil
}

func newTestApp(reports map[string]pipeline.ComparisonReport) *App {
	return NewApp(&fakeArchive{reports: reports}, zerolog.Nop())
}

func TestHealth(t *testing.T) {
	router := NewRouter(newTestApp(nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	report := pipeline.ComparisonReport{
		RunID:       "run-1",
		GeneratedAt: time.Now().UTC(),
		Approaches:  []pipeline.ApproachResult{{Model: "glyph-sd-xl", Name: "baseline", Label: "A", Score: 10}},
	}
	router := NewRouter(newTestApp(map[string]pipeline.ComparisonReport{"run-1": report}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/run-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var decoded pipeline.ComparisonReport
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded.RunID != "run-1" || len(decoded.Approaches) != 1 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestGetReportNotFound(t *testing.T) {
	router := NewRouter(newTestApp(nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestListReportsAlwaysReturnsArray(t *testing.T) {
	router := NewRouter(newTestApp(nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var decoded struct {
		Reports []repo.ReportSummary `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded.Reports == nil {
		t.Fatalf("reports must be an empty array, not null")
	}
}
