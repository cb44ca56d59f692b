package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spriteforge/internal/adapter/repo"
	"spriteforge/internal/infra"
	"spriteforge/internal/pipeline"
)

// reportArchive is the slice of the repository the handlers consume.
type reportArchive interface {
	Get(ctx context.Context, runID string) (pipeline.ComparisonReport, error)
	List(ctx context.Context) ([]repo.ReportSummary, error)
}

// App carries handler dependencies.
type App struct {
	Archive reportArchive
	Logger  infra.Logger
}

// NewApp constructs the handler container.
func NewApp(archive reportArchive, logger infra.Logger) *App {
	return &App{Archive: archive, Logger: logger}
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) ListReports(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.Archive.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("httpapi: list reports failed")
		a.json(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reports"})
		return
	}
	if summaries == nil {
		summaries = []repo.ReportSummary{}
	}
	a.json(w, http.StatusOK, map[string]any{"reports": summaries})
}

func (a *App) GetReport(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	report, err := a.Archive.Get(r.Context(), runID)
	if err != nil {
		if errors.Is(err, repo.ErrReportNotFound) {
			a.json(w, http.StatusNotFound, map[string]string{"error": "report not found"})
			return
		}
		a.Logger.Error().Err(err).Str("run_id", runID).Msg("httpapi: load report failed")
		a.json(w, http.StatusInternalServerError, map[string]string{"error": "failed to load report"})
		return
	}
	a.json(w, http.StatusOK, report)
}

func (a *App) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Logger.Error().Err(err).Msg("httpapi: encode response failed")
	}
}
