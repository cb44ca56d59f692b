// Package httpapi exposes archived comparison reports over HTTP for the
// report server binary.
package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router over the report archive.
func NewRouter(app *App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/reports", func(r chi.Router) {
		r.Get("/", app.ListReports)
		r.Get("/{runID}", app.GetReport)
	})

	return r
}
