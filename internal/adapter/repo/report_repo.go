// Package repo persists finished comparison reports to Postgres so runs can
// be reviewed later through the report server.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spriteforge/internal/infra"
	"spriteforge/internal/pipeline"
	"spriteforge/internal/sqlinline"
)

// ErrReportNotFound indicates no archived report exists for the run id.
var ErrReportNotFound = errors.New("repo: report not found")

// ReportSummary is the listing row for archived reports.
type ReportSummary struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	BestScore   float64   `json:"best_score"`
}

// ReportRepo stores and retrieves comparison reports.
type ReportRepo struct {
	sql infra.SQLExecutor
}

// NewReportRepo creates a report repository over the given executor.
func NewReportRepo(sql infra.SQLExecutor) *ReportRepo {
	return &ReportRepo{sql: sql}
}

// Save archives a report. Re-saving the same run id overwrites the previous
// payload.
func (r *ReportRepo) Save(ctx context.Context, report pipeline.ComparisonReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("repo: encode report: %w", err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertReport,
		report.RunID,
		report.GeneratedAt,
		bestScore(report),
		payload,
	)
	if err != nil {
		return fmt.Errorf("repo: save report: %w", err)
	}
	return nil
}

// Get loads one archived report by run id.
func (r *ReportRepo) Get(ctx context.Context, runID string) (pipeline.ComparisonReport, error) {
	var payload []byte
	row := r.sql.QueryRow(ctx, sqlinline.QSelectReport, runID)
	if err := row.Scan(&payload); err != nil {
		if infra.IsNoRows(err) {
			return pipeline.ComparisonReport{}, ErrReportNotFound
		}
		return pipeline.ComparisonReport{}, fmt.Errorf("repo: load report: %w", err)
	}
	var report pipeline.ComparisonReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return pipeline.ComparisonReport{}, fmt.Errorf("repo: decode report: %w", err)
	}
	return report, nil
}

// List returns recent archived reports, newest first.
func (r *ReportRepo) List(ctx context.Context) ([]ReportSummary, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListReports)
	if err != nil {
		return nil, fmt.Errorf("repo: list reports: %w", err)
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var s ReportSummary
		if err := rows.Scan(&s.RunID, &s.GeneratedAt, &s.BestScore); err != nil {
			return nil, fmt.Errorf("repo: scan report row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate report rows: %w", err)
	}
	return summaries, nil
}

func bestScore(report pipeline.ComparisonReport) float64 {
	best := 0.0
	for _, a := range report.Approaches {
		if a.Score > best {
			best = a.Score
		}
	}
	return best
}
