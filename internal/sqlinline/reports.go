// Package sqlinline holds the archive's SQL as marked constants. The first
// line of every query is a `--sql <uuid>` marker consumed by infra.SQLRunner
// for log correlation.
package sqlinline

const QInsertReport = `--sql 7f3b9a52-1c84-4e0d-9b6a-2d5f8c417e93
insert into comparison_reports (run_id, generated_at, best_score, payload)
values ($1, $2, $3, $4)
on conflict (run_id) do update
set generated_at = excluded.generated_at,
    best_score   = excluded.best_score,
    payload      = excluded.payload;
`

const QSelectReport = `--sql c2d7e681-95af-4b3c-8d12-6e4a0f9b57c8
select payload
from comparison_reports
where run_id = $1;
`

const QListReports = `--sql 4a81fd09-63b7-4c2e-a5d4-90e1b82c376f
select run_id, generated_at, best_score
from comparison_reports
order by generated_at desc
limit 100;
`
