package accident

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Report is an on-site accident record. The personal fields are retained only
// until the following midnight, after which the anonymiser overwrites them.
type Report struct {
	ID             string     `json:"id"`
	Date           time.Time  `json:"date"`
	Description    string     `json:"description,omitempty"`
	InjuredName    string     `json:"injuredName,omitempty"`
	InjuredAddress string     `json:"injuredAddress,omitempty"`
	FirstAiderName string     `json:"firstAiderName,omitempty"`
	ReporterName   string     `json:"reporterName,omitempty"`
	AnonymizedAt   *time.Time `json:"anonymizedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Report, error) {
	const q = `
SELECT id, date, description,
       COALESCE(injured_name, ''), COALESCE(injured_address, ''),
       COALESCE(first_aider_name, ''), COALESCE(reporter_name, ''),
       anonymized_at, created_at
FROM accident_reports
ORDER BY date DESC, created_at DESC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(
			&rep.ID, &rep.Date, &rep.Description,
			&rep.InjuredName, &rep.InjuredAddress,
			&rep.FirstAiderName, &rep.ReporterName,
			&rep.AnonymizedAt, &rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *Repository) Insert(ctx context.Context, rep *Report) error {
	const q = `
INSERT INTO accident_reports (id, date, description, injured_name, injured_address,
                              first_aider_name, reporter_name)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at
`
	return r.db.QueryRow(ctx, q,
		rep.ID, rep.Date, rep.Description, rep.InjuredName, rep.InjuredAddress,
		rep.FirstAiderName, rep.ReporterName,
	).Scan(&rep.CreatedAt)
}

// Anonymise overwrites the personal fields of reports that still carry any,
// stamping anonymized_at. In real mode only reports dated before today (in
// the given local time) qualify; test mode drops the date rule so accelerated
// schedules see an effect immediately.
func (r *Repository) Anonymise(ctx context.Context, now time.Time, testMode bool) (int64, error) {
	q := `
UPDATE accident_reports
SET injured_name = 'Anonymised',
    injured_address = 'Anonymised',
    first_aider_name = 'Anonymised',
    reporter_name = 'Anonymised',
    anonymized_at = $1
WHERE anonymized_at IS NULL
  AND (COALESCE(injured_name, '') <> ''
    OR COALESCE(injured_address, '') <> ''
    OR COALESCE(first_aider_name, '') <> ''
    OR COALESCE(reporter_name, '') <> '')
`
	args := []any{now}
	if !testMode {
		q += ` AND date < $2`
		args = append(args, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	}

	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
