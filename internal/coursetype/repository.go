package coursetype

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CourseType is the catalog definition of a course. DurationDays is the
// nominal fractional length (1.5 means a day and a half) that booking
// creation and the status engine both derive day schedules from.
type CourseType struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	DurationDays  string    `json:"durationDays"`
	HasExam       bool      `json:"hasExam"`
	NumberOfExams *int      `json:"numberOfExams,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Duration parses DurationDays; malformed values come back zero, which
// downstream duration math treats as "cannot derive".
func (ct CourseType) Duration() decimal.Decimal {
	d, _ := decimal.NewFromString(ct.DurationDays)
	return d
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]CourseType, error) {
	const q = `
SELECT id, name, code, duration_days::text, has_exam, number_of_exams, created_at
FROM course_types
ORDER BY code ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CourseType
	for rows.Next() {
		var ct CourseType
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.Code, &ct.DurationDays, &ct.HasExam, &ct.NumberOfExams, &ct.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*CourseType, error) {
	const q = `
SELECT id, name, code, duration_days::text, has_exam, number_of_exams, created_at
FROM course_types
WHERE id = $1
`
	var ct CourseType
	if err := r.db.QueryRow(ctx, q, id).Scan(
		&ct.ID, &ct.Name, &ct.Code, &ct.DurationDays, &ct.HasExam, &ct.NumberOfExams, &ct.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *Repository) Insert(ctx context.Context, ct *CourseType) error {
	const q = `
INSERT INTO course_types (id, name, code, duration_days, has_exam, number_of_exams)
VALUES ($1, $2, $3, $4::numeric, $5, $6)
RETURNING created_at
`
	return r.db.QueryRow(ctx, q, ct.ID, ct.Name, ct.Code, ct.DurationDays, ct.HasExam, ct.NumberOfExams).
		Scan(&ct.CreatedAt)
}
