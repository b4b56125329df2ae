package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TypeStatusChange = "status_change"
	TypeCancelled    = "cancelled"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, bookingID, eventType, summary, actor string, occurredAt time.Time) error {
	const q = `
INSERT INTO booking_events (booking_id, event_type, summary, actor, occurred_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.db.Exec(ctx, q, bookingID, eventType, summary, actor, occurredAt)
	return err
}

// InsertTx is the transactional variant, for callers that pair the event with
// the write it describes.
func InsertTx(ctx context.Context, tx pgx.Tx, bookingID, eventType, summary, actor string, occurredAt time.Time) error {
	const q = `
INSERT INTO booking_events (booking_id, event_type, summary, actor, occurred_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := tx.Exec(ctx, q, bookingID, eventType, summary, actor, occurredAt)
	return err
}

// RecordStatusChange satisfies the status engine's transition-recorder
// contract.
func (r *Repository) RecordStatusChange(ctx context.Context, bookingID, from, to string, at time.Time) error {
	summary := fmt.Sprintf("status changed from %s to %s", from, to)
	return r.Insert(ctx, bookingID, TypeStatusChange, summary, "status-engine", at)
}
