// Package repository provides data access for the gateway's one durable
// concern: the handoff journal.  Every checkout the gate admits is
// recorded before the flow is torn down, so operators can answer "what
// did we hand to payments and when" without consulting the storefront.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// HandoffRecord is the persistence model for one validated checkout
// handoff.
//
// Fields:
//  ID               – primary key of the handoff_journal row.
//  BookingID        – gateway booking-flow identifier.
//  SessionID        – storefront booking-session identifier.
//  UserID           – user the session belonged to.
//  ShowtimeID       – showtime the selection was scoped to.
//  MovieTitle       – denormalised movie title for readable reports.
//  SeatLabels       – human-readable seat names, comma-joined in the DB.
//  TotalAmountCents – validated selection total in cents.
//  HandedOffAt      – UTC instant the upstream checkout call succeeded.
type HandoffRecord struct {
	ID               uint64    `json:"id"`
	BookingID        string    `json:"booking_id"`
	SessionID        string    `json:"session_id"`
	UserID           uint64    `json:"user_id"`
	ShowtimeID       uint64    `json:"showtime_id"`
	MovieTitle       string    `json:"movie_title"`
	SeatLabels       []string  `json:"seats"`
	TotalAmountCents uint32    `json:"total_amount_cents"`
	HandedOffAt      time.Time `json:"handed_off_at"`
}

// JournalRepo provides access to the handoff_journal table.  All
// timestamps are stored and compared in UTC.
type JournalRepo struct {
	db *sql.DB
}

// NewJournalRepo returns a JournalRepo bound to the provided database.
func NewJournalRepo(db *sql.DB) *JournalRepo { return &JournalRepo{db: db} }

// Record inserts one handoff row.  The ID field of the record is filled
// in from the insert result.  Callers treat failures as non-fatal: a
// journal miss must never unwind a checkout that already succeeded
// upstream.
func (r *JournalRepo) Record(ctx context.Context, rec *HandoffRecord) error {
	const q = `INSERT INTO handoff_journal
	           (booking_id, session_id, user_id, showtime_id, movie_title, seat_labels, total_amount_cents, handed_off_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rec.BookingID, rec.SessionID, rec.UserID, rec.ShowtimeID,
		rec.MovieTitle, strings.Join(rec.SeatLabels, ","),
		rec.TotalAmountCents, rec.HandedOffAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = uint64(id)
	}
	return nil
}

// ListByUser returns a user's handoffs, newest first.  An empty result
// is a valid answer, not an error.
func (r *JournalRepo) ListByUser(ctx context.Context, userID uint64) ([]HandoffRecord, error) {
	const q = `SELECT id, booking_id, session_id, user_id, showtime_id, movie_title, seat_labels, total_amount_cents, handed_off_at
	           FROM handoff_journal
	           WHERE user_id = ?
	           ORDER BY handed_off_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HandoffRecord
	for rows.Next() {
		var (
			rec    HandoffRecord
			labels string
		)
		if err := rows.Scan(&rec.ID, &rec.BookingID, &rec.SessionID, &rec.UserID,
			&rec.ShowtimeID, &rec.MovieTitle, &labels, &rec.TotalAmountCents, &rec.HandedOffAt); err != nil {
			return nil, err
		}
		if labels != "" {
			rec.SeatLabels = strings.Split(labels, ",")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
