package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// BookingRepo is the sole writer of the bookings table and of the
// classes.current_bookings counter. Every write runs in a transaction that
// first takes a row lock on the class, which serializes the
// check-then-insert sequence per class: two concurrent bookings against
// the same class observe either the pre- or post-write state, never a
// partial one, and the counter can never exceed capacity. No cross-class
// coordination is needed.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create books the given account into the given class and returns the new
// booking id. It fails with ErrClassNotFound when the class does not
// exist, ErrClassFull when capacity is reached, and ErrAlreadyBooked when
// the account already holds a live booking for the class.
func (r *BookingRepo) Create(ctx context.Context, userID, classID uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the class row first. Everything below happens under this lock,
	// so the capacity check cannot race with another insert.
	var capacity, current uint32
	err = tx.QueryRowContext(ctx,
		"SELECT capacity, current_bookings FROM classes WHERE id = ? FOR UPDATE",
		classID).Scan(&capacity, &current)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrClassNotFound
		}
		return 0, err
	}
	if current >= capacity {
		return 0, ErrClassFull
	}

	var existing uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM bookings WHERE user_id = ? AND class_id = ? LIMIT 1",
		userID, classID).Scan(&existing)
	if err == nil {
		return 0, ErrAlreadyBooked
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (user_id, class_id, status) VALUES (?, ?, 'confirmed')",
		userID, classID)
	if err != nil {
		// The unique (user_id, class_id) key backs up the duplicate check.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrAlreadyBooked
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// Derive the counter from the ledger inside the same transaction
	// instead of incrementing it, so a crash or partial failure can never
	// leave it drifted.
	if _, err := tx.ExecContext(ctx,
		"UPDATE classes SET current_bookings = (SELECT COUNT(*) FROM bookings WHERE class_id = ?) WHERE id = ?",
		classID, classID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// Cancel deletes a booking owned by the given account and releases its
// slot. It fails with ErrBookingNotFound when the booking does not exist
// or belongs to a different account; the two cases are indistinguishable
// to the caller.
func (r *BookingRepo) Cancel(ctx context.Context, userID, bookingID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var classID uint64
	err = tx.QueryRowContext(ctx,
		"SELECT class_id FROM bookings WHERE id = ? AND user_id = ? LIMIT 1",
		bookingID, userID).Scan(&classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrBookingNotFound
		}
		return err
	}

	// Same lock order as Create: class row first, then the ledger write.
	var capacity uint32
	if err := tx.QueryRowContext(ctx,
		"SELECT capacity FROM classes WHERE id = ? FOR UPDATE", classID).Scan(&capacity); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", bookingID); err != nil {
		return err
	}
	// Recomputing from the ledger floors the counter at zero by
	// construction, guarding against pre-existing drift.
	if _, err := tx.ExecContext(ctx,
		"UPDATE classes SET current_bookings = (SELECT COUNT(*) FROM bookings WHERE class_id = ?) WHERE id = ?",
		classID, classID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// BookingDetail is a booking joined with its class schedule and the
// trainer's display name, as returned to members listing their bookings.
type BookingDetail struct {
	BookingID   uint64  `json:"booking_id"`
	ClassID     uint64  `json:"class_id"`
	Status      string  `json:"status"`
	ClassName   string  `json:"class_name"`
	DayOfWeek   uint8   `json:"day_of_week"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	TrainerName *string `json:"trainer_name"`
}

// ListByUser returns all bookings for the given account joined with class
// and trainer details, ordered by class day-of-week ascending. When no
// bookings exist an empty slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.class_id, b.status,
	                  c.name, c.day_of_week, c.start_time, c.end_time,
	                  CONCAT(t.first_name, ' ', t.last_name)
	           FROM bookings b
	           JOIN classes c ON c.id = b.class_id
	           LEFT JOIN users t ON t.id = c.trainer_id
	           WHERE b.user_id = ?
	           ORDER BY c.day_of_week ASC, c.start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var trainer sql.NullString
		if err := rows.Scan(&d.BookingID, &d.ClassID, &d.Status,
			&d.ClassName, &d.DayOfWeek, &d.StartTime, &d.EndTime, &trainer); err != nil {
			return nil, err
		}
		if trainer.Valid {
			name := trainer.String
			d.TrainerName = &name
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Attendee is one member on a class roster as shown to the trainer.
type Attendee struct {
	UserID      uint64    `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	BookingDate time.Time `json:"booking_date"`
}

// ListAttendeesForTrainer returns the roster for a class after verifying
// that the class is assigned to the calling trainer. It returns
// ErrClassNotFound for unknown classes and ErrForbidden when the class
// belongs to a different trainer.
func (r *BookingRepo) ListAttendeesForTrainer(ctx context.Context, classID, trainerID uint64) ([]Attendee, error) {
	var actualTrainer sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT trainer_id FROM classes WHERE id = ?", classID).Scan(&actualTrainer)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if !actualTrainer.Valid || uint64(actualTrainer.Int64) != trainerID {
		return nil, ErrForbidden
	}
	const q = `SELECT u.id, u.first_name, u.last_name, u.email, b.booking_date
	           FROM bookings b
	           JOIN users u ON u.id = b.user_id
	           WHERE b.class_id = ?
	           ORDER BY u.last_name ASC`
	rows, err := r.db.QueryContext(ctx, q, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Attendee, 0)
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.UserID, &a.FirstName, &a.LastName, &a.Email, &a.BookingDate); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
