package repository

import (
	"context"
	"database/sql"
)

// ClassRepo provides CRUD operations on the `classes` table. It never
// touches the current_bookings counter; that column belongs to BookingRepo.
type ClassRepo struct {
	db *sql.DB
}

// NewClassRepo constructs a ClassRepo given a DB handle.
func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{db: db} }

// ClassDetail is a class joined with its trainer display name and program
// name, as shown on the schedule and the admin class list.
type ClassDetail struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	ProgramID       *uint64 `json:"program_id"`
	TrainerID       *uint64 `json:"trainer_id"`
	DayOfWeek       uint8   `json:"day_of_week"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	Capacity        uint32  `json:"capacity"`
	CurrentBookings uint32  `json:"current_bookings"`
	IsActive        bool    `json:"is_active"`
	TrainerName     *string `json:"trainer_name"`
	ProgramName     *string `json:"program_name"`
}

const classDetailQuery = `SELECT c.id, c.name, c.description, c.program_id, c.trainer_id,
	   c.day_of_week, c.start_time, c.end_time, c.capacity, c.current_bookings, c.is_active,
	   CONCAT(t.first_name, ' ', t.last_name), p.name
FROM classes c
LEFT JOIN users t ON t.id = c.trainer_id
LEFT JOIN programs p ON p.id = c.program_id`

func scanClassDetail(rows *sql.Rows, d *ClassDetail) error {
	var programID, trainerID sql.NullInt64
	var trainerName, programName sql.NullString
	var desc sql.NullString
	if err := rows.Scan(&d.ID, &d.Name, &desc, &programID, &trainerID,
		&d.DayOfWeek, &d.StartTime, &d.EndTime, &d.Capacity, &d.CurrentBookings, &d.IsActive,
		&trainerName, &programName); err != nil {
		return err
	}
	if desc.Valid {
		d.Description = desc.String
	}
	if programID.Valid {
		v := uint64(programID.Int64)
		d.ProgramID = &v
	}
	if trainerID.Valid {
		v := uint64(trainerID.Int64)
		d.TrainerID = &v
	}
	if trainerName.Valid {
		v := trainerName.String
		d.TrainerName = &v
	}
	if programName.Valid {
		v := programName.String
		d.ProgramName = &v
	}
	return nil
}

// ListAll returns every class joined with trainer and program names,
// ordered by day of week then start time. Used for both the member
// schedule and the admin class list.
func (r *ClassRepo) ListAll(ctx context.Context) ([]ClassDetail, error) {
	rows, err := r.db.QueryContext(ctx, classDetailQuery+`
ORDER BY c.day_of_week, c.start_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ClassDetail, 0)
	for rows.Next() {
		var d ClassDetail
		if err := scanClassDetail(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByID returns a single class with trainer and program names. Returns
// ErrClassNotFound for unknown ids.
func (r *ClassRepo) GetByID(ctx context.Context, id uint64) (*ClassDetail, error) {
	rows, err := r.db.QueryContext(ctx, classDetailQuery+`
WHERE c.id = ? LIMIT 1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrClassNotFound
	}
	var d ClassDetail
	if err := scanClassDetail(rows, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ClassParams carries the writable columns for class creation and update.
// Capacity must be positive; handlers validate before calling.
type ClassParams struct {
	Name        string
	Description string
	ProgramID   *uint64
	TrainerID   *uint64
	DayOfWeek   uint8
	StartTime   string
	EndTime     string
	Capacity    uint32
	IsActive    bool
}

// Create inserts a class and returns it with joined names populated. New
// classes always start with zero bookings.
func (r *ClassRepo) Create(ctx context.Context, p ClassParams) (*ClassDetail, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO classes
		 (name, description, program_id, trainer_id, day_of_week, start_time, end_time, capacity, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, nullableID(p.ProgramID), nullableID(p.TrainerID),
		p.DayOfWeek, p.StartTime, p.EndTime, p.Capacity, p.IsActive)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update overwrites the writable columns of a class and returns the fresh
// row. Returns ErrClassNotFound for unknown ids. The current_bookings
// counter is deliberately left alone.
func (r *ClassRepo) Update(ctx context.Context, id uint64, p ClassParams) (*ClassDetail, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE classes
		 SET name = ?, description = ?, program_id = ?, trainer_id = ?,
			 day_of_week = ?, start_time = ?, end_time = ?, capacity = ?, is_active = ?
		 WHERE id = ?`,
		p.Name, p.Description, nullableID(p.ProgramID), nullableID(p.TrainerID),
		p.DayOfWeek, p.StartTime, p.EndTime, p.Capacity, p.IsActive, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// MySQL reports zero affected rows for no-op updates too, so check
		// existence before deciding this is a 404.
		var exists uint64
		if err := r.db.QueryRowContext(ctx, "SELECT id FROM classes WHERE id = ?", id).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrClassNotFound
			}
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a class; its bookings go with it via the FK cascade.
// Returns ErrClassNotFound for unknown ids.
func (r *ClassRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM classes WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClassNotFound
	}
	return nil
}

// TrainerClass is a class as seen by its assigned trainer, with program
// name and the confirmed attendee count derived from the ledger.
type TrainerClass struct {
	ID                 uint64  `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	DayOfWeek          uint8   `json:"day_of_week"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	Capacity           uint32  `json:"capacity"`
	IsActive           bool    `json:"is_active"`
	ProgramName        *string `json:"program_name"`
	ConfirmedAttendees uint32  `json:"confirmed_attendees"`
}

// ListByTrainer returns the classes assigned to a trainer ordered by day
// of week then start time. The attendee count is computed from the
// bookings ledger rather than the denormalized counter.
func (r *ClassRepo) ListByTrainer(ctx context.Context, trainerID uint64) ([]TrainerClass, error) {
	const q = `SELECT c.id, c.name, c.description, c.day_of_week, c.start_time, c.end_time,
					  c.capacity, c.is_active, p.name,
					  (SELECT COUNT(*) FROM bookings b WHERE b.class_id = c.id)
			   FROM classes c
			   LEFT JOIN programs p ON p.id = c.program_id
			   WHERE c.trainer_id = ?
			   ORDER BY c.day_of_week, c.start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]TrainerClass, 0)
	for rows.Next() {
		var t TrainerClass
		var desc, programName sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &desc, &t.DayOfWeek, &t.StartTime, &t.EndTime,
			&t.Capacity, &t.IsActive, &programName, &t.ConfirmedAttendees); err != nil {
			return nil, err
		}
		if desc.Valid {
			t.Description = desc.String
		}
		if programName.Valid {
			v := programName.String
			t.ProgramName = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullableID(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
