package repository

import (
	"context"
	"database/sql"

	"github.com/gymdesk/gym-booking-api/internal/model"
)

// ProgramRepo reads the `programs` reference table.
type ProgramRepo struct {
	db *sql.DB
}

func NewProgramRepo(db *sql.DB) *ProgramRepo { return &ProgramRepo{db: db} }

// ListAll returns every program ordered by name.
func (r *ProgramRepo) ListAll(ctx context.Context) ([]model.Program, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, created_at FROM programs ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Program, 0)
	for rows.Next() {
		var p model.Program
		var desc sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &desc, &p.CreatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			p.Description = desc.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
