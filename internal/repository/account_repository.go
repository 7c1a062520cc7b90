package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gymdesk/gym-booking-api/internal/model"
	"github.com/gymdesk/gym-booking-api/internal/utils"
)

// AccountRepo provides CRUD operations on the `users` table. It owns the
// registration construction rule: the initial status of an account is
// derived from its role (members start pending, trainers and admins start
// active) and is never accepted from the caller.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountCols = "id, first_name, last_name, email, password_hash, role, status, created_at, updated_at"

func scanAccount(row *sql.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash,
		&a.Role, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts an account and returns it fully populated. The role must
// already be normalized (model.NormalizeRole); status is derived here so
// no code path can create e.g. a pending trainer. Duplicate emails map to
// ErrEmailExists.
func (r *AccountRepo) Create(ctx context.Context, firstName, lastName, email, password, role string, cost int) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.Account{}, err
	}
	status := model.InitialStatus(role)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password_hash, role, status) VALUES (?,?,?,?,?,?)",
		firstName, lastName, email, hash, role, status)
	if err != nil {
		// MySQL error 1062: duplicate entry for the unique email key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Account{}, ErrEmailExists
		}
		return model.Account{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Account{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM users WHERE id=? LIMIT 1", id))
}

// StatusByID returns only the status column for the given account. The
// status gate middleware calls this on every authenticated request, so it
// stays deliberately narrow.
func (r *AccountRepo) StatusByID(ctx context.Context, id uint64) (string, error) {
	var status string
	err := r.DB.QueryRowContext(ctx,
		"SELECT status FROM users WHERE id=? LIMIT 1", id).Scan(&status)
	return status, err
}

// ListMembers returns all approved member accounts, newest first.
func (r *AccountRepo) ListMembers(ctx context.Context) ([]model.Account, error) {
	return r.listByRoleStatus(ctx,
		"SELECT "+accountCols+" FROM users WHERE role=? AND status=? ORDER BY created_at DESC",
		model.RoleMember, model.StatusActive)
}

// ListPendingMembers returns member accounts awaiting an admin decision,
// newest first.
func (r *AccountRepo) ListPendingMembers(ctx context.Context) ([]model.Account, error) {
	return r.listByRoleStatus(ctx,
		"SELECT "+accountCols+" FROM users WHERE role=? AND status=? ORDER BY created_at DESC",
		model.RoleMember, model.StatusPending)
}

// ListTrainers returns all trainer accounts ordered by first name.
func (r *AccountRepo) ListTrainers(ctx context.Context) ([]model.Account, error) {
	return r.listByRoleStatus(ctx,
		"SELECT "+accountCols+" FROM users WHERE role=? ORDER BY first_name ASC",
		model.RoleTrainer)
}

func (r *AccountRepo) listByRoleStatus(ctx context.Context, query string, args ...interface{}) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Account, 0)
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash,
			&a.Role, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateMemberStatus applies an admin approval or rejection to a pending
// member. Only the pending->active and pending->rejected transitions exist;
// the WHERE clause refuses to touch accounts in any other state, and
// sql.ErrNoRows is returned when nothing matched (unknown id, non-member,
// or already decided).
func (r *AccountRepo) UpdateMemberStatus(ctx context.Context, id uint64, status string) error {
	if status != model.StatusActive && status != model.StatusRejected {
		return ErrForbidden
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET status=? WHERE id=? AND role=? AND status=?",
		status, id, model.RoleMember, model.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMember removes a member account together with its bookings and
// brings the affected class counters back in line with the ledger, all in
// one transaction. Returns sql.ErrNoRows for unknown ids so the handler
// can answer 404.
func (r *AccountRepo) DeleteMember(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the classes the member is booked into before deleting, so
	// concurrent booking writes against them serialize with this cleanup.
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT c.id FROM classes c JOIN bookings b ON b.class_id = c.id WHERE b.user_id = ? FOR UPDATE`, id)
	if err != nil {
		return err
	}
	classIDs := make([]uint64, 0)
	for rows.Next() {
		var cid uint64
		if err := rows.Scan(&cid); err != nil {
			rows.Close()
			return err
		}
		classIDs = append(classIDs, cid)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM users WHERE id=? AND role=?", id, model.RoleMember)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	// Bookings go with the user via the FK cascade; recompute each touched
	// counter from the ledger so current_bookings cannot drift.
	for _, cid := range classIDs {
		if _, err := tx.ExecContext(ctx,
			"UPDATE classes SET current_bookings = (SELECT COUNT(*) FROM bookings WHERE class_id = ?) WHERE id = ?",
			cid, cid); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
