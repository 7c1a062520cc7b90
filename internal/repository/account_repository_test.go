package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/gymdesk/gym-booking-api/internal/model"
)

func newAccountRepoMock(t *testing.T) (*AccountRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewAccountRepo(db), mock, func() { db.Close() }
}

func accountRow(id uint64, role, status string) *sqlmock.Rows {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "password_hash",
		"role", "status", "created_at", "updated_at",
	}).AddRow(id, "Mia", "Stone", "mia@example.com", "$2a$04$hash", role, status, now, now)
}

func TestAccountCreate_MemberStartsPending(t *testing.T) {
	repo, mock, done := newAccountRepoMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Mia", "Stone", "mia@example.com", sqlmock.AnyArg(), "member", "pending").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(5)).
		WillReturnRows(accountRow(5, "member", "pending"))

	acct, err := repo.Create(context.Background(), "Mia", "Stone", "MIA@Example.com", "pw", model.RoleMember, 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if acct.Status != model.StatusPending {
		t.Fatalf("member status = %q, want pending", acct.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountCreate_TrainerStartsActive(t *testing.T) {
	repo, mock, done := newAccountRepoMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Mia", "Stone", "mia@example.com", sqlmock.AnyArg(), "trainer", "active").
		WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(6)).
		WillReturnRows(accountRow(6, "trainer", "active"))

	acct, err := repo.Create(context.Background(), "Mia", "Stone", "mia@example.com", "pw", model.RoleTrainer, 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if acct.Status != model.StatusActive {
		t.Fatalf("trainer status = %q, want active", acct.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountCreate_DuplicateEmail(t *testing.T) {
	repo, mock, done := newAccountRepoMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'mia@example.com' for key 'users.email'"))

	_, err := repo.Create(context.Background(), "Mia", "Stone", "mia@example.com", "pw", model.RoleMember, 4)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestUpdateMemberStatus_Approve(t *testing.T) {
	repo, mock, done := newAccountRepoMock(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET status=? WHERE id=? AND role=? AND status=?")).
		WithArgs("active", uint64(9), "member", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateMemberStatus(context.Background(), 9, model.StatusActive); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMemberStatus_AlreadyDecided(t *testing.T) {
	repo, mock, done := newAccountRepoMock(t)
	defer done()

	// The member was approved earlier; a second decision matches no row.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET status=? WHERE id=? AND role=? AND status=?")).
		WithArgs("rejected", uint64(9), "member", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateMemberStatus(context.Background(), 9, model.StatusRejected)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpdateMemberStatus_InvalidTarget(t *testing.T) {
	repo, _, done := newAccountRepoMock(t)
	defer done()

	// pending is not a legal decision; no query may run.
	err := repo.UpdateMemberStatus(context.Background(), 9, model.StatusPending)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
