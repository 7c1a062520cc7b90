package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var rosterDate = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

const (
	lockClassQuery     = "SELECT capacity, current_bookings FROM classes WHERE id = ? FOR UPDATE"
	dupCheckQuery      = "SELECT id FROM bookings WHERE user_id = ? AND class_id = ? LIMIT 1"
	insertBookingQuery = "INSERT INTO bookings (user_id, class_id, status) VALUES (?, ?, 'confirmed')"
	syncCounterQuery   = "UPDATE classes SET current_bookings = (SELECT COUNT(*) FROM bookings WHERE class_id = ?) WHERE id = ?"
)

func newBookingRepoMock(t *testing.T) (*BookingRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewBookingRepo(db), mock, func() { db.Close() }
}

func TestBookingCreate_Success(t *testing.T) {
	repo, mock, done := newBookingRepoMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockClassQuery)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "current_bookings"}).AddRow(10, 4))
	mock.ExpectQuery(regexp.QuoteMeta(dupCheckQuery)).
		WithArgs(uint64(3), uint64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(insertBookingQuery)).
		WithArgs(uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta(syncCounterQuery)).
		WithArgs(uint64(7), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.Create(context.Background(), 3, 7)
	if err != nil {
		t.Fatalf("expected booking to succeed, got %v", err)
	}
	if id != 42 {
		t.Fatalf("wrong booking id: got %d want 42", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCreate_ClassFull(t *testing.T) {
	repo, mock, done := newBookingRepoMock(t)
	defer done()

	// Capacity 2 with 2 existing bookings: the third booking attempt must
	// fail before any insert happens.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockClassQuery)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "current_bookings"}).AddRow(2, 2))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 3, 7)
	if !errors.Is(err, ErrClassFull) {
		t.Fatalf("expected ErrClassFull, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCreate_ClassNotFound(t *testing.T) {
	repo, mock, done := newBookingRepoMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockClassQuery)).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 3, 99)
	if !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("expected ErrClassNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCreate_AlreadyBooked(t *testing.T) {
	repo, mock, done := newBookingRepoMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockClassQuery)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "current_bookings"}).AddRow(10, 1))
	mock.ExpectQuery(regexp.QuoteMeta(dupCheckQuery)).
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 3, 7)
	if !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCreate_DuplicateKeyBackstop(t *testing.T) {
	repo, mock, done := newBookingRepoMock(t)
	defer done()

	// The pre-insert duplicate check sees nothing but the unique key still
	// rejects the insert. The repo must translate 1062 to ErrAlreadyBooked.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockClassQuery)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity", "current_bookings"}).AddRow(10, 1))
	mock.ExpectQuery(regexp.QuoteMeta(dupCheckQuery)).
		WithArgs(uint64(3), uint64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(insertBookingQuery)).
		WithArgs(uint64(3), uint64(7)).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '3-7' for key 'uniq_user_class'"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), 3, 7)
	if !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCancel_Success(t *testing.T) {
	repo, mock, done := newBookingRepoMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_id FROM bookings WHERE id = ? AND user_id = ? LIMIT 1")).
		WithArgs(uint64(42), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"class_id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM classes WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(10))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = ?")).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(syncCounterQuery)).
		WithArgs(uint64(7), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Cancel(context.Background(), 3, 42); err != nil {
		t.Fatalf("expected cancel to succeed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCancel_NotOwned(t *testing.T) {
	repo, mock, done := newBookingRepoMock(t)
	defer done()

	// Booking 42 belongs to someone else; the ownership query matches no
	// row and the caller cannot tell this apart from a missing booking.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_id FROM bookings WHERE id = ? AND user_id = ? LIMIT 1")).
		WithArgs(uint64(42), uint64(999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Cancel(context.Background(), 999, 42)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAttendees_WrongTrainer(t *testing.T) {
	repo, mock, done := newBookingRepoMock(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT trainer_id FROM classes WHERE id = ?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"trainer_id"}).AddRow(5))

	_, err := repo.ListAttendeesForTrainer(context.Background(), 7, 6)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAttendees_Ordered(t *testing.T) {
	repo, mock, done := newBookingRepoMock(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT trainer_id FROM classes WHERE id = ?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"trainer_id"}).AddRow(6))
	mock.ExpectQuery("SELECT u.id, u.first_name, u.last_name, u.email, b.booking_date").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "booking_date"}).
			AddRow(1, "Ada", "Able", "ada@example.com", rosterDate).
			AddRow(2, "Ben", "Zed", "ben@example.com", rosterDate))

	got, err := repo.ListAttendeesForTrainer(context.Background(), 7, 6)
	if err != nil {
		t.Fatalf("expected roster, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("wrong roster size: got %d want 2", len(got))
	}
	if got[0].LastName != "Able" || got[1].LastName != "Zed" {
		t.Fatalf("roster out of order: %q then %q", got[0].LastName, got[1].LastName)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
