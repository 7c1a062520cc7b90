package model

import "time"

// ClassSession represents a row in the `classes` table: a weekly recurring,
// capacity-bounded class that members can book into. CurrentBookings is a
// denormalized counter; the booking repository keeps it equal to the count
// of live bookings by recomputing it inside the same transaction as every
// booking write.
//
// Fields:
//  ID              – primary key identifier of the class.
//  Name            – display name of the class.
//  Description     – free-form description.
//  ProgramID       – optional reference to the owning program.
//  TrainerID       – optional reference to the trainer running the class.
//  DayOfWeek       – 0 (Sunday) through 6 (Saturday).
//  StartTime       – start of the session, "HH:MM:SS".
//  EndTime         – end of the session, "HH:MM:SS".
//  Capacity        – maximum number of live bookings.
//  CurrentBookings – live booking count, always <= Capacity.
//  IsActive        – whether the class appears on the schedule.
type ClassSession struct {
	ID              uint64    // classes.id
	Name            string    // classes.name
	Description     string    // classes.description
	ProgramID       *uint64   // classes.program_id (nullable)
	TrainerID       *uint64   // classes.trainer_id (nullable)
	DayOfWeek       uint8     // classes.day_of_week
	StartTime       string    // classes.start_time
	EndTime         string    // classes.end_time
	Capacity        uint32    // classes.capacity
	CurrentBookings uint32    // classes.current_bookings
	IsActive        bool      // classes.is_active
	CreatedAt       time.Time // classes.created_at
	UpdatedAt       time.Time // classes.updated_at
}

// HasFreeSlot reports whether another booking still fits. The authoritative
// check happens in the booking transaction under a row lock; this is for
// display logic only.
func (s ClassSession) HasFreeSlot() bool {
	return s.CurrentBookings < s.Capacity
}

// Program represents a row in the `programs` table. Pure reference data
// grouping classes; the only constraint is uniqueness of the name.
type Program struct {
	ID          uint64    // programs.id
	Name        string    // programs.name
	Description string    // programs.description
	CreatedAt   time.Time // programs.created_at
}
