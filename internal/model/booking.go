package model

import "time"

// BookingConfirmed is the only status a live booking carries; cancelled
// bookings are deleted rather than flagged.
const BookingConfirmed = "confirmed"

// Booking links one account to one class session. At most one live booking
// exists per (user, class) pair, enforced by a unique key.
type Booking struct {
	ID          uint64    // bookings.id
	UserID      uint64    // bookings.user_id
	ClassID     uint64    // bookings.class_id
	Status      string    // bookings.status
	BookingDate time.Time // bookings.booking_date
}
