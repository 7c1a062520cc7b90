package repository

import (
	"context"
	"database/sql"
	"time"
)

// Flat per-unit amounts used by the dashboard aggregates. Real billing is
// out of scope; these mirror what the dashboards display.
const (
	revenuePerBookingUSD  = 15
	earningsPerBookingUSD = 20
)

// StatsRepo aggregates dashboard figures for admins and trainers. All
// queries are read-only.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// RecentMember is one row of the admin dashboard's latest-signups panel.
type RecentMember struct {
	ID        uint64    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentBooking is one row of the admin dashboard's latest-bookings panel.
type RecentBooking struct {
	ID          uint64    `json:"id"`
	BookingDate time.Time `json:"booking_date"`
	Status      string    `json:"status"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	ClassName   string    `json:"class_name"`
	TrainerName *string   `json:"trainer_name"`
}

// AdminStats bundles the admin dashboard aggregates.
type AdminStats struct {
	TotalMembers   uint64          `json:"totalMembers"`
	ActiveClasses  uint64          `json:"activeClasses"`
	TotalBookings  uint64          `json:"totalBookings"`
	TotalRevenue   uint64          `json:"totalRevenue"`
	RecentMembers  []RecentMember  `json:"recentMembers"`
	RecentBookings []RecentBooking `json:"recentBookings"`
}

// AdminStats returns member/class/booking counts, approximate revenue, and
// the five most recent members (excluding pending) and bookings.
func (r *StatsRepo) AdminStats(ctx context.Context) (*AdminStats, error) {
	var s AdminStats
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role = 'member'").Scan(&s.TotalMembers); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM classes WHERE is_active = true").Scan(&s.ActiveClasses); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings").Scan(&s.TotalBookings); err != nil {
		return nil, err
	}
	s.TotalRevenue = s.TotalBookings * revenuePerBookingUSD

	memberRows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email, created_at
		 FROM users
		 WHERE role = 'member' AND status != 'pending'
		 ORDER BY created_at DESC LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer memberRows.Close()
	s.RecentMembers = make([]RecentMember, 0, 5)
	for memberRows.Next() {
		var m RecentMember
		if err := memberRows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.CreatedAt); err != nil {
			return nil, err
		}
		s.RecentMembers = append(s.RecentMembers, m)
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}

	bookingRows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.booking_date, b.status,
		        u.first_name, u.last_name,
		        c.name,
		        CONCAT(t.first_name, ' ', t.last_name)
		 FROM bookings b
		 JOIN users u ON b.user_id = u.id
		 JOIN classes c ON b.class_id = c.id
		 LEFT JOIN users t ON c.trainer_id = t.id
		 ORDER BY b.booking_date DESC LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer bookingRows.Close()
	s.RecentBookings = make([]RecentBooking, 0, 5)
	for bookingRows.Next() {
		var b RecentBooking
		var trainer sql.NullString
		if err := bookingRows.Scan(&b.ID, &b.BookingDate, &b.Status,
			&b.FirstName, &b.LastName, &b.ClassName, &trainer); err != nil {
			return nil, err
		}
		if trainer.Valid {
			v := trainer.String
			b.TrainerName = &v
		}
		s.RecentBookings = append(s.RecentBookings, b)
	}
	if err := bookingRows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// TrainerDashboard bundles a trainer's own aggregates.
type TrainerDashboard struct {
	UpcomingBookings uint64 `json:"upcomingBookings"`
	UniqueClients    uint64 `json:"uniqueClients"`
	TotalEarnings    uint64 `json:"totalEarnings"`
}

// TrainerDashboard counts bookings and distinct clients across the classes
// assigned to the trainer and derives the approximate earnings figure.
func (r *StatsRepo) TrainerDashboard(ctx context.Context, trainerID uint64) (*TrainerDashboard, error) {
	var d TrainerDashboard
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM bookings b
		 JOIN classes c ON b.class_id = c.id
		 WHERE c.trainer_id = ?`, trainerID).Scan(&d.UpcomingBookings); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT b.user_id)
		 FROM bookings b
		 JOIN classes c ON b.class_id = c.id
		 WHERE c.trainer_id = ?`, trainerID).Scan(&d.UniqueClients); err != nil {
		return nil, err
	}
	d.TotalEarnings = d.UpcomingBookings * earningsPerBookingUSD
	return &d, nil
}
