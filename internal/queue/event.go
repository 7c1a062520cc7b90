// Package queue defines message payloads exchanged over the message broker
// and the background consumer that feeds the admin dashboard feed.
package queue

// MemberRegisteredEvent is published whenever an account registers. For
// members it tells admins there is a pending approval waiting; trainer and
// admin registrations appear in the feed as already active. Delivery is
// fire-and-forget, at most once; the registration flow never blocks on it.
type MemberRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	RegisteredAt string `json:"registered_at"`
}
