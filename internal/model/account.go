package model

import "time"

// Role names stored in the users.role column. Anything else coming in from
// a registration payload is coerced to RoleMember.
const (
	RoleMember  = "member"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

// Account status values stored in the users.status column. Members start
// out pending and move to active or rejected through an admin decision.
// There is no transition out of rejected and no way back to pending.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// Account represents a row in the `users` table. The json tags are omitted
// because these structs are used internally by the repository layer;
// handlers define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the account.
//  FirstName    – given name shown on dashboards and rosters.
//  LastName     – family name shown on dashboards and rosters.
//  Email        – unique email address (stored lower-cased).
//  PasswordHash – bcrypt hashed password.
//  Role         – one of member, trainer, admin.
//  Status       – one of pending, active, rejected.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Account struct {
	ID           uint64    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	Status       string    // users.status
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// DisplayName joins first and last name for rosters and booking listings.
func (a Account) DisplayName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// NormalizeRole maps an arbitrary requested role onto a valid one. Only
// trainer and admin are accepted as-is; everything else becomes member.
func NormalizeRole(requested string) string {
	switch requested {
	case RoleTrainer, RoleAdmin:
		return requested
	default:
		return RoleMember
	}
}

// InitialStatus returns the status a newly registered account starts in.
// Members require admin approval, so they begin pending. Trainer and admin
// accounts are provisioned directly and never pass through pending.
func InitialStatus(role string) string {
	if role == RoleMember {
		return StatusPending
	}
	return StatusActive
}

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to an account; only the SHA-256 hash of the raw value is
// stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
