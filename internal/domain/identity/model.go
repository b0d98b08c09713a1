package identity

import (
	"time"

	"github.com/google/uuid"
)

// Hospital roles. Role names double as RBAC identifiers in route guards.
var validRoles = map[string]bool{
	"admin": true, "doctor": true, "nurse": true, "receptionist": true,
	"billing": true, "pharmacy": true, "lab": true,
}

// User is one login account. PasswordHash is a bcrypt hash and never leaves
// the service.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
