package identity

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin      = "ADMIN"
	RoleTechnician = "TECHNICIAN"
)

// User maps to the users table. The password never serializes into API
// responses.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Password  string    `db:"password" json:"-"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
