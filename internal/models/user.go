package models

import "time"

// Roles a user can hold. The service validates tokens minted elsewhere,
// so the role is carried both in the users table and in JWT claims.
const (
	RoleAdmin   = "admin"
	RolePremium = "premium"
	RoleBasic   = "basic"
)

// User is a platform account. This service only reads users, it never
// creates them; the table is populated by the account service.
type User struct {
	ID        int       `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
