package entity

type UserRole string

const (
	RoleClient  UserRole = "client"
	RoleArtisan UserRole = "artisan"
)

func (r UserRole) Valid() bool {
	return r == RoleClient || r == RoleArtisan
}

// User is an account. Role is fixed at registration; BusinessName is only set for artisans.
type User struct {
	Base
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Role         UserRole `db:"role"`
	FullName     string   `db:"full_name"`
	BusinessName *string  `db:"business_name"`
	IsActive     bool     `db:"is_active"`
}
