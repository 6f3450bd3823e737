package domain

// Role represents user role in the system
type Role string

const (
	RoleUser   Role = "user"
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

// IsStaff reports whether the role may process reservations and loans
func (r Role) IsStaff() bool {
	return r == RoleWorker || r == RoleAdmin
}

// Actor represents the authenticated caller of a service operation
type Actor struct {
	UserID   uint
	Username string
	Role     Role
}

// IsStaff reports whether the actor is a worker or admin
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// IsAdmin reports whether the actor is an admin
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
