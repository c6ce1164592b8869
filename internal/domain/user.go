package domain

import "time"

// UserRole distinguishes ordinary submitters from administrators.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// Valid reports whether the role belongs to the closed set.
func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// User is the domain model for principals who submit or administer complaints.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Department   string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the resolved caller identity consumed by services. Resolution
// itself happens in the auth middleware.
type Principal struct {
	ID   string
	Role UserRole
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

// UserRef is the minimal projection embedded in complaint responses.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the display projection for the user.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
