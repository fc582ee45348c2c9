package auth

import "strings"

// Role is the closed set of roles an authenticated actor can hold.
// Authorization decisions are capability checks against this enum,
// never raw string comparisons.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
)

// ParseRole maps a raw role string to a Role, case-insensitively.
// Unknown values degrade to RoleTeacher so a malformed token can never
// grant elevated access.
func ParseRole(raw string) Role {
	if strings.EqualFold(raw, string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleTeacher
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// Actor is the authenticated principal attached to every request.
// It carries the identity snapshot needed to stamp reservations, so the
// reservations service never has to reach back into a users table.
type Actor struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Role      Role
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
