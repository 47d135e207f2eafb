package model

import "fmt"

// Role is the closed set of account roles. It is business data, not a free
// string: parse at the boundary, compare with ==.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleUser      Role = "user"
)

// ParseRole validates a raw role value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleLibrarian, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Login        string `json:"login"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	Active       bool   `json:"active"`
}

// UserPatch is a partial user update; nil fields keep the current value.
// Password carries a new plaintext password to be re-hashed by the service.
type UserPatch struct {
	ID       int64   `json:"id"`
	Email    *string `json:"email"`
	Login    *string `json:"login"`
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
	Active   *bool   `json:"active"`
}

// Apply merges the patch over u and returns the result. The password is
// intentionally left out, hashing is the caller's job.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Login != nil {
		u.Login = *p.Login
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	return u
}
