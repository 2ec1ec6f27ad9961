package users

import (
	"time"

	"turfbook/internal/apperr"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound       = apperr.NotFound("user_not_found", "user not found")
	ErrDuplicateEmail = apperr.Conflict("duplicate_email", "a user with that email already exists")
	ErrInvalidRole    = apperr.Validation("invalid_role", "role must be one of guest, venue_owner, admin")
)

type Role string

const (
	RoleGuest      Role = "guest"
	RoleVenueOwner Role = "venue_owner"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleVenueOwner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Password  password  `json:"-"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

type Filter struct {
	Search string
	Role   *Role
	Limit  int
	Offset int
}

// Patch is an admin change to a user. Nil fields are left alone.
type Patch struct {
	Role     *Role
	IsActive *bool
}
