package models

import (
	"regexp"
	"time"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
)

type Role string

const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles. RoleAdmin is valid but
// not assignable through registration; that rule lives in the auth handler.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePublisher, RoleAdmin:
		return true
	}
	return false
}

var emailRe = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

type User struct {
	ID                  int64      `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	Email               string     `db:"email" json:"email"`
	Password            string     `db:"password_hash" json:"-"`
	Role                Role       `db:"role" json:"role"`
	ResetPasswordToken  *string    `db:"reset_password_token" json:"-"`
	ResetPasswordExpire *time.Time `db:"reset_password_expire" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
}

// Validate checks the registration-time constraints. plainPassword is the
// pre-hash password; the stored hash is never validated here.
func (u *User) Validate(plainPassword string) apperr.Fields {
	v := apperr.Fields{}
	if u.Name == "" {
		v.Add("name", "Please add a name")
	}
	if u.Email == "" {
		v.Add("email", "Please add an email")
	} else if !emailRe.MatchString(u.Email) {
		v.Add("email", "Please add a valid email")
	}
	if len(plainPassword) < 6 {
		v.Add("password", "Please add a password with 6 or more characters")
	}
	if u.Role != "" && !u.Role.Valid() {
		v.Add("role", "Role must be one of user, publisher, admin")
	}
	return v
}
