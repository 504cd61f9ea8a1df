package auth

import (
	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

const msgInvalidLoginForm = "Enter a valid email, choose a role, and provide a password with at least 6 characters."

// ValidateLoginForm checks the sign-in form before anything reaches an
// issuer and returns the normalized email.
func ValidateLoginForm(email, password string, role users.RoleType) (string, error) {
	normalized := users.NormalizeEmail(email)
	if users.ValidateEmail(normalized) != nil || users.ValidatePassword(password) != nil || !role.Valid() {
		return "", autherrors.Validation(msgInvalidLoginForm)
	}
	return normalized, nil
}
