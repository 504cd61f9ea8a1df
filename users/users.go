package users

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the role a principal signs in with
type RoleType string

const (
	RoleUser  RoleType = "user"  // Creator / user dashboards
	RoleAdmin RoleType = "admin" // Trust authority dashboards
)

// MinPasswordLength is the shortest password accepted at login and registration.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (r RoleType) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r RoleType) String() string {
	return string(r)
}

// ParseRole converts a form or flag value into a RoleType.
func ParseRole(s string) (RoleType, error) {
	role := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// Profile is the user record shared between the backend, the issuer and the
// persisted session.
type Profile struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Role       RoleType `json:"role"`
	Identifier string   `json:"identifier,omitempty"` // DID for users, email for admins
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// User is the backend's account record
type User struct {
	Profile
	PasswordHash string    `json:"-"` // Hashed version of the user's password - never serialize
	CreatedAt    time.Time `json:"created_at,omitempty"`
	LastLogin    time.Time `json:"last_login,omitempty"`
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the normalized address has a local part, an @ and a dotted domain.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailPattern.MatchString(NormalizeEmail(email)) {
		return fmt.Errorf("email %q is not valid", email)
	}
	return nil
}

// ValidatePassword enforces MinPasswordLength, counted in characters.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
