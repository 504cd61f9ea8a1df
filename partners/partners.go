package partners

import (
	"errors"
	"strings"
	"time"

	"github.com/jrsteele09/go-identity-dashboard/users"
)

// ErrInvalidScope is returned when a partner asks for a scope it was not granted.
var ErrInvalidScope = errors.New("invalid scope")

// Partner is the server side record of an issued bundle. Secrets are only
// kept as bcrypt hashes.
type Partner struct {
	ClientID          string    `json:"clientId"`
	Application       string    `json:"application"`
	SecretHash        string    `json:"-"`
	WebhookSecretHash string    `json:"-"`
	Scopes            []string  `json:"scopes"`
	Owner             string    `json:"owner"` // ID of the admin who issued the bundle
	CreatedAt         time.Time `json:"createdAt"`
}

// NewPartner hashes the bundle's secrets into a registry record.
func NewPartner(b *Bundle, owner string, scopes []string, now time.Time) (*Partner, error) {
	secretHash, err := users.HashPassword(b.ClientSecret)
	if err != nil {
		return nil, err
	}
	webhookHash, err := users.HashPassword(b.WebhookSecret)
	if err != nil {
		return nil, err
	}
	return &Partner{
		ClientID:          b.ClientID,
		Application:       b.Application,
		SecretHash:        secretHash,
		WebhookSecretHash: webhookHash,
		Scopes:            append([]string(nil), scopes...),
		Owner:             owner,
		CreatedAt:         now,
	}, nil
}

// Authenticate reports whether secret is this partner's client secret.
func (p *Partner) Authenticate(secret string) bool {
	return secret != "" && users.CheckPasswordHash(secret, p.SecretHash)
}

// HasScope checks if the partner has permission for a specific scope
func (p *Partner) HasScope(scope string) bool {
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ValidateScopes checks every space separated scope in requested was granted.
func (p *Partner) ValidateScopes(requested string) error {
	for _, scope := range strings.Fields(requested) {
		if !p.HasScope(scope) {
			return ErrInvalidScope
		}
	}
	return nil
}
