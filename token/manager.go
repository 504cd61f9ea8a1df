// Package token issues and verifies the bearer tokens handed out by the
// identity network API: session tokens for signed-in people and access
// tokens for partner applications.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

// TokenType tells session tokens and partner access tokens apart.
type TokenType string

const (
	SessionToken TokenType = "session"
	ClientToken  TokenType = "client"

	defaultIssuer        = "pixelpirates-identity"
	defaultSessionExpiry = 24 * time.Hour
	defaultClientExpiry  = time.Hour
)

// Claims carried by every token. Profile fields are only set on session tokens,
// Scope only on client tokens.
type Claims struct {
	Email     string         `json:"email,omitempty"`
	Name      string         `json:"name,omitempty"`
	Role      users.RoleType `json:"role,omitempty"`
	Scope     string         `json:"scope,omitempty"`
	TokenType TokenType      `json:"token_type"`
	jwt.RegisteredClaims
}

type Manager struct {
	signer        Signer
	issuer        string
	sessionExpiry time.Duration
	clientExpiry  time.Duration
	revokedCache  RevokedTokenCache
	nowFunc       func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(sessionExpiry, clientExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		if sessionExpiry > 0 {
			m.sessionExpiry = sessionExpiry
		}
		if clientExpiry > 0 {
			m.clientExpiry = clientExpiry
		}
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithRevokedTokenCache(cache RevokedTokenCache) ManagerOption {
	return func(m *Manager) {
		m.revokedCache = cache
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:        signer,
		issuer:        defaultIssuer,
		sessionExpiry: defaultSessionExpiry,
		clientExpiry:  defaultClientExpiry,
		nowFunc:       time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.revokedCache == nil {
		m.revokedCache = NewInMemoryRevokedTokenCache(func() time.Time { return m.nowFunc() })
	}
	return m
}

// SessionExpiry is the lifetime of tokens from IssueSession.
func (m *Manager) SessionExpiry() time.Duration {
	return m.sessionExpiry
}

// ClientExpiry is the lifetime of tokens from IssueClient.
func (m *Manager) ClientExpiry() time.Duration {
	return m.clientExpiry
}

// IssueSession signs a session token for profile.
func (m *Manager) IssueSession(profile users.Profile) (string, error) {
	claims := &Claims{
		Email:            profile.Email,
		Name:             profile.Name,
		Role:             profile.Role,
		TokenType:        SessionToken,
		RegisteredClaims: m.registered(profile.ID, m.sessionExpiry),
	}
	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.IssueSession]")
	}
	return signed, nil
}

// IssueClient signs a partner access token.
func (m *Manager) IssueClient(clientID, scope string) (string, error) {
	claims := &Claims{
		Scope:            strings.Join(strings.Fields(scope), " "),
		TokenType:        ClientToken,
		RegisteredClaims: m.registered(clientID, m.clientExpiry),
	}
	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.IssueClient]")
	}
	return signed, nil
}

// Parse verifies raw and returns its claims. Expired tokens fail with
// ErrTokenExpired, everything else that does not verify with ErrInvalidToken.
func (m *Manager) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, autherrors.ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errors.Wrap(autherrors.ErrTokenExpired, err.Error())
	case err != nil:
		return nil, errors.Wrap(autherrors.ErrInvalidToken, err.Error())
	}

	if claims.ID != "" && m.revokedCache.IsRevoked(claims.ID) {
		return nil, errors.Wrap(autherrors.ErrInvalidToken, "token revoked")
	}
	return claims, nil
}

// Revoke verifies raw and refuses it from then on, until it would have
// expired anyway.
func (m *Manager) Revoke(raw string) error {
	claims, err := m.Parse(raw)
	if err != nil {
		return errors.Wrap(err, "[Manager.Revoke]")
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return errors.New("[Manager.Revoke] token has no id")
	}
	return m.revokedCache.Add(claims.ID, claims.ExpiresAt.Time)
}

// CleanupRevokedTokens removes expired tokens from the revocation cache
func (m *Manager) CleanupRevokedTokens() {
	if m.revokedCache != nil {
		m.revokedCache.Cleanup()
	}
}

func (m *Manager) registered(subject string, expiry time.Duration) jwt.RegisteredClaims {
	now := m.nowFunc()
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    m.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
}
