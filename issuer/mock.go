package issuer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

const (
	defaultLoginDelay    = 900 * time.Millisecond
	defaultRegisterDelay = 1000 * time.Millisecond

	mockAdminName          = "Adminis Astra"
	mockUserName           = "Craterus Orion"
	mockUserIdentifier     = "DID:did:ppn:3fa::9z9"
	mockLoginID            = "1"
	mockTokenPrefix        = "mock_token_"
	mockDIDPrefix          = "DID:did:ppn:"
	msgInvalidCreds        = "Invalid credentials"
	msgInvalidRegistration = "Invalid registration data"
)

var _ Issuer = (*Mock)(nil)

// Mock fabricates sessions locally after an artificial delay. Tokens are
// derived from the clock in milliseconds; two issues in the same millisecond
// get the same token.
type Mock struct {
	loginDelay    time.Duration
	registerDelay time.Duration
	nowTime       func() time.Time
}

// MockOption defines a function type to modify the Mock instance.
type MockOption func(*Mock)

// WithDelay sets the simulated latency of Login
func WithDelay(d time.Duration) MockOption {
	return func(m *Mock) {
		m.loginDelay = d
	}
}

// WithRegisterDelay sets the simulated latency of Register
func WithRegisterDelay(d time.Duration) MockOption {
	return func(m *Mock) {
		m.registerDelay = d
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) MockOption {
	return func(m *Mock) {
		m.nowTime = nowFunc
	}
}

func NewMock(options ...MockOption) *Mock {
	m := &Mock{
		loginDelay:    defaultLoginDelay,
		registerDelay: defaultRegisterDelay,
		nowTime:       time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Login accepts any non-empty email with a password of at least six
// characters. The profile depends only on the role.
func (m *Mock) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := sleep(ctx, m.loginDelay); err != nil {
		return nil, err
	}

	if req.Email == "" || users.ValidatePassword(req.Password) != nil || !req.Role.Valid() {
		return nil, autherrors.AuthFailure(msgInvalidCreds, 0, autherrors.ErrInvalidCredentials)
	}

	profile := users.Profile{
		ID:    mockLoginID,
		Email: req.Email,
		Role:  req.Role,
	}
	if req.Role == users.RoleAdmin {
		profile.Name = mockAdminName
		profile.Identifier = req.Email
	} else {
		profile.Name = mockUserName
		profile.Identifier = mockUserIdentifier
	}

	return &AuthResponse{Token: m.token(), User: profile}, nil
}

// Register requires an email, a name and a password of at least six characters.
func (m *Mock) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := sleep(ctx, m.registerDelay); err != nil {
		return nil, err
	}

	if req.Email == "" || req.Name == "" || users.ValidatePassword(req.Password) != nil || !req.Role.Valid() {
		return nil, autherrors.AuthFailure(msgInvalidRegistration, 0, autherrors.ErrInvalidRegistrationData)
	}

	millis := m.millis()
	profile := users.Profile{
		ID:    millis,
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	}
	if req.Role == users.RoleAdmin {
		profile.Identifier = req.Email
	} else {
		profile.Identifier = mockDIDPrefix + millis
	}

	return &AuthResponse{Token: mockTokenPrefix + millis, User: profile}, nil
}

func (m *Mock) millis() string {
	return strconv.FormatInt(m.nowTime().UnixMilli(), 10)
}

func (m *Mock) token() string {
	return mockTokenPrefix + m.millis()
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	if err := ctx.Err(); err != nil {
		return autherrors.Transport("Request cancelled", 0, fmt.Errorf("mock issuer: %w", err))
	}
	return nil
}
