package sessions

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jrsteele09/go-identity-dashboard/users"
)

// Storage keys. The token and the JSON encoded profile always live side by
// side and are written and cleared together.
const (
	TokenKey   = "auth_token"
	ProfileKey = "user_data"
)

// ErrNoSession is returned by Store.Get when no complete session is stored.
var ErrNoSession = errors.New("sessions: no session")

// Session is a bearer token plus the profile it was issued for.
type Session struct {
	Token   string        // Opaque bearer token
	Profile users.Profile // Profile returned alongside the token
}

// Store persists the current session.
type Store interface {
	// Set writes the token and profile as a single unit
	Set(ctx context.Context, token string, profile users.Profile) error

	// Get returns the stored session or ErrNoSession
	Get(ctx context.Context) (*Session, error)

	// Clear removes both keys. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Watcher reports changes made to a store from outside this process.
type Watcher interface {
	// Watch blocks until ctx is done, calling onChange after each external change
	Watch(ctx context.Context, onChange func()) error
}

// Encode renders a session as its two storage values.
func Encode(token string, profile users.Profile) (map[string]string, error) {
	if token == "" {
		return nil, errors.New("sessions: empty token")
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		TokenKey:   token,
		ProfileKey: string(data),
	}, nil
}

// Decode rebuilds a session from its storage values. A missing key, an empty
// token or a profile that does not parse all mean there is no session.
func Decode(values map[string]string) (*Session, error) {
	token, profileData := values[TokenKey], values[ProfileKey]
	if token == "" || profileData == "" || profileData == "null" {
		return nil, ErrNoSession
	}

	var profile users.Profile
	if err := json.Unmarshal([]byte(profileData), &profile); err != nil {
		return nil, ErrNoSession
	}
	return &Session{Token: token, Profile: profile}, nil
}
