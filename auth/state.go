package auth

import "github.com/jrsteele09/go-identity-dashboard/users"

// State is where the controller believes the session stands.
type State int

const (
	// StateUnknown is the state before the store has been read.
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Snapshot is the controller state handed to subscribers. Profile is nil
// unless State is StateAuthenticated.
type Snapshot struct {
	State   State
	Profile *users.Profile
}

// Authenticated reports whether the snapshot carries a session.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Profile != nil
}
