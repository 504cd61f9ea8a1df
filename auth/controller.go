// Package auth holds the session controller: the single place that turns
// issuer results into a stored session and tells the rest of the
// application when that session changes.
package auth

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/issuer"
	"github.com/jrsteele09/go-identity-dashboard/sessions"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

const msgLoginInProgress = "A sign-in is already in progress."

// Controller owns the authentication state. A session is only considered
// established once the store has accepted it, so a failed login never
// leaves a token or profile behind.
type Controller struct {
	store      sessions.Store
	issuer     issuer.Issuer
	loginGuard bool

	mu      sync.RWMutex
	state   State
	profile *users.Profile
	pending bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithLoginGuard controls whether a login or registration started while
// another is still pending is rejected. It is on by default.
func WithLoginGuard(enabled bool) ControllerOption {
	return func(c *Controller) {
		c.loginGuard = enabled
	}
}

func NewController(store sessions.Store, iss issuer.Issuer, options ...ControllerOption) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[NewController] session store is required")
	}
	if iss == nil {
		return nil, errors.New("[NewController] issuer is required")
	}

	c := &Controller{
		store:      store,
		issuer:     iss,
		loginGuard: true,
		state:      StateUnknown,
		subs:       make(map[int]func(Snapshot)),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Load performs the initial read of the store. It is the only way out of
// StateUnknown other than a login or logout.
func (c *Controller) Load(ctx context.Context) error {
	return c.reload(ctx, "[Controller.Load]")
}

// Refresh re-reads the store without contacting the issuer.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.reload(ctx, "[Controller.Refresh]")
}

func (c *Controller) reload(ctx context.Context, op string) error {
	sess, err := c.store.Get(ctx)
	switch {
	case err == nil:
		profile := sess.Profile
		c.transition(StateAuthenticated, &profile)
		return nil
	case errors.Is(err, sessions.ErrNoSession):
		c.transition(StateUnauthenticated, nil)
		return nil
	default:
		c.transition(StateUnauthenticated, nil)
		return errors.Wrap(err, op+" reading session")
	}
}

// Login exchanges credentials for a session. On failure the state and the
// store are left exactly as they were and the issuer's error is returned
// unchanged.
func (c *Controller) Login(ctx context.Context, email, password string, role users.RoleType) (*users.Profile, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	resp, err := c.issuer.Login(ctx, issuer.LoginRequest{Email: email, Password: password, Role: role})
	if err != nil {
		log.Debug().Str("email", email).Str("kind", autherrors.KindOf(err).String()).Msg("login rejected")
		return nil, err
	}
	return c.establish(ctx, resp, "[Controller.Login]")
}

// Register creates an account and signs straight into it.
func (c *Controller) Register(ctx context.Context, req issuer.RegisterRequest) (*users.Profile, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	resp, err := c.issuer.Register(ctx, req)
	if err != nil {
		log.Debug().Str("email", req.Email).Str("kind", autherrors.KindOf(err).String()).Msg("registration rejected")
		return nil, err
	}
	return c.establish(ctx, resp, "[Controller.Register]")
}

// Logout clears the store and always ends up unauthenticated, even when the
// store reports an error. Logging out twice is fine.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.store.Clear(ctx)
	c.transition(StateUnauthenticated, nil)
	if err != nil {
		return errors.Wrap(err, "[Controller.Logout] clearing session")
	}
	return nil
}

// IsAuthenticated re-checks the store on every call, so a session removed
// behind the controller's back is noticed even before a Refresh.
func (c *Controller) IsAuthenticated(ctx context.Context) bool {
	if c.State() != StateAuthenticated {
		return false
	}
	_, err := c.store.Get(ctx)
	if err != nil && !errors.Is(err, sessions.ErrNoSession) {
		log.Warn().Err(err).Msg("session store check failed")
	}
	return err == nil
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Profile returns a copy of the current profile, or nil.
func (c *Controller) Profile() *users.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyProfile(c.profile)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{State: c.state, Profile: copyProfile(c.profile)}
}

// Subscribe registers fn to be called after every transition. Calling the
// returned function removes it again.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			delete(c.subs, id)
		})
	}
}

// Follow refreshes the controller whenever the watcher reports an
// out-of-band change to the store. It blocks until ctx is done.
func (c *Controller) Follow(ctx context.Context, w sessions.Watcher) error {
	if w == nil {
		return errors.New("[Controller.Follow] watcher is required")
	}
	err := w.Watch(ctx, func() {
		if err := c.Refresh(ctx); err != nil {
			log.Err(err).Msg("refresh after external session change")
		}
	})
	return errors.Wrap(err, "[Controller.Follow] watching session store")
}

func (c *Controller) establish(ctx context.Context, resp *issuer.AuthResponse, op string) (*users.Profile, error) {
	if err := c.store.Set(ctx, resp.Token, resp.User); err != nil {
		return nil, errors.Wrap(err, op+" storing session")
	}
	profile := resp.User
	c.transition(StateAuthenticated, &profile)
	return copyProfile(&profile), nil
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loginGuard && c.pending {
		return &autherrors.Error{
			Kind:    autherrors.KindValidation,
			Message: msgLoginInProgress,
			Err:     autherrors.ErrLoginInProgress,
		}
	}
	c.pending = true
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
}

func (c *Controller) transition(state State, profile *users.Profile) {
	c.mu.Lock()
	prev := c.state
	c.state = state
	c.profile = profile
	snap := Snapshot{State: state, Profile: copyProfile(profile)}
	c.mu.Unlock()

	log.Debug().Stringer("from", prev).Stringer("to", state).Msg("session state")
	c.notify(snap)
}

func (c *Controller) notify(snap Snapshot) {
	c.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		s := snap
		s.Profile = copyProfile(snap.Profile)
		fn(s)
	}
}

func copyProfile(p *users.Profile) *users.Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
