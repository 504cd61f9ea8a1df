package fakeuserrepo

import (
	"sync"
	"time"

	"github.com/google/uuid"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo keeps accounts in memory, indexed by ID and by normalized
// email. Callers always get copies.
type FakeUserRepo struct {
	lock    sync.RWMutex
	byID    map[string]users.User
	byEmail map[string]string
	nowTime func() time.Time
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		byID:    make(map[string]users.User),
		byEmail: make(map[string]string),
		nowTime: time.Now,
	}
}

// Upsert assigns an ID and CreatedAt to new accounts. An email already held
// by another account is refused.
func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = users.NormalizeEmail(user.Email)
	if owner, ok := ur.byEmail[user.Email]; ok && owner != user.ID {
		return autherrors.ErrUserExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = ur.nowTime()
	}
	if previous, ok := ur.byID[user.ID]; ok && previous.Email != user.Email {
		delete(ur.byEmail, previous.Email)
	}
	ur.byID[user.ID] = *user
	ur.byEmail[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.byEmail[users.NormalizeEmail(email)]
	if !ok {
		return nil, autherrors.ErrUserNotFound
	}
	u := ur.byID[id]
	return &u, nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.byID[id]
	if !ok {
		return nil, autherrors.ErrUserNotFound
	}
	return &u, nil
}

func (ur *FakeUserRepo) SetLastLogin(email string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.byEmail[users.NormalizeEmail(email)]
	if !ok {
		return autherrors.ErrUserNotFound
	}
	u := ur.byID[id]
	u.LastLogin = ur.nowTime()
	ur.byID[id] = u
	return nil
}
