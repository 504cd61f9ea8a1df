package fakepartnerrepo

import (
	"errors"
	"sort"
	"sync"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/partners"
)

var _ partners.Repo = (*FakePartnerRepo)(nil)

type FakePartnerRepo struct {
	partners map[string]*partners.Partner
	lock     sync.RWMutex
}

func NewFakePartnerRepo() partners.Repo {
	return &FakePartnerRepo{
		partners: make(map[string]*partners.Partner),
	}
}

func (r *FakePartnerRepo) Upsert(partner *partners.Partner) error {
	if partner == nil || partner.ClientID == "" {
		return errors.New("partner client id is required")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.partners[partner.ClientID] = partner
	return nil
}

func (r *FakePartnerRepo) Get(clientID string) (*partners.Partner, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	partner, ok := r.partners[clientID]
	if !ok {
		return nil, autherrors.ErrNotFound
	}
	return partner, nil
}

func (r *FakePartnerRepo) List(offset, limit int) ([]*partners.Partner, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	all := make([]*partners.Partner, 0, len(r.partners))
	for _, v := range r.partners {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ClientID < all[j].ClientID
	})

	if offset < 0 || offset >= len(all) {
		return nil, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}
