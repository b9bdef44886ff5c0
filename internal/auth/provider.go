package auth

import (
	"github.com/adeyemio/betwallet/internal/user"
)

// Provider is the seam the wallet consumes: it resolves the current user
// (id, balance, currency, verification) and owns the one legal mutation of
// the authoritative balance scalar.
type Provider interface {
	CurrentUser(id string) (*user.User, error)
	ApplyBalanceDelta(id string, delta float64) error
}

type provider struct {
	users user.Repository
}

func NewProvider(users user.Repository) Provider {
	return &provider{users: users}
}

func (p *provider) CurrentUser(id string) (*user.User, error) {
	return p.users.FindByID(id)
}

func (p *provider) ApplyBalanceDelta(id string, delta float64) error {
	return p.users.ApplyBalanceDelta(id, delta)
}
