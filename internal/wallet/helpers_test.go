package wallet

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/adeyemio/betwallet/internal/user"
	"github.com/adeyemio/betwallet/pkg/config"
	"github.com/adeyemio/betwallet/pkg/events"
)

// stubAuth is an in-memory auth collaborator: it hands out user snapshots
// and owns the balance scalar, like the real provider.
type stubAuth struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newStubAuth(users ...*user.User) *stubAuth {
	s := &stubAuth{users: make(map[string]*user.User)}
	for _, u := range users {
		s.users[u.ID.String()] = u
	}
	return s
}

func (s *stubAuth) CurrentUser(id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *stubAuth) ApplyBalanceDelta(id string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.Balance += delta
	return nil
}

func (s *stubAuth) balance(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].Balance
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (n *recordingNotifier) Notify(userID, kind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
}

func (n *recordingNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	c := 0
	for _, k := range n.kinds {
		if k == kind {
			c++
		}
	}
	return c
}

func testConfig() config.Config {
	return config.Config{
		MinDeposit:         10,
		MaxDeposit:         1000,
		DailyDepositCap:    150,
		MinWithdrawal:      10,
		DailyWithdrawalCap: 500,
		TransferFeeRate:    0.01,
		ConversionRates: map[string]float64{
			"USD": 1,
			"EUR": 0.92,
			"GBP": 0.79,
		},
	}
}

func testUser(balance float64) *user.User {
	return &user.User{
		ID:       uuid.New(),
		Email:    "punter@example.com",
		Balance:  balance,
		Currency: "USD",
	}
}

func newTestFacade(t *testing.T, usr *user.User) (*Facade, *stubAuth, *events.MemoryBus, *recordingNotifier) {
	t.Helper()

	authStub := newStubAuth(usr)
	bus := events.NewMemoryBus()
	store := NewStore(filepath.Join(t.TempDir(), "ledger.json"), 1<<20)
	notifier := &recordingNotifier{}

	f := NewFacade(testConfig(), authStub, store, bus, NopMirror{}, notifier)
	return f, authStub, bus, notifier
}
