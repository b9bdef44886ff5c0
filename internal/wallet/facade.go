package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adeyemio/betwallet/internal/auth"
	"github.com/adeyemio/betwallet/internal/user"
	"github.com/adeyemio/betwallet/pkg/config"
	"github.com/adeyemio/betwallet/pkg/events"
	"github.com/adeyemio/betwallet/pkg/id"
	"github.com/adeyemio/betwallet/pkg/logger"
)

// Facade is the public wallet surface. It owns the in-memory ledger, feeds
// the local store and the broadcast bus on every mutation, and mirrors
// best-effort to the remote store. The balance scalar itself is owned by the
// auth collaborator and only ever moved through ApplyBalanceDelta.
type Facade struct {
	cfg      config.Config
	auth     auth.Provider
	store    *Store
	bus      events.Bus
	mirror   Mirror
	notifier Notifier

	// opMu serializes facade operations, standing in for the original's
	// single-threaded event loop. State reached from the bus takes only mu.
	opMu sync.Mutex
	mu   sync.Mutex

	transactions    []Transaction
	pendingPayments []PendingPayment
	accounts        map[string][]*WalletAccount
}

func NewFacade(cfg config.Config, authProvider auth.Provider, store *Store, bus events.Bus, mirror Mirror, notifier Notifier) *Facade {
	f := &Facade{
		cfg:      cfg,
		auth:     authProvider,
		store:    store,
		bus:      bus,
		mirror:   mirror,
		notifier: notifier,
		accounts: make(map[string][]*WalletAccount),
	}

	snap := store.Load()
	f.transactions = snap.Transactions
	f.pendingPayments = snap.PendingPayments

	return f
}

// Deposit is the instant payment-provider path. Unimplemented: only the
// manual, admin-reviewed flow exists.
func (f *Facade) Deposit(userID string, amount float64) error {
	return ErrNotImplemented
}

// Withdraw is the instant payout path. Unimplemented, same as Deposit.
func (f *Facade) Withdraw(userID string, amount float64) error {
	return ErrNotImplemented
}

type ManualDepositRequest struct {
	Amount          float64      `json:"amount"`
	Method          string       `json:"method"`
	PaymentProofUrl string       `json:"paymentProofUrl"`
	BankDetails     *BankDetails `json:"bankDetails,omitempty"`
}

// SubmitManualDeposit validates limits and records a pending deposit. The
// balance does not move until an admin approves the payment.
func (f *Facade) SubmitManualDeposit(userID string, req ManualDepositRequest) (*PendingPayment, error) {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	usr, err := f.auth.CurrentUser(userID)
	if err != nil {
		return nil, err
	}

	if req.Amount < f.cfg.MinDeposit {
		return nil, newValidationError("min_deposit", "minimum deposit is %.2f", f.cfg.MinDeposit)
	}
	if req.Amount > f.cfg.MaxDeposit {
		return nil, newValidationError("max_deposit", "maximum deposit is %.2f", f.cfg.MaxDeposit)
	}
	if req.PaymentProofUrl == "" {
		return nil, newValidationError("payment_proof", "a proof of payment reference is required")
	}

	if today := f.sumToday(userID, TypeDeposit); today+req.Amount > f.cfg.DailyDepositCap {
		return nil, newValidationError("daily_deposit_cap", "daily deposit cap of %.2f exceeded", f.cfg.DailyDepositCap)
	}

	tx := NewManualDepositTransaction(userID, req.Amount, usr.Currency, req.Method)
	pp := NewPendingPayment(tx, req.PaymentProofUrl, req.BankDetails)

	f.mu.Lock()
	f.transactions = append(f.transactions, tx)
	f.pendingPayments = append(f.pendingPayments, pp)
	f.mu.Unlock()

	f.store.AppendTransaction(tx)
	f.store.AppendPendingPayment(pp)

	f.publish(TopicTransactionAdded, TransactionAddedEvent{UserID: userID, Transaction: tx})
	f.publish(TopicPendingPaymentAdded, PendingPaymentAddedEvent{UserID: userID, PendingPayment: pp})

	f.mirrorAsync(func(ctx context.Context) error { return f.mirror.SaveTransaction(ctx, &tx) })
	f.mirrorAsync(func(ctx context.Context) error { return f.mirror.SavePendingPayment(ctx, &pp) })

	return &pp, nil
}

type ManualWithdrawRequest struct {
	Amount      float64      `json:"amount"`
	Method      string       `json:"method"`
	BankDetails *BankDetails `json:"bankDetails,omitempty"`
}

// SubmitManualWithdraw debits the balance immediately: the funds are held
// while the admin decides. A rejection does NOT refund automatically; the
// compensating credit must arrive as a later balance adjustment.
func (f *Facade) SubmitManualWithdraw(userID string, req ManualWithdrawRequest) (*PendingPayment, error) {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	usr, err := f.auth.CurrentUser(userID)
	if err != nil {
		return nil, err
	}

	if req.Amount < f.cfg.MinWithdrawal {
		return nil, newValidationError("min_withdrawal", "minimum withdrawal is %.2f", f.cfg.MinWithdrawal)
	}

	if today := f.sumToday(userID, TypeWithdraw); today+req.Amount > f.cfg.DailyWithdrawalCap {
		return nil, newValidationError("daily_withdrawal_cap", "daily withdrawal cap of %.2f exceeded", f.cfg.DailyWithdrawalCap)
	}

	available := f.availableFor(usr)
	if req.Amount > available {
		return nil, ErrInsufficientBalance
	}

	if err := f.auth.ApplyBalanceDelta(userID, -req.Amount); err != nil {
		return nil, err
	}
	f.syncMainAccount(userID)

	tx := NewManualWithdrawTransaction(userID, req.Amount, usr.Currency, req.Method)
	pp := NewPendingPayment(tx, "", req.BankDetails)

	f.mu.Lock()
	f.transactions = append(f.transactions, tx)
	f.pendingPayments = append(f.pendingPayments, pp)
	f.mu.Unlock()

	f.store.AppendTransaction(tx)
	f.store.AppendPendingPayment(pp)

	f.publish(TopicTransactionAdded, TransactionAddedEvent{UserID: userID, Transaction: tx})
	f.publish(TopicPendingPaymentAdded, PendingPaymentAddedEvent{UserID: userID, PendingPayment: pp})

	f.mirrorAsync(func(ctx context.Context) error { return f.mirror.SaveTransaction(ctx, &tx) })
	f.mirrorAsync(func(ctx context.Context) error { return f.mirror.SavePendingPayment(ctx, &pp) })

	return &pp, nil
}

// TransferFunds converts between currency balances at the configured fixed
// rates. A flat fee is recorded on the outgoing leg without reducing the
// transferred amount. Legs in the user's primary currency go through the
// authoritative balance scalar; other currencies live on wallet accounts.
func (f *Facade) TransferFunds(userID, fromCurrency, toCurrency string, amount float64) (*Transaction, *Transaction, error) {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	usr, err := f.auth.CurrentUser(userID)
	if err != nil {
		return nil, nil, err
	}

	if amount <= 0 {
		return nil, nil, newValidationError("invalid_amount", "transfer amount must be positive")
	}
	if fromCurrency == toCurrency {
		return nil, nil, newValidationError("same_currency", "source and destination currencies are identical")
	}

	rateFrom, okFrom := f.cfg.ConversionRates[fromCurrency]
	rateTo, okTo := f.cfg.ConversionRates[toCurrency]
	if !okFrom || !okTo {
		return nil, nil, newValidationError("unknown_currency", "no conversion rate for %s/%s", fromCurrency, toCurrency)
	}

	if f.balanceFor(usr, fromCurrency) < amount {
		return nil, nil, ErrInsufficientBalance
	}

	converted := round(amount / rateFrom * rateTo)
	fee := round(amount * f.cfg.TransferFeeRate)

	if fromCurrency == usr.Currency {
		if err := f.auth.ApplyBalanceDelta(userID, -amount); err != nil {
			return nil, nil, err
		}
		f.syncMainAccount(userID)
	} else {
		f.creditAccount(userID, fromCurrency, -amount)
	}

	if toCurrency == usr.Currency {
		if err := f.auth.ApplyBalanceDelta(userID, converted); err != nil {
			return nil, nil, err
		}
		f.syncMainAccount(userID)
	} else {
		f.creditAccount(userID, toCurrency, converted)
	}

	debit, credit := NewTransferTransactions(userID, amount, converted, fee, fromCurrency, toCurrency)
	f.record(debit)
	f.record(credit)

	return &debit, &credit, nil
}

// ProcessBet debits the stake and records a settled bet transaction.
func (f *Facade) ProcessBet(userID string, amount float64, gameType string, meta Metadata) (*Transaction, error) {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	usr, err := f.auth.CurrentUser(userID)
	if err != nil {
		return nil, err
	}

	available := f.availableFor(usr)
	if !ValidBalance(amount, available) {
		return nil, ErrInsufficientBalance
	}

	if err := f.auth.ApplyBalanceDelta(userID, -amount); err != nil {
		return nil, err
	}
	f.syncMainAccount(userID)

	tx := NewBetTransaction(userID, amount, usr.Currency, gameType, mergeMeta(Metadata{
		"previousBalance": usr.Balance,
		"newBalance":      usr.Balance - amount,
	}, meta))
	f.record(tx)

	return &tx, nil
}

// ProcessWin credits a game payout. Zero and negative amounts are a no-op.
func (f *Facade) ProcessWin(userID string, amount float64, gameType string, meta Metadata) (*Transaction, error) {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	if amount <= 0 {
		return nil, nil
	}

	usr, err := f.auth.CurrentUser(userID)
	if err != nil {
		return nil, err
	}

	if err := f.auth.ApplyBalanceDelta(userID, amount); err != nil {
		return nil, err
	}
	f.syncMainAccount(userID)

	tx := NewWinTransaction(userID, amount, usr.Currency, gameType, mergeMeta(Metadata{
		"previousBalance": usr.Balance,
		"newBalance":      usr.Balance + amount,
	}, meta))
	f.record(tx)

	return &tx, nil
}

// RefreshWallet reloads the ledger from the store, recovering from missed
// events, and returns the current user-filtered view.
func (f *Facade) RefreshWallet(userID string) (*WalletView, error) {
	snap := f.store.Load()

	f.mu.Lock()
	f.transactions = snap.Transactions
	f.pendingPayments = snap.PendingPayments
	f.mu.Unlock()

	f.syncMainAccount(userID)
	return f.View(userID)
}

type WalletView struct {
	Balance         float64          `json:"balance"`
	Available       float64          `json:"available"`
	Currency        string           `json:"currency"`
	Accounts        []WalletAccount  `json:"accounts"`
	Stats           WalletStats      `json:"stats"`
	PendingPayments []PendingPayment `json:"pendingPayments"`
}

// View assembles the derived wallet state for one user. Stats and balances
// are recomputed on every call.
func (f *Facade) View(userID string) (*WalletView, error) {
	usr, err := f.auth.CurrentUser(userID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	txs := FilterByUser(f.transactions, userID)
	var payments []PendingPayment
	for _, p := range f.pendingPayments {
		if p.UserID == userID {
			payments = append(payments, p)
		}
	}
	var accounts []WalletAccount
	for _, acc := range f.accounts[userID] {
		accounts = append(accounts, *acc)
	}
	f.mu.Unlock()

	balance := f.Balance(userID, usr.Currency)

	return &WalletView{
		Balance:         balance,
		Available:       AvailableBalance(balance, txs),
		Currency:        usr.Currency,
		Accounts:        accounts,
		Stats:           ComputeStats(txs, time.Now()),
		PendingPayments: payments,
	}, nil
}

// Balance resolves the balance for a currency: main account first, then the
// authoritative scalar for the user's primary currency, then zero.
func (f *Facade) Balance(userID, currency string) float64 {
	usr, err := f.auth.CurrentUser(userID)
	if err != nil {
		return 0
	}
	return f.balanceFor(usr, currency)
}

// AvailableBalance is the primary-currency balance minus unsettled bet
// exposure.
func (f *Facade) AvailableBalance(userID string) float64 {
	usr, err := f.auth.CurrentUser(userID)
	if err != nil {
		return 0
	}
	return f.availableFor(usr)
}

// ValidateBalance reports whether a stake can be covered right now.
func (f *Facade) ValidateBalance(userID string, amount float64) bool {
	return ValidBalance(amount, f.AvailableBalance(userID))
}

// Stats recomputes the aggregate statistics for one user.
func (f *Facade) Stats(userID string) WalletStats {
	f.mu.Lock()
	txs := FilterByUser(f.transactions, userID)
	f.mu.Unlock()
	return ComputeStats(txs, time.Now())
}

// Transactions returns the user's ledger page, newest first.
func (f *Facade) Transactions(userID string, limit, offset int) ([]Transaction, int) {
	f.mu.Lock()
	txs := FilterByUser(f.transactions, userID)
	f.mu.Unlock()

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})

	total := len(txs)
	if offset >= total {
		return []Transaction{}, total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return txs[offset:end], total
}

func (f *Facade) PendingPayments(userID string) []PendingPayment {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]PendingPayment, 0)
	for _, p := range f.pendingPayments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

func (f *Facade) balanceFor(usr *user.User, currency string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, acc := range f.accounts[usr.ID.String()] {
		if acc.Currency == currency && acc.AccountType == AccountMain {
			return acc.Balance
		}
	}
	if currency == usr.Currency {
		return usr.Balance
	}
	return 0
}

func (f *Facade) availableFor(usr *user.User) float64 {
	balance := f.balanceFor(usr, usr.Currency)

	f.mu.Lock()
	txs := FilterByUser(f.transactions, usr.ID.String())
	f.mu.Unlock()

	return AvailableBalance(balance, txs)
}

// syncMainAccount rebuilds the primary-currency main account from the
// authoritative scalar. The projection always follows the scalar, never the
// reverse.
func (f *Facade) syncMainAccount(userID string) {
	usr, err := f.auth.CurrentUser(userID)
	if err != nil {
		logger.Warn("Wallet: cannot sync main account", logger.Merge(logger.WithError(err), logger.Fields{logger.UserIdKey: userID}))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for _, acc := range f.accounts[userID] {
		if acc.Currency == usr.Currency && acc.AccountType == AccountMain {
			acc.Balance = usr.Balance
			acc.UpdatedAt = now
			return
		}
	}

	f.accounts[userID] = append(f.accounts[userID], &WalletAccount{
		ID:          id.Generate(),
		UserID:      userID,
		Currency:    usr.Currency,
		AccountType: AccountMain,
		Balance:     usr.Balance,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// creditAccount mutates a non-primary currency account directly, creating
// it on first use.
func (f *Facade) creditAccount(userID, currency string, delta float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for _, acc := range f.accounts[userID] {
		if acc.Currency == currency && acc.AccountType == AccountMain {
			acc.Balance = round(acc.Balance + delta)
			acc.UpdatedAt = now
			return
		}
	}

	f.accounts[userID] = append(f.accounts[userID], &WalletAccount{
		ID:          id.Generate(),
		UserID:      userID,
		Currency:    currency,
		AccountType: AccountMain,
		Balance:     round(delta),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// sumToday totals the user's same-calendar-day activity for a type, used by
// the daily caps. Failed and cancelled entries do not count; transfer legs
// are not payment activity.
func (f *Facade) sumToday(userID string, txType TransactionType) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	var sum float64
	for _, tx := range f.transactions {
		if tx.UserID != userID || tx.Type != txType || tx.Method == "transfer" {
			continue
		}
		if tx.Status == StatusFailed || tx.Status == StatusCancelled {
			continue
		}
		if sameDay(tx.CreatedAt, now) {
			if tx.Amount < 0 {
				sum -= tx.Amount
			} else {
				sum += tx.Amount
			}
		}
	}
	return sum
}

// record commits a transaction locally, then broadcasts and mirrors it.
// Local state always wins; the mirror is fire and forget.
func (f *Facade) record(tx Transaction) {
	f.mu.Lock()
	f.transactions = append(f.transactions, tx)
	f.mu.Unlock()

	f.store.AppendTransaction(tx)
	f.publish(TopicTransactionAdded, TransactionAddedEvent{UserID: tx.UserID, Transaction: tx})
	f.mirrorAsync(func(ctx context.Context) error { return f.mirror.SaveTransaction(ctx, &tx) })
}

func (f *Facade) publish(topic string, payload interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := f.bus.Publish(ctx, topic, payload); err != nil {
		logger.Error("Wallet: publish failed", logger.Merge(logger.WithError(err), logger.Fields{logger.TopicKey: topic}))
	}
}

func (f *Facade) mirrorAsync(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := fn(ctx); err != nil {
			logger.Warn("Wallet: remote mirror write failed", logger.WithError(err))
		}
	}()
}

// mergeTransaction inserts an externally-sourced transaction, idempotent on
// id. Returns false when the entry already exists (duplicate delivery or
// our own publish echoing back).
func (f *Facade) mergeTransaction(tx Transaction) bool {
	f.mu.Lock()
	for _, existing := range f.transactions {
		if existing.ID == tx.ID {
			f.mu.Unlock()
			return false
		}
	}
	f.transactions = append(f.transactions, tx)
	f.mu.Unlock()

	f.store.AppendTransaction(tx)
	return true
}

func (f *Facade) mergePendingPayment(p PendingPayment) bool {
	f.mu.Lock()
	for _, existing := range f.pendingPayments {
		if existing.ID == p.ID {
			f.mu.Unlock()
			return false
		}
	}
	f.pendingPayments = append(f.pendingPayments, p)
	f.mu.Unlock()

	f.store.AppendPendingPayment(p)
	return true
}

// hasTransaction reports whether an id is already in the ledger, used to
// deduplicate balance deltas delivered back to their originator.
func (f *Facade) hasTransaction(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, tx := range f.transactions {
		if tx.ID == id {
			return true
		}
	}
	return false
}
