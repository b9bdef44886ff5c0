package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBetAndWinScenario(t *testing.T) {
	usr := testUser(1000)
	f, authStub, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	bet, err := f.ProcessBet(uid, 50, "slots", nil)
	require.NoError(t, err)
	assert.Equal(t, TypeBet, bet.Type)
	assert.Equal(t, StatusCompleted, bet.Status)
	assert.Equal(t, -50.0, bet.Amount)
	assert.NotNil(t, bet.CompletedAt)
	assert.InDelta(t, 950, authStub.balance(uid), 0.001)
	assert.InDelta(t, 950, f.Balance(uid, "USD"), 0.001)

	win, err := f.ProcessWin(uid, 120, "slots", nil)
	require.NoError(t, err)
	assert.Equal(t, TypeWin, win.Type)
	assert.Equal(t, 120.0, win.Amount)
	assert.InDelta(t, 1070, authStub.balance(uid), 0.001)

	stats := f.Stats(uid)
	assert.InDelta(t, 50, stats.TotalWagered, 0.001)
	assert.InDelta(t, 120, stats.TotalWon, 0.001)

	// one entry per action, despite the facade hearing its own events back
	txs, total := f.Transactions(uid, 10, 0)
	assert.Equal(t, 2, total)
	assert.Len(t, txs, 2)
}

func TestBalanceDeltasCommute(t *testing.T) {
	usr := testUser(500)
	f, authStub, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	_, err := f.ProcessBet(uid, 30, "roulette", nil)
	require.NoError(t, err)
	_, err = f.ProcessWin(uid, 75, "roulette", nil)
	require.NoError(t, err)
	_, err = f.ProcessBet(uid, 20, "slots", nil)
	require.NoError(t, err)
	_, err = f.ProcessWin(uid, 5, "slots", nil)
	require.NoError(t, err)

	// initial + sum of signed deltas, independent of order
	assert.InDelta(t, 500-30+75-20+5, authStub.balance(uid), 0.001)
}

func TestProcessBetInsufficientBalance(t *testing.T) {
	usr := testUser(40)
	f, authStub, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	_, err := f.ProcessBet(uid, 50, "slots", nil)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.InDelta(t, 40, authStub.balance(uid), 0.001)

	_, total := f.Transactions(uid, 10, 0)
	assert.Zero(t, total)
}

func TestProcessBetRespectsPendingExposure(t *testing.T) {
	usr := testUser(100)
	f, _, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	pending := newTransaction(uid, TypeBet, 20, "USD")
	require.True(t, f.mergeTransaction(pending))

	assert.InDelta(t, 80, f.AvailableBalance(uid), 0.001)
	assert.True(t, f.ValidateBalance(uid, 80))
	assert.False(t, f.ValidateBalance(uid, 81))
	assert.False(t, f.ValidateBalance(uid, 0))
	assert.False(t, f.ValidateBalance(uid, -5))
}

func TestProcessWinIgnoresNonPositive(t *testing.T) {
	usr := testUser(100)
	f, authStub, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	tx, err := f.ProcessWin(uid, 0, "slots", nil)
	require.NoError(t, err)
	assert.Nil(t, tx)

	tx, err = f.ProcessWin(uid, -10, "slots", nil)
	require.NoError(t, err)
	assert.Nil(t, tx)

	assert.InDelta(t, 100, authStub.balance(uid), 0.001)
}

func TestInstantPathsAreStubs(t *testing.T) {
	usr := testUser(100)
	f, _, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	assert.ErrorIs(t, f.Deposit(uid, 50), ErrNotImplemented)
	assert.ErrorIs(t, f.Withdraw(uid, 50), ErrNotImplemented)
}

func TestSubmitManualDepositValidation(t *testing.T) {
	usr := testUser(0)
	f, _, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	tests := []struct {
		name       string
		req        ManualDepositRequest
		constraint string
	}{
		{
			name:       "below minimum",
			req:        ManualDepositRequest{Amount: 5, Method: "bank", PaymentProofUrl: "proof-1"},
			constraint: "min_deposit",
		},
		{
			name:       "above maximum",
			req:        ManualDepositRequest{Amount: 5000, Method: "bank", PaymentProofUrl: "proof-2"},
			constraint: "max_deposit",
		},
		{
			name:       "missing proof",
			req:        ManualDepositRequest{Amount: 50, Method: "bank"},
			constraint: "payment_proof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.SubmitManualDeposit(uid, tt.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.constraint, ve.Constraint)
		})
	}

	// nothing leaked into the ledger
	_, total := f.Transactions(uid, 10, 0)
	assert.Zero(t, total)
	assert.Empty(t, f.PendingPayments(uid))
}

func TestSubmitManualDepositDailyCap(t *testing.T) {
	usr := testUser(0)
	f, authStub, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	pp, err := f.SubmitManualDeposit(uid, ManualDepositRequest{Amount: 100, Method: "bank", PaymentProofUrl: "ref-1"})
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, pp.Status)
	assert.Equal(t, uid, pp.UserID)
	// pending deposits never move the balance
	assert.Zero(t, authStub.balance(uid))

	_, err = f.SubmitManualDeposit(uid, ManualDepositRequest{Amount: 100, Method: "bank", PaymentProofUrl: "ref-2"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "daily_deposit_cap", ve.Constraint)
}

func TestSubmitManualWithdrawHoldsFunds(t *testing.T) {
	usr := testUser(100)
	f, authStub, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	pp, err := f.SubmitManualWithdraw(uid, ManualWithdrawRequest{Amount: 80, Method: "bank"})
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, pp.Status)
	assert.Equal(t, TypeWithdraw, pp.Type)

	// debit-on-submit: funds held while the admin decides
	assert.InDelta(t, 20, authStub.balance(uid), 0.001)

	txs, total := f.Transactions(uid, 10, 0)
	require.Equal(t, 1, total)
	assert.Equal(t, StatusPending, txs[0].Status)
	assert.Equal(t, -80.0, txs[0].Amount)
}

func TestSubmitManualWithdrawInsufficientAvailable(t *testing.T) {
	usr := testUser(100)
	f, authStub, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	// an unsettled bet reserves part of the balance
	pending := newTransaction(uid, TypeBet, 30, "USD")
	require.True(t, f.mergeTransaction(pending))

	_, err := f.SubmitManualWithdraw(uid, ManualWithdrawRequest{Amount: 90, Method: "bank"})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.InDelta(t, 100, authStub.balance(uid), 0.001)
	assert.Empty(t, f.PendingPayments(uid))
}

func TestSubmitManualWithdrawBelowMinimum(t *testing.T) {
	usr := testUser(100)
	f, _, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	_, err := f.SubmitManualWithdraw(uid, ManualWithdrawRequest{Amount: 5, Method: "bank"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "min_withdrawal", ve.Constraint)
}

func TestTransferFundsScenario(t *testing.T) {
	usr := testUser(1000)
	f, authStub, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	debit, credit, err := f.TransferFunds(uid, "USD", "EUR", 100)
	require.NoError(t, err)

	assert.Equal(t, -100.0, debit.Amount)
	assert.Equal(t, "USD", debit.Currency)
	assert.InDelta(t, 1.0, debit.Fee, 0.001)

	assert.InDelta(t, 92, credit.Amount, 0.001)
	assert.Equal(t, "EUR", credit.Currency)
	// the fee is recorded, never deducted from the converted amount
	assert.Zero(t, credit.Fee)

	assert.InDelta(t, 900, authStub.balance(uid), 0.001)
	assert.InDelta(t, 92, f.Balance(uid, "EUR"), 0.001)
}

func TestTransferFundsValidation(t *testing.T) {
	usr := testUser(50)
	f, _, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	_, _, err := f.TransferFunds(uid, "USD", "EUR", 100)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, _, err = f.TransferFunds(uid, "USD", "JPY", 10)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "unknown_currency", ve.Constraint)

	_, _, err = f.TransferFunds(uid, "USD", "USD", 10)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "same_currency", ve.Constraint)

	_, _, err = f.TransferFunds(uid, "USD", "EUR", -5)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "invalid_amount", ve.Constraint)
}

func TestRefreshWalletReloadsFromStore(t *testing.T) {
	usr := testUser(200)
	f, _, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	_, err := f.ProcessBet(uid, 25, "sports", nil)
	require.NoError(t, err)

	// a foreign write lands directly in the store, as another instance would
	foreign := newTransaction(uid, TypeBonus, 15, "USD")
	f.store.AppendTransaction(complete(foreign))

	view, err := f.RefreshWallet(uid)
	require.NoError(t, err)

	_, total := f.Transactions(uid, 10, 0)
	assert.Equal(t, 2, total)
	assert.Equal(t, "USD", view.Currency)
}

func TestViewFiltersByUser(t *testing.T) {
	usr := testUser(300)
	f, _, _, _ := newTestFacade(t, usr)
	uid := usr.ID.String()

	_, err := f.ProcessBet(uid, 10, "slots", nil)
	require.NoError(t, err)

	// another user's entry in the shared blob must never leak through
	other := newTransaction("someone-else", TypeDeposit, 500, "USD")
	require.True(t, f.mergeTransaction(complete(other)))

	view, err := f.View(uid)
	require.NoError(t, err)
	assert.InDelta(t, 10, view.Stats.TotalWagered, 0.001)
	assert.Zero(t, view.Stats.TotalDeposited)

	_, total := f.Transactions(uid, 10, 0)
	assert.Equal(t, 1, total)
}
