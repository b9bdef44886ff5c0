package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorySignConventions(t *testing.T) {
	bet := NewBetTransaction("u1", 50, "USD", "slots", nil)
	assert.Equal(t, -50.0, bet.Amount)
	assert.Equal(t, StatusCompleted, bet.Status)
	require.NotNil(t, bet.CompletedAt)

	win := NewWinTransaction("u1", 120, "USD", "slots", nil)
	assert.Equal(t, 120.0, win.Amount)
	assert.Equal(t, StatusCompleted, win.Status)

	dep := NewManualDepositTransaction("u1", 100, "USD", "bank")
	assert.Equal(t, 100.0, dep.Amount)
	assert.Equal(t, StatusPending, dep.Status)
	assert.Nil(t, dep.CompletedAt)

	wdr := NewManualWithdrawTransaction("u1", 100, "USD", "bank")
	assert.Equal(t, -100.0, wdr.Amount)
	assert.Equal(t, StatusPending, wdr.Status)
}

func TestFactoryNormalizesSign(t *testing.T) {
	// callers pass magnitudes; the factory owns the sign
	bet := NewBetTransaction("u1", -50, "USD", "slots", nil)
	assert.Equal(t, -50.0, bet.Amount)

	win := NewWinTransaction("u1", -120, "USD", "slots", nil)
	assert.Equal(t, 120.0, win.Amount)
}

func TestFactoryIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tx := NewBetTransaction("u1", 1, "USD", "slots", nil)
		require.False(t, seen[tx.ID], "duplicate id %s", tx.ID)
		seen[tx.ID] = true
	}
}

func TestAdjustmentTransactionType(t *testing.T) {
	bonus := NewAdjustmentTransaction("u1", 25, "USD", "goodwill")
	assert.Equal(t, TypeBonus, bonus.Type)
	assert.Equal(t, 25.0, bonus.Amount)
	assert.Equal(t, StatusCompleted, bonus.Status)
	assert.Equal(t, true, bonus.Metadata["admin"])

	fee := NewAdjustmentTransaction("u1", -25, "USD", "chargeback")
	assert.Equal(t, TypeFee, fee.Type)
	assert.Equal(t, -25.0, fee.Amount)
}

func TestTransferTransactionsPairing(t *testing.T) {
	debit, credit, fee := func() (Transaction, Transaction, float64) {
		d, c := NewTransferTransactions("u1", 100, 92, 1, "USD", "EUR")
		return d, c, d.Fee
	}()

	assert.Equal(t, -100.0, debit.Amount)
	assert.Equal(t, "USD", debit.Currency)
	assert.InDelta(t, 1.0, fee, 0.001)

	assert.InDelta(t, 92, credit.Amount, 0.001)
	assert.Equal(t, "EUR", credit.Currency)
	assert.Equal(t, debit.ID, credit.Metadata["pairId"])
	assert.NotEqual(t, debit.ID, credit.ID)
}

func TestNewPendingPaymentLinksTransaction(t *testing.T) {
	tx := NewManualWithdrawTransaction("u1", 80, "USD", "bank")
	pp := NewPendingPayment(tx, "", &BankDetails{BankName: "First Bank", AccountNumber: "0123456789"})

	assert.Equal(t, tx.ID, pp.TransactionID)
	assert.Equal(t, "u1", pp.UserID)
	assert.Equal(t, TypeWithdraw, pp.Type)
	// pending payments carry magnitudes
	assert.Equal(t, 80.0, pp.Amount)
	assert.Equal(t, PaymentPending, pp.Status)
	assert.Nil(t, pp.ReviewedAt)
	require.NotNil(t, pp.BankDetails)
	assert.Equal(t, "First Bank", pp.BankDetails.BankName)
}
