package wallet

import (
	"fmt"
	"math"
	"time"

	"github.com/adeyemio/betwallet/pkg/id"
)

// Factory constructors build well-formed ledger records. Ids are uuids,
// unique for the process lifetime; signs follow the debit/credit convention;
// statuses default per action (game outcomes settle immediately, manual
// submissions await review).

func newTransaction(userID string, txType TransactionType, amount float64, currency string) Transaction {
	now := time.Now()
	if txType.IsDebit() {
		amount = -math.Abs(amount)
	} else {
		amount = math.Abs(amount)
	}

	return Transaction{
		ID:        id.Generate(),
		UserID:    userID,
		Type:      txType,
		Status:    StatusPending,
		Amount:    amount,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func complete(tx Transaction) Transaction {
	now := time.Now()
	tx.Status = StatusCompleted
	tx.UpdatedAt = now
	tx.CompletedAt = &now
	return tx
}

func NewBetTransaction(userID string, amount float64, currency, gameType string, meta Metadata) Transaction {
	tx := newTransaction(userID, TypeBet, amount, currency)
	tx.Method = gameType
	tx.Description = fmt.Sprintf("Bet placed on %s", gameType)
	tx.Metadata = mergeMeta(Metadata{"gameType": gameType}, meta)
	return complete(tx)
}

func NewWinTransaction(userID string, amount float64, currency, gameType string, meta Metadata) Transaction {
	tx := newTransaction(userID, TypeWin, amount, currency)
	tx.Method = gameType
	tx.Description = fmt.Sprintf("Win from %s", gameType)
	tx.Metadata = mergeMeta(Metadata{"gameType": gameType}, meta)
	return complete(tx)
}

func NewManualDepositTransaction(userID string, amount float64, currency, method string) Transaction {
	tx := newTransaction(userID, TypeDeposit, amount, currency)
	tx.Method = method
	tx.Description = "Manual deposit pending review"
	tx.Metadata = Metadata{"manual": true}
	return tx
}

func NewManualWithdrawTransaction(userID string, amount float64, currency, method string) Transaction {
	tx := newTransaction(userID, TypeWithdraw, amount, currency)
	tx.Method = method
	tx.Description = "Manual withdrawal pending review"
	tx.Metadata = Metadata{"manual": true}
	return tx
}

// NewTransferTransactions builds the paired legs of a currency transfer.
// The fee is recorded on the debit leg, not deducted from its amount.
func NewTransferTransactions(userID string, amount, converted, fee float64, fromCurrency, toCurrency string) (Transaction, Transaction) {
	debit := newTransaction(userID, TypeWithdraw, amount, fromCurrency)
	debit.Fee = fee
	debit.Method = "transfer"
	debit.Description = fmt.Sprintf("Transfer %s -> %s", fromCurrency, toCurrency)
	debit.Metadata = Metadata{"transfer": true, "toCurrency": toCurrency}

	credit := newTransaction(userID, TypeDeposit, converted, toCurrency)
	credit.Method = "transfer"
	credit.Description = fmt.Sprintf("Transfer %s -> %s", fromCurrency, toCurrency)
	credit.Metadata = Metadata{"transfer": true, "fromCurrency": fromCurrency, "pairId": debit.ID}

	return complete(debit), complete(credit)
}

// NewAdjustmentTransaction records an externally-decided balance change so
// the ledger stays the single source of truth for why the balance moved.
// Credits become bonus entries, debits fee entries.
func NewAdjustmentTransaction(userID string, amount float64, currency, reason string) Transaction {
	txType := TypeBonus
	if amount < 0 {
		txType = TypeFee
	}

	tx := newTransaction(userID, txType, amount, currency)
	tx.Method = "admin"
	tx.Description = reason
	tx.Metadata = Metadata{"admin": true, "reason": reason}
	return complete(tx)
}

func NewPendingPayment(tx Transaction, proofURL string, bank *BankDetails) PendingPayment {
	return PendingPayment{
		ID:              id.Generate(),
		UserID:          tx.UserID,
		Type:            tx.Type,
		Amount:          math.Abs(tx.Amount),
		Currency:        tx.Currency,
		Method:          tx.Method,
		TransactionID:   tx.ID,
		PaymentProofUrl: proofURL,
		Status:          PaymentPending,
		SubmittedAt:     tx.CreatedAt,
		BankDetails:     bank,
	}
}

func mergeMeta(base, extra Metadata) Metadata {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// round keeps derived monetary values at two decimal places.
func round(val float64) float64 {
	return math.Round(val*100) / 100
}
