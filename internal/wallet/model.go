package wallet

import "time"

type TransactionType string

const (
	TypeDeposit  TransactionType = "deposit"
	TypeWithdraw TransactionType = "withdraw"
	TypeBet      TransactionType = "bet"
	TypeWin      TransactionType = "win"
	TypeBonus    TransactionType = "bonus"
	TypeFee      TransactionType = "fee"
	TypeRefund   TransactionType = "refund"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Metadata is an open provenance bag (game id, odds, multiplier, admin flag,
// balance snapshots). Never validated, purely advisory.
type Metadata map[string]interface{}

// Transaction is one ledger entry. Sign convention: debits (withdraw, bet,
// fee) carry negative amounts, credits (deposit, win, bonus, refund)
// positive ones. Fee is informational and never deducted from Amount.
type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	Fee         float64           `json:"fee"`
	Method      string            `json:"method"`
	Description string            `json:"description"`
	Metadata    Metadata          `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

// IsDebit reports whether this transaction type debits the balance.
func (t TransactionType) IsDebit() bool {
	switch t {
	case TypeWithdraw, TypeBet, TypeFee:
		return true
	}
	return false
}

// Terminal reports whether a status permits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

type PendingPaymentStatus string

const (
	PaymentPending  PendingPaymentStatus = "pending"
	PaymentApproved PendingPaymentStatus = "approved"
	PaymentRejected PendingPaymentStatus = "rejected"
)

type BankDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	Reference     string `json:"reference,omitempty"`
}

// PendingPayment is a manual deposit or withdrawal awaiting admin review.
// Only an external reviewer flips Status; entries are appended or updated,
// never deleted.
type PendingPayment struct {
	ID              string               `json:"id"`
	UserID          string               `json:"userId"`
	Type            TransactionType      `json:"type"`
	Amount          float64              `json:"amount"`
	Currency        string               `json:"currency"`
	Method          string               `json:"method"`
	TransactionID   string               `json:"transactionId"`
	PaymentProofUrl string               `json:"paymentProofUrl,omitempty"`
	Status          PendingPaymentStatus `json:"status"`
	Reason          string               `json:"reason,omitempty"`
	SubmittedAt     time.Time            `json:"submittedAt"`
	ReviewedAt      *time.Time           `json:"reviewedAt,omitempty"`
	BankDetails     *BankDetails         `json:"bankDetails,omitempty"`
}

type AccountType string

const (
	AccountMain  AccountType = "main"
	AccountBonus AccountType = "bonus"
)

// WalletAccount is a per-currency balance projection. The main account in
// the user's primary currency is rebuilt from the authoritative user balance
// on every observed change, never the reverse.
type WalletAccount struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Currency        string      `json:"currency"`
	AccountType     AccountType `json:"accountType"`
	Balance         float64     `json:"balance"`
	ReservedBalance float64     `json:"reservedBalance"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// WalletStats is derived on every read and never stored.
type WalletStats struct {
	TotalDeposited     float64 `json:"totalDeposited"`
	TotalWithdrawn     float64 `json:"totalWithdrawn"`
	TotalWagered       float64 `json:"totalWagered"`
	TotalWon           float64 `json:"totalWon"`
	PendingWithdrawals float64 `json:"pendingWithdrawals"`
	ActiveBets         float64 `json:"activeBets"`
	WinRate            float64 `json:"winRate"`
	BiggestWin         float64 `json:"biggestWin"`

	TodayDeposited float64 `json:"todayDeposited"`
	TodayWithdrawn float64 `json:"todayWithdrawn"`
	TodayWagered   float64 `json:"todayWagered"`
	TodayWon       float64 `json:"todayWon"`

	MonthDeposited float64 `json:"monthDeposited"`
	MonthWagered   float64 `json:"monthWagered"`
	MonthWon       float64 `json:"monthWon"`
}

const snapshotVersion = 1

// LedgerSnapshot is the persisted blob layout. One blob per installation,
// shared across users; consumers must filter by userId on every read.
type LedgerSnapshot struct {
	Transactions    []Transaction    `json:"transactions"`
	PendingPayments []PendingPayment `json:"pendingPayments"`
	LastUpdated     time.Time        `json:"lastUpdated"`
	Version         int              `json:"version"`
}
