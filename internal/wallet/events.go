package wallet

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topics carried on the broadcast bus. Every payload names its user; events
// without one are malformed and dropped.
const (
	TopicTransactionAdded      = "transaction_added"
	TopicPendingPaymentAdded   = "pending_payment_added"
	TopicPendingPaymentUpdated = "pending_payment_updated"
	TopicBalanceUpdate         = "balance_update"
	TopicBetWon                = "bet_won"
	TopicBetLost               = "bet_lost"
	TopicDataSync              = "data_sync"
)

type TransactionAddedEvent struct {
	UserID      string      `json:"userId"`
	Transaction Transaction `json:"transaction"`
}

type PendingPaymentAddedEvent struct {
	UserID         string         `json:"userId"`
	PendingPayment PendingPayment `json:"pendingPayment"`
}

// PendingPaymentUpdatedEvent is the admin decision on a manual submission.
// Incoming fields shallow-merge over the stored record.
type PendingPaymentUpdatedEvent struct {
	UserID     string               `json:"userId"`
	ID         string               `json:"id"`
	Status     PendingPaymentStatus `json:"status"`
	Reason     string               `json:"reason,omitempty"`
	ReviewedAt *time.Time           `json:"reviewedAt,omitempty"`
}

// BalanceUpdateEvent reports an externally-applied balance delta. Source
// tags "bet"/"win" mean the corresponding transaction travels separately;
// anything else makes the reconciler synthesize a bonus/fee entry under
// AdjustmentID so the ledger explains the change.
type BalanceUpdateEvent struct {
	UserID       string  `json:"userId"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency,omitempty"`
	Reason       string  `json:"reason"`
	Source       string  `json:"source,omitempty"`
	AdjustmentID string  `json:"adjustmentId,omitempty"`
}

// BetOutcomeEvent is a simulated game or sports settlement. Wins credit the
// balance and append a win transaction under TransactionID; losses only
// notify (the debit already happened at bet placement).
type BetOutcomeEvent struct {
	UserID        string  `json:"userId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
	GameType      string  `json:"gameType"`
	Multiplier    float64 `json:"multiplier,omitempty"`
	TransactionID string  `json:"transactionId"`
}

type DataSyncEvent struct {
	UserID string `json:"userId"`
}

func decodeTransactionAdded(payload []byte) (*TransactionAddedEvent, error) {
	var ev TransactionAddedEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	if ev.UserID == "" || ev.Transaction.ID == "" || ev.Transaction.Type == "" {
		return nil, fmt.Errorf("transaction_added: missing required fields")
	}
	return &ev, nil
}

func decodePendingPaymentAdded(payload []byte) (*PendingPaymentAddedEvent, error) {
	var ev PendingPaymentAddedEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	if ev.UserID == "" || ev.PendingPayment.ID == "" {
		return nil, fmt.Errorf("pending_payment_added: missing required fields")
	}
	return &ev, nil
}

func decodePendingPaymentUpdated(payload []byte) (*PendingPaymentUpdatedEvent, error) {
	var ev PendingPaymentUpdatedEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	if ev.UserID == "" || ev.ID == "" {
		return nil, fmt.Errorf("pending_payment_updated: missing required fields")
	}
	switch ev.Status {
	case PaymentApproved, PaymentRejected:
	default:
		return nil, fmt.Errorf("pending_payment_updated: invalid status %q", ev.Status)
	}
	return &ev, nil
}

func decodeBalanceUpdate(payload []byte) (*BalanceUpdateEvent, error) {
	var ev BalanceUpdateEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	if ev.UserID == "" || ev.Amount == 0 {
		return nil, fmt.Errorf("balance_update: missing required fields")
	}
	return &ev, nil
}

func decodeBetOutcome(payload []byte) (*BetOutcomeEvent, error) {
	var ev BetOutcomeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	if ev.UserID == "" || ev.TransactionID == "" {
		return nil, fmt.Errorf("bet outcome: missing required fields")
	}
	return &ev, nil
}

func decodeDataSync(payload []byte) (*DataSyncEvent, error) {
	var ev DataSyncEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	if ev.UserID == "" {
		return nil, fmt.Errorf("data_sync: missing userId")
	}
	return &ev, nil
}
