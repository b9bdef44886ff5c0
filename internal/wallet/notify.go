package wallet

import "github.com/adeyemio/betwallet/pkg/logger"

const (
	NoticeBetWon          = "bet_won"
	NoticeBetLost         = "bet_lost"
	NoticePaymentApproved = "payment_approved"
	NoticePaymentRejected = "payment_rejected"
	NoticeBalanceAdjusted = "balance_adjusted"
)

// Notifier surfaces one-time user-facing messages for externally-decided
// outcomes. A late notification after shutdown is discarded harmlessly.
type Notifier interface {
	Notify(userID, kind, message string)
}

type LogNotifier struct{}

func (LogNotifier) Notify(userID, kind, message string) {
	logger.Info("User notification", logger.Fields{
		logger.UserIdKey: userID,
		"kind":           kind,
		"message":        message,
	})
}
