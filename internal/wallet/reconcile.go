package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/adeyemio/betwallet/pkg/logger"
)

// Reconciler merges ledger mutations that did not originate from this
// facade instance: admin edits, simulated game outcomes, and writes from
// other instances. Merging is idempotent by id, so duplicate delivery and
// the originator's own echo are both safe. Malformed payloads are logged
// and dropped; nothing arriving on the bus may crash the subscriber.
type Reconciler struct {
	facade *Facade
}

func NewReconciler(f *Facade) *Reconciler {
	return &Reconciler{facade: f}
}

// Start subscribes to every wallet topic on the facade's bus.
func (r *Reconciler) Start() {
	bus := r.facade.bus

	bus.Subscribe(TopicTransactionAdded, r.guard(r.handleTransactionAdded))
	bus.Subscribe(TopicPendingPaymentAdded, r.guard(r.handlePendingPaymentAdded))
	bus.Subscribe(TopicPendingPaymentUpdated, r.guard(r.handlePendingPaymentUpdated))
	bus.Subscribe(TopicBalanceUpdate, r.guard(r.handleBalanceUpdate))
	bus.Subscribe(TopicBetWon, r.guard(r.handleBetWon))
	bus.Subscribe(TopicBetLost, r.guard(r.handleBetLost))
	bus.Subscribe(TopicDataSync, r.guard(r.handleDataSync))

	logger.Info("Reconciler subscribed to wallet topics")
}

// guard keeps a handler panic from killing the subscriber goroutine.
func (r *Reconciler) guard(h func(payload []byte)) func(topic string, payload []byte) {
	return func(topic string, payload []byte) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Reconciler: handler panicked", logger.Fields{
					logger.TopicKey: topic,
					"panic":         fmt.Sprint(rec),
				})
			}
		}()
		h(payload)
	}
}

func (r *Reconciler) handleTransactionAdded(payload []byte) {
	ev, err := decodeTransactionAdded(payload)
	if err != nil {
		r.drop(TopicTransactionAdded, err)
		return
	}

	if r.facade.mergeTransaction(ev.Transaction) {
		logger.Debug("Reconciler: merged external transaction", logger.Fields{
			logger.UserIdKey: ev.UserID,
			logger.TxIDKey:   ev.Transaction.ID,
		})
	}
}

func (r *Reconciler) handlePendingPaymentAdded(payload []byte) {
	ev, err := decodePendingPaymentAdded(payload)
	if err != nil {
		r.drop(TopicPendingPaymentAdded, err)
		return
	}

	r.facade.mergePendingPayment(ev.PendingPayment)
}

// handlePendingPaymentUpdated applies an admin decision on a manual
// submission exactly once. Approval completes the linked transaction and,
// for deposits, credits the balance now. Rejection fails the transaction;
// a rejected withdrawal is NOT refunded here -- the compensating credit is
// expected to arrive as a separate balance adjustment, and nothing enforces
// that it does.
func (r *Reconciler) handlePendingPaymentUpdated(payload []byte) {
	ev, err := decodePendingPaymentUpdated(payload)
	if err != nil {
		r.drop(TopicPendingPaymentUpdated, err)
		return
	}

	f := r.facade

	f.mu.Lock()
	var payment *PendingPayment
	for i := range f.pendingPayments {
		if f.pendingPayments[i].ID == ev.ID && f.pendingPayments[i].UserID == ev.UserID {
			payment = &f.pendingPayments[i]
			break
		}
	}
	if payment == nil || payment.Status != PaymentPending {
		// unknown or already reviewed; decisions apply once
		f.mu.Unlock()
		return
	}

	reviewedAt := ev.ReviewedAt
	if reviewedAt == nil {
		now := time.Now()
		reviewedAt = &now
	}

	payment.Status = ev.Status
	payment.Reason = ev.Reason
	payment.ReviewedAt = reviewedAt
	updated := *payment

	var linked *Transaction
	for i := range f.transactions {
		if f.transactions[i].ID == payment.TransactionID {
			linked = &f.transactions[i]
			break
		}
	}

	var linkedCopy *Transaction
	if linked != nil && !linked.Status.Terminal() {
		now := time.Now()
		if ev.Status == PaymentApproved {
			linked.Status = StatusCompleted
			linked.CompletedAt = &now
		} else {
			linked.Status = StatusFailed
		}
		linked.UpdatedAt = now
		cp := *linked
		linkedCopy = &cp
	}
	f.mu.Unlock()

	f.store.UpdatePendingPayment(updated)
	if linkedCopy != nil {
		f.store.UpdateTransaction(*linkedCopy)
		f.mirrorAsync(func(ctx context.Context) error { return f.mirror.UpdateTransaction(ctx, linkedCopy) })
	}
	f.mirrorAsync(func(ctx context.Context) error { return f.mirror.UpdatePendingPayment(ctx, &updated) })

	if ev.Status == PaymentApproved {
		if updated.Type == TypeDeposit {
			if err := f.auth.ApplyBalanceDelta(ev.UserID, updated.Amount); err != nil {
				logger.Error("Reconciler: deposit credit failed", logger.WithError(err))
			}
			f.syncMainAccount(ev.UserID)
		}
		f.notifier.Notify(ev.UserID, NoticePaymentApproved,
			fmt.Sprintf("Your %s of %.2f %s was approved", updated.Type, updated.Amount, updated.Currency))
		return
	}

	f.notifier.Notify(ev.UserID, NoticePaymentRejected,
		fmt.Sprintf("Your %s of %.2f %s was rejected: %s", updated.Type, updated.Amount, updated.Currency, ev.Reason))
}

// handleBalanceUpdate applies an external balance delta. Unless the event is
// tagged as a bet or win (whose transactions travel on their own), a bonus
// or fee transaction is synthesized under the adjustment id so the ledger
// keeps explaining every balance change.
func (r *Reconciler) handleBalanceUpdate(payload []byte) {
	ev, err := decodeBalanceUpdate(payload)
	if err != nil {
		r.drop(TopicBalanceUpdate, err)
		return
	}

	f := r.facade

	if ev.Source == "bet" || ev.Source == "win" {
		// ledger entry arrives via transaction_added; nothing to synthesize
		if ev.AdjustmentID != "" && f.hasTransaction(ev.AdjustmentID) {
			return
		}
		if err := f.auth.ApplyBalanceDelta(ev.UserID, ev.Amount); err != nil {
			logger.Error("Reconciler: balance delta failed", logger.WithError(err))
			return
		}
		f.syncMainAccount(ev.UserID)
		return
	}

	if ev.AdjustmentID != "" && f.hasTransaction(ev.AdjustmentID) {
		return
	}

	usr, err := f.auth.CurrentUser(ev.UserID)
	if err != nil {
		logger.Warn("Reconciler: balance update for unknown user", logger.Fields{logger.UserIdKey: ev.UserID})
		return
	}

	currency := ev.Currency
	if currency == "" {
		currency = usr.Currency
	}

	tx := NewAdjustmentTransaction(ev.UserID, ev.Amount, currency, ev.Reason)
	if ev.AdjustmentID != "" {
		tx.ID = ev.AdjustmentID
	}

	if !f.mergeTransaction(tx) {
		return
	}

	if err := f.auth.ApplyBalanceDelta(ev.UserID, ev.Amount); err != nil {
		logger.Error("Reconciler: balance delta failed", logger.WithError(err))
		return
	}
	f.syncMainAccount(ev.UserID)
	f.mirrorAsync(func(ctx context.Context) error { return f.mirror.SaveTransaction(ctx, &tx) })

	f.notifier.Notify(ev.UserID, NoticeBalanceAdjusted,
		fmt.Sprintf("Balance adjusted by %.2f: %s", ev.Amount, ev.Reason))
}

// handleBetWon credits the payout and appends the win transaction under the
// event's transaction id.
func (r *Reconciler) handleBetWon(payload []byte) {
	ev, err := decodeBetOutcome(payload)
	if err != nil {
		r.drop(TopicBetWon, err)
		return
	}
	if ev.Amount <= 0 {
		r.drop(TopicBetWon, fmt.Errorf("bet_won: non-positive amount"))
		return
	}

	f := r.facade

	usr, err := f.auth.CurrentUser(ev.UserID)
	if err != nil {
		logger.Warn("Reconciler: bet outcome for unknown user", logger.Fields{logger.UserIdKey: ev.UserID})
		return
	}

	currency := ev.Currency
	if currency == "" {
		currency = usr.Currency
	}

	tx := NewWinTransaction(ev.UserID, ev.Amount, currency, ev.GameType, Metadata{
		"multiplier": ev.Multiplier,
		"source":     "game_engine",
	})
	tx.ID = ev.TransactionID

	if !f.mergeTransaction(tx) {
		return
	}

	if err := f.auth.ApplyBalanceDelta(ev.UserID, ev.Amount); err != nil {
		logger.Error("Reconciler: win credit failed", logger.WithError(err))
		return
	}
	f.syncMainAccount(ev.UserID)
	f.mirrorAsync(func(ctx context.Context) error { return f.mirror.SaveTransaction(ctx, &tx) })

	f.notifier.Notify(ev.UserID, NoticeBetWon,
		fmt.Sprintf("You won %.2f %s on %s!", ev.Amount, currency, ev.GameType))
}

// handleBetLost only notifies: the stake was already debited when the bet
// was placed.
func (r *Reconciler) handleBetLost(payload []byte) {
	ev, err := decodeBetOutcome(payload)
	if err != nil {
		r.drop(TopicBetLost, err)
		return
	}

	r.facade.notifier.Notify(ev.UserID, NoticeBetLost,
		fmt.Sprintf("Your bet on %s did not win", ev.GameType))
}

// handleDataSync reloads the ledger blob, picking up writes made directly
// to the store by another instance.
func (r *Reconciler) handleDataSync(payload []byte) {
	ev, err := decodeDataSync(payload)
	if err != nil {
		r.drop(TopicDataSync, err)
		return
	}

	f := r.facade
	snap := f.store.Load()

	f.mu.Lock()
	f.transactions = snap.Transactions
	f.pendingPayments = snap.PendingPayments
	f.mu.Unlock()

	f.syncMainAccount(ev.UserID)
}

func (r *Reconciler) drop(topic string, err error) {
	logger.Warn("Reconciler: dropping malformed event", logger.Merge(logger.WithError(err), logger.Fields{
		logger.TopicKey: topic,
	}))
}
