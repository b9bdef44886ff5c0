package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/adeyemio/betwallet/internal/wallet"
	"github.com/adeyemio/betwallet/pkg/events"
	"github.com/adeyemio/betwallet/pkg/id"
	"github.com/adeyemio/betwallet/pkg/logger"
	"github.com/adeyemio/betwallet/pkg/utils"
)

// Handler is the admin review surface. It never touches wallet state
// directly: every decision goes out as a bus event and is merged by the
// reconciler, the same path any other external source takes.
type Handler struct {
	Bus events.Bus
}

func NewHandler(bus events.Bus) *Handler {
	return &Handler{Bus: bus}
}

func (h *Handler) publish(w http.ResponseWriter, topic string, payload interface{}) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Bus.Publish(ctx, topic, payload); err != nil {
		logger.Error("Admin: publish failed", logger.Merge(logger.WithError(err), logger.Fields{logger.TopicKey: topic}))
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Failed to publish event", nil)
		return false
	}
	return true
}

type reviewRequest struct {
	UserID  string `json:"userId"`
	ID      string `json:"id"`
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// ReviewPendingPayment approves or rejects a manual submission. Note that
// rejecting a withdrawal does not refund the held funds; issue a separate
// balance adjustment for that.
func (h *Handler) ReviewPendingPayment(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	if req.UserID == "" || req.ID == "" {
		utils.BuildErrorResponse(w, http.StatusBadRequest, "userId and id are required", nil)
		return
	}
	if !req.Approve && req.Reason == "" {
		utils.BuildErrorResponse(w, http.StatusBadRequest, "A reason is required when rejecting", nil)
		return
	}

	status := wallet.PaymentApproved
	if !req.Approve {
		status = wallet.PaymentRejected
	}

	now := time.Now()
	ev := wallet.PendingPaymentUpdatedEvent{
		UserID:     req.UserID,
		ID:         req.ID,
		Status:     status,
		Reason:     req.Reason,
		ReviewedAt: &now,
	}

	if !h.publish(w, wallet.TopicPendingPaymentUpdated, ev) {
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Review recorded", ev)
}

type adjustRequest struct {
	UserID   string  `json:"userId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Reason   string  `json:"reason"`
}

// AdjustBalance issues a manual balance correction. The reconciler
// synthesizes the matching bonus/fee transaction so the ledger explains the
// change.
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	if req.UserID == "" || req.Amount == 0 || req.Reason == "" {
		utils.BuildErrorResponse(w, http.StatusBadRequest, "userId, a non-zero amount and a reason are required", nil)
		return
	}

	ev := wallet.BalanceUpdateEvent{
		UserID:       req.UserID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Reason:       req.Reason,
		Source:       "admin",
		AdjustmentID: id.Generate(),
	}

	if !h.publish(w, wallet.TopicBalanceUpdate, ev) {
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Adjustment published", ev)
}

type insertTransactionRequest struct {
	UserID      string          `json:"userId"`
	Type        string          `json:"type"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Metadata    wallet.Metadata `json:"metadata,omitempty"`
}

// InsertTransaction pushes an admin-authored ledger entry. It carries no
// balance effect of its own; pair it with AdjustBalance when funds moved.
func (h *Handler) InsertTransaction(w http.ResponseWriter, r *http.Request) {
	var req insertTransactionRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	if req.UserID == "" || req.Type == "" {
		utils.BuildErrorResponse(w, http.StatusBadRequest, "userId and type are required", nil)
		return
	}

	now := time.Now()
	tx := wallet.Transaction{
		ID:          id.Generate(),
		UserID:      req.UserID,
		Type:        wallet.TransactionType(req.Type),
		Status:      wallet.StatusCompleted,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Method:      "admin",
		Description: req.Description,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: &now,
	}

	if !h.publish(w, wallet.TopicTransactionAdded, wallet.TransactionAddedEvent{UserID: req.UserID, Transaction: tx}) {
		return
	}

	utils.BuildSuccessResponse(w, http.StatusCreated, "Transaction published", tx)
}

type syncRequest struct {
	UserID string `json:"userId"`
}

// TriggerSync tells every instance to reload the ledger blob, recovering
// from any missed events.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	if req.UserID == "" {
		utils.BuildErrorResponse(w, http.StatusBadRequest, "userId is required", nil)
		return
	}

	if !h.publish(w, wallet.TopicDataSync, wallet.DataSyncEvent{UserID: req.UserID}) {
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Sync requested", nil)
}
