package wallet

import (
	"errors"
	"math"
	"net/http"

	"github.com/adeyemio/betwallet/internal/user"
	"github.com/adeyemio/betwallet/pkg/utils"
)

type Handler struct {
	Facade *Facade
}

func NewHandler(f *Facade) *Handler {
	return &Handler{Facade: f}
}

func currentUser(w http.ResponseWriter, r *http.Request) (user.User, bool) {
	usr, ok := r.Context().Value(utils.UserKey).(user.User)
	if !ok {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Unauthorized", nil)
		return user.User{}, false
	}
	return usr, true
}

// writeFacadeError maps wallet errors onto HTTP responses. Validation and
// balance errors are user-correctable; everything else is internal.
func writeFacadeError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		utils.BuildErrorResponse(w, http.StatusBadRequest, ve.Message, map[string]string{"constraint": ve.Constraint})
	case errors.Is(err, ErrInsufficientBalance):
		utils.BuildErrorResponse(w, http.StatusBadRequest, "Insufficient balance", nil)
	case errors.Is(err, ErrNotImplemented):
		utils.BuildErrorResponse(w, http.StatusNotImplemented, "This payment path is not available; use the manual flow", nil)
	default:
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Wallet operation failed", nil)
	}
}

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	view, err := h.Facade.View(usr.ID.String())
	if err != nil {
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Failed to load wallet", nil)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Wallet", view)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = usr.Currency
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Wallet balance", map[string]interface{}{
		"balance":   h.Facade.Balance(usr.ID.String(), currency),
		"available": h.Facade.AvailableBalance(usr.ID.String()),
		"currency":  currency,
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Wallet statistics", h.Facade.Stats(usr.ID.String()))
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit, offset, page := utils.GetPaginationDetails(r)
	txs, total := h.Facade.Transactions(usr.ID.String(), limit, offset)
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	utils.BuildSuccessResponse(w, http.StatusOK, "Transaction history", map[string]interface{}{
		"transactions": txs,
		"meta": map[string]interface{}{
			"total_items":  total,
			"total_pages":  totalPages,
			"current_page": page,
			"limit":        limit,
		},
	})
}

func (h *Handler) GetPendingPayments(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Pending payments", h.Facade.PendingPayments(usr.ID.String()))
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

// Deposit and Withdraw are the unimplemented instant paths; they always
// answer 501.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	writeFacadeError(w, h.Facade.Deposit(usr.ID.String(), req.Amount))
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	writeFacadeError(w, h.Facade.Withdraw(usr.ID.String(), req.Amount))
}

func (h *Handler) SubmitManualDeposit(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ManualDepositRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	payment, err := h.Facade.SubmitManualDeposit(usr.ID.String(), req)
	if err != nil {
		writeFacadeError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusCreated, "Deposit submitted for review", payment)
}

func (h *Handler) SubmitManualWithdraw(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ManualWithdrawRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	payment, err := h.Facade.SubmitManualWithdraw(usr.ID.String(), req)
	if err != nil {
		writeFacadeError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusCreated, "Withdrawal submitted for review; funds held", payment)
}

type transferRequest struct {
	FromCurrency string  `json:"fromCurrency"`
	ToCurrency   string  `json:"toCurrency"`
	Amount       float64 `json:"amount"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	debit, credit, err := h.Facade.TransferFunds(usr.ID.String(), req.FromCurrency, req.ToCurrency, req.Amount)
	if err != nil {
		writeFacadeError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Transfer completed", map[string]interface{}{
		"debit":  debit,
		"credit": credit,
	})
}

type betRequest struct {
	Amount   float64  `json:"amount"`
	GameType string   `json:"gameType"`
	Metadata Metadata `json:"metadata,omitempty"`
}

func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req betRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	tx, err := h.Facade.ProcessBet(usr.ID.String(), req.Amount, req.GameType, req.Metadata)
	if err != nil {
		writeFacadeError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Bet placed", tx)
}

func (h *Handler) RecordWin(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req betRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	tx, err := h.Facade.ProcessWin(usr.ID.String(), req.Amount, req.GameType, req.Metadata)
	if err != nil {
		writeFacadeError(w, err)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Win recorded", tx)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	usr, ok := currentUser(w, r)
	if !ok {
		return
	}

	view, err := h.Facade.RefreshWallet(usr.ID.String())
	if err != nil {
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Failed to refresh wallet", nil)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Wallet refreshed", view)
}
