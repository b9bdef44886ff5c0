package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/adeyemio/betwallet/internal/user"
	"github.com/adeyemio/betwallet/pkg/config"
	"github.com/adeyemio/betwallet/pkg/utils"
)

type Handler struct {
	Config config.Config
	Users  user.Repository
}

func NewHandler(cfg config.Config, users user.Repository) *Handler {
	return &Handler{Config: cfg, Users: users}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Currency string `json:"currency"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	if req.Email == "" || len(req.Password) < 8 {
		utils.BuildErrorResponse(w, http.StatusBadRequest, "Email and a password of at least 8 characters are required", nil)
		return
	}

	if existing, _ := h.Users.FindByEmail(req.Email); existing != nil {
		utils.BuildErrorResponse(w, http.StatusConflict, "Email already registered", nil)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Failed to secure password", nil)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	usr := user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         user.RoleUser,
		Currency:     currency,
	}

	if err := h.Users.CreateUser(&usr); err != nil {
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Failed to create user", nil)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusCreated, "Account created", map[string]interface{}{
		"id":       usr.ID,
		"email":    usr.Email,
		"currency": usr.Currency,
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if status, err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.BuildErrorResponse(w, status, "Invalid request", map[string]string{"error": err.Error()})
		return
	}

	usr, err := h.Users.FindByEmail(req.Email)
	if err != nil {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(req.Password)); err != nil {
		utils.BuildErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	claims := jwt.MapClaims{
		utils.UserIDKey: usr.ID.String(),
		utils.RoleKey:   usr.Role,
		utils.ExpKey:    time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.Config.JWTSecret))
	if err != nil {
		utils.BuildErrorResponse(w, http.StatusInternalServerError, "Failed to issue token", nil)
		return
	}

	utils.BuildSuccessResponse(w, http.StatusOK, "Logged in", map[string]interface{}{
		"token":    signed,
		"id":       usr.ID,
		"balance":  usr.Balance,
		"currency": usr.Currency,
	})
}
