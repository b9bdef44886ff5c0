package routes

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/adeyemio/betwallet/internal/admin"
	"github.com/adeyemio/betwallet/internal/auth"
	"github.com/adeyemio/betwallet/internal/middleware"
	"github.com/adeyemio/betwallet/internal/user"
	"github.com/adeyemio/betwallet/internal/wallet"
	"github.com/adeyemio/betwallet/pkg/config"
	"github.com/adeyemio/betwallet/pkg/events"
	"github.com/adeyemio/betwallet/pkg/logger"
)

func RegisterRoutes(r *mux.Router, cfg config.Config, userRepo user.Repository, facade *wallet.Facade, bus events.Bus) http.Handler {
	authHandler := auth.NewHandler(cfg, userRepo)
	walletHandler := wallet.NewHandler(facade)
	adminHandler := admin.NewHandler(bus)

	r.Use(middleware.LoggingMiddleware)

	limiter := middleware.NewRateLimiter(rate.Limit(10), 20)
	r.Use(limiter.Limit)

	authR := r.PathPrefix("/api/auth").Subrouter()
	authR.HandleFunc("/register", authHandler.Register).Methods("POST")
	authR.HandleFunc("/login", authHandler.Login).Methods("POST")

	walletR := r.PathPrefix("/api/wallet").Subrouter()
	walletR.Use(auth.JWTMiddleware(cfg, userRepo))
	walletR.HandleFunc("", walletHandler.GetWallet).Methods("GET")
	walletR.HandleFunc("/balance", walletHandler.GetBalance).Methods("GET")
	walletR.HandleFunc("/stats", walletHandler.GetStats).Methods("GET")
	walletR.HandleFunc("/transactions", walletHandler.GetTransactions).Methods("GET")
	walletR.HandleFunc("/payments", walletHandler.GetPendingPayments).Methods("GET")
	walletR.HandleFunc("/deposit", walletHandler.Deposit).Methods("POST")
	walletR.HandleFunc("/withdraw", walletHandler.Withdraw).Methods("POST")
	walletR.HandleFunc("/deposit/manual", walletHandler.SubmitManualDeposit).Methods("POST")
	walletR.HandleFunc("/withdraw/manual", walletHandler.SubmitManualWithdraw).Methods("POST")
	walletR.HandleFunc("/transfer", walletHandler.Transfer).Methods("POST")
	walletR.HandleFunc("/bet", walletHandler.PlaceBet).Methods("POST")
	walletR.HandleFunc("/win", walletHandler.RecordWin).Methods("POST")
	walletR.HandleFunc("/refresh", walletHandler.Refresh).Methods("POST")

	adminR := r.PathPrefix("/api/admin").Subrouter()
	adminR.Use(auth.JWTMiddleware(cfg, userRepo))
	adminR.Use(auth.AdminMiddleware)
	adminR.HandleFunc("/payments/review", adminHandler.ReviewPendingPayment).Methods("POST")
	adminR.HandleFunc("/adjust", adminHandler.AdjustBalance).Methods("POST")
	adminR.HandleFunc("/transactions", adminHandler.InsertTransaction).Methods("POST")
	adminR.HandleFunc("/sync", adminHandler.TriggerSync).Methods("POST")

	if cfg.Env != "production" {
		r.HandleFunc("/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
			content, err := os.ReadFile("docs/swagger.yaml")
			if err != nil {
				logger.Error("Failed to read swagger.yaml", logger.Fields{"error": err.Error()})
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/yaml")
			w.Write(content)
		})

		r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
			httpSwagger.URL("/swagger.yaml"),
		))
		logger.Info("Swagger documentation enabled at /swagger/index.html")
	}

	corsObj := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return corsObj(r)
}
