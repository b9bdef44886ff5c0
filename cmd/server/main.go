package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"

	"github.com/adeyemio/betwallet/cmd/routes"
	"github.com/adeyemio/betwallet/internal/auth"
	"github.com/adeyemio/betwallet/internal/user"
	"github.com/adeyemio/betwallet/internal/wallet"
	"github.com/adeyemio/betwallet/pkg/config"
	"github.com/adeyemio/betwallet/pkg/database"
	"github.com/adeyemio/betwallet/pkg/events"
	"github.com/adeyemio/betwallet/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	database.Connect(cfg.DBUrl)
	database.DB.AutoMigrate(&user.User{})

	userRepo := user.NewRepository(database.DB)
	authProvider := auth.NewProvider(userRepo)

	bus := events.NewRedisBus(cfg.RedisURL, cfg.RedisPassword)
	store := wallet.NewStore(cfg.LedgerPath, cfg.LedgerMaxBytes)
	mirror := buildMirror(cfg)

	facade := wallet.NewFacade(cfg, authProvider, store, bus, mirror, wallet.LogNotifier{})

	reconciler := wallet.NewReconciler(facade)
	reconciler.Start()

	r := mux.NewRouter()
	handler := routes.RegisterRoutes(r, cfg, userRepo, facade, bus)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("Server starting", logger.Fields{"port": cfg.Port, "env": cfg.Env})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Could not listen", logger.Fields{"port": cfg.Port, "error": err.Error()})
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	server.Shutdown(ctx)
	bus.Close()
	logger.Info("Server gracefully shut down")
}

func buildMirror(cfg config.Config) wallet.Mirror {
	switch cfg.MirrorBackend {
	case "postgres":
		return wallet.NewGormMirror(database.DB)
	case "mongo":
		client := database.ConnectMongo(cfg.MongoURL)
		return wallet.NewMongoMirror(client, cfg.MongoDB)
	default:
		logger.Info("Remote mirror disabled")
		return wallet.NopMirror{}
	}
}
