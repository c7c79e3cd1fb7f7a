package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/tahcohcat/memorymatch-web/config"
	"github.com/tahcohcat/memorymatch-web/internal/api"
	"github.com/tahcohcat/memorymatch-web/internal/auth"
	"github.com/tahcohcat/memorymatch-web/internal/cache"
	"github.com/tahcohcat/memorymatch-web/internal/database"
	"github.com/tahcohcat/memorymatch-web/internal/logger"
	"github.com/tahcohcat/memorymatch-web/internal/services"
	"github.com/tahcohcat/memorymatch-web/internal/websocket"
)

func main() {
	log := logger.New()

	// Load config from files and environment variables
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("Failed to load config")
		os.Exit(1)
	}
	logger.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))

	// Initialize database
	db, err := database.NewDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.WithError(err).Error("Failed to initialize database")
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(cfg.Server.AllowedOrigins)
	go hub.Run(ctx)

	// Initialize services
	userService := services.NewUserService(db)
	achievementService := services.NewAchievementService(db, hub)
	leaderboardService := services.NewLeaderboardService(db,
		cache.NewLeaderboardCache(cfg.Leaderboard.CacheTTL),
		cfg.Leaderboard.DefaultLimit, cfg.Leaderboard.MaxLimit)
	gameService := services.NewGameService(db, achievementService, leaderboardService, hub)

	authManager := auth.NewManager(cfg.Auth.SessionSecret, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, userService)
	handler := api.NewHandler(userService, gameService, achievementService, leaderboardService)
	r := api.NewRouter(handler, authManager, hub)

	// CORS setup for the browser client
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Success(fmt.Sprintf("🧠 MemoryMatch server starting on port %s", cfg.Server.Port))
		log.Info(fmt.Sprintf("🗄️ Database: %s", db.Driver()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Graceful shutdown failed")
	}
}
