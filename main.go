package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/librarycatalog/config"
	"github.com/camden-git/librarycatalog/database"
	"github.com/camden-git/librarycatalog/handlers"
	"github.com/camden-git/librarycatalog/logger"
	"github.com/camden-git/librarycatalog/models"
	"github.com/camden-git/librarycatalog/realtime"
	"github.com/camden-git/librarycatalog/repository"
	"github.com/camden-git/librarycatalog/services"
)

func main() {
	envErr := godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	if envErr != nil {
		appLog.Info("no .env file loaded", "error", envErr)
	}
	for _, warning := range cfg.Warnings {
		appLog.Warn("configuration", "warning", warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitGormDB(cfg, appLog)
	if err != nil {
		appLog.Fatal("failed to initialize database", "error", err)
	}
	defer func() {
		if err := database.CloseGormDB(db); err != nil {
			appLog.Warn("failed to close database", "error", err)
		}
	}()
	if err := database.AutoMigrateModels(db); err != nil {
		appLog.Fatal("failed to migrate database", "error", err)
	}

	hub := realtime.NewHub(cfg.CORSAllowedOrigins, appLog)
	go hub.Run(ctx)

	catalog := services.NewCatalog(services.Deps{
		Authors:       repository.NewAuthorRepository(db, appLog),
		Genres:        repository.NewGenreRepository(db, appLog),
		Books:         repository.NewBookRepository(db, appLog),
		BookInstances: repository.NewBookInstanceRepository(db, appLog),
		StatusCounts: func(ctx context.Context) (map[models.BookInstanceStatus]int64, error) {
			return database.CountCopiesByStatus(ctx, db)
		},
		Events: hub,
		Log:    appLog,
	})
	catalogHandler := handlers.NewCatalogHandler(catalog, appLog)

	limiter := handlers.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, appLog)
	go limiter.RunSweeper(ctx.Done())

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/catalog", http.StatusFound)
		})
		r.Route("/catalog", func(r chi.Router) {
			catalogHandler.Routes(r, limiter.Middleware)
		})
	})

	// long-lived, kept outside the request timeout
	r.Get("/ws", hub.ServeWS)

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLog.Warn("server shutdown failed", "error", err)
		}
	}()

	appLog.Info("server listening", "addr", serverAddr, "driver", cfg.DatabaseDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Fatal("server failed", "error", err)
	}
	appLog.Info("server stopped")
}
