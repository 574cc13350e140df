// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sharedsmiles/ticketdesk/internal/cache"
	"github.com/sharedsmiles/ticketdesk/internal/config"
	"github.com/sharedsmiles/ticketdesk/internal/database"
	"github.com/sharedsmiles/ticketdesk/internal/handler"
	"github.com/sharedsmiles/ticketdesk/internal/mailer"
	"github.com/sharedsmiles/ticketdesk/internal/repository"
	"github.com/sharedsmiles/ticketdesk/internal/service"
	"github.com/sharedsmiles/ticketdesk/internal/storage"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	ctx := context.Background()

	// ── 1. Configuration ─────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	// ── 2. Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Postgres)
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}
	defer pool.Close()
	logrus.Info("connected to PostgreSQL")

	// ── 3. Optional Redis cache ──────────────────────────────────────────
	var passCache *cache.PassCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("redis unavailable, pass cache disabled")
		} else {
			passCache = cache.New(rdb, cfg.Redis.CacheTTL)
			logrus.Info("connected to Redis")
		}
	}

	// ── 4. Receipt storage ───────────────────────────────────────────────
	receipts, err := storage.NewReceiptStore(cfg.Storage.Dir, cfg.Server.BaseURL)
	if err != nil {
		logrus.Fatalf("storage: %v", err)
	}

	// ── 5. Wire up layers ────────────────────────────────────────────────
	passRepo := repository.NewPassRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	poolRepo := repository.NewSeatPoolRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	dispatcher := mailer.NewDispatcher(settingsRepo, cfg.Mail.CodePrefix, cfg.Mail.SendTimeout)
	regSvc := service.NewRegistrationService(passRepo, regRepo, poolRepo, receipts, dispatcher)

	var passCacheIface service.PassCache
	if passCache != nil {
		passCacheIface = passCache
	}
	catalogSvc := service.NewCatalogService(passRepo, regRepo, passCacheIface)

	h := handler.New(regSvc, catalogSvc, dispatcher, settingsRepo)

	// ── 6. Build the router ──────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)
	r.Use(handler.Timeout(cfg.Server.Timeout))

	r.Get("/health", handler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/passes", h.ListPasses)
		r.Post("/register", h.Register)

		r.Route("/admin", func(r chi.Router) {
			r.Use(handler.AdminOnly(cfg.Server.AdminToken))

			r.Get("/registrations", h.ListRegistrations)
			r.Delete("/registrations", h.DeleteRegistration)
			r.Post("/confirm-registration", h.ConfirmRegistration)
			r.Post("/reject-registration", h.RejectRegistration)
			r.Get("/sync-seats", h.SyncSeats)
			r.Get("/seats", h.ListSeatPools)

			r.Get("/passes", h.ListPassesAdmin)
			r.Post("/passes", h.CreatePass)
			r.Put("/passes/{id}", h.UpdatePass)
			r.Delete("/passes/{id}", h.DeletePass)

			r.Get("/settings/smtp", h.GetSMTPSettings)
			r.Put("/settings/smtp", h.SaveSMTPSettings)
			r.Post("/test-smtp", h.TestSMTP)
		})
	})

	// Stored receipts are public by URL, matching the bucket behavior the
	// admin dashboard expects.
	r.Handle("/receipts/*", http.StripPrefix("/receipts/", http.FileServer(http.Dir(receipts.Dir()))))

	// ── 7. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logrus.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("graceful shutdown failed: %v", err)
	}
	logrus.Info("server stopped")
}
