//	@title			Studio Media API
//	@version		1.0
//	@description	Backend for the studio website: gallery records, direct-to-storage upload tickets and the contact inbox.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	AdminSecret
//	@in							header
//	@name						Authorization
//	@description				Admin secret, or a session token as **Bearer {token}** from POST /admin/session.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/visualink/studio/internal/auth"
	"github.com/visualink/studio/internal/config"
	"github.com/visualink/studio/internal/contact"
	"github.com/visualink/studio/internal/db"
	"github.com/visualink/studio/internal/gallery"
	appMiddleware "github.com/visualink/studio/internal/middleware"
	"github.com/visualink/studio/internal/notify"
	"github.com/visualink/studio/internal/response"
	"github.com/visualink/studio/internal/storage"
	"github.com/visualink/studio/internal/upload"

	_ "github.com/visualink/studio/docs/swagger"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg.Log(ctx, slog.Default())

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("database connection failed", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		fatal("database migration failed", err)
	}

	objects, err := storage.New(ctx, storage.Config{
		Driver:     cfg.StorageDriver,
		Endpoint:   cfg.StorageEndpoint,
		Region:     cfg.StorageRegion,
		Bucket:     cfg.StorageBucket,
		AccessKey:  cfg.StorageAccessKey,
		SecretKey:  cfg.StorageSecretKey,
		UseSSL:     cfg.StorageUseSSL,
		PathStyle:  cfg.StoragePathStyle,
		PublicBase: cfg.StoragePublicBase,
	})
	if err != nil {
		fatal("object storage init failed", err)
	}

	gate := auth.NewGate(cfg.AdminSecret, cfg.AdminSessionTTL)
	if !gate.Configured() {
		slog.Warn("ADMIN_SECRET is not set; every admin request will be rejected")
	}

	var notifier contact.Notifier = notify.Noop{}
	if cfg.SendGridAPIKey != "" {
		sg, err := notify.NewSendGrid(cfg.SendGridAPIKey, cfg.NotifyFrom, cfg.NotifyTo)
		if err != nil {
			fatal("notifier init failed", err)
		}
		notifier = sg
	} else {
		slog.Info("SENDGRID_API_KEY not set; contact notifications disabled")
	}

	// Wire dependencies: repository → service → handler
	authHandler := auth.NewHandler(gate)
	uploadHandler := upload.NewHandler(upload.NewBroker(objects, cfg.UploadURLTTL))
	galleryHandler := gallery.NewHandler(gallery.NewService(gallery.NewRepository(pool), objects, slog.Default()))
	contactHandler := contact.NewHandler(contact.NewService(contact.NewRepository(pool), notifier, slog.Default()))

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI at /swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Get("/gallery", galleryHandler.List)
		r.With(httprate.LimitByIP(cfg.ContactRateLimit, time.Minute)).Post("/contact", contactHandler.Submit)
		r.Post("/admin/session", authHandler.CreateSession)

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAdmin(gate))

			r.Post("/uploads", uploadHandler.CreateTicket)

			r.Post("/gallery", galleryHandler.Create)
			r.Put("/gallery/{id}", galleryHandler.Update)
			r.Delete("/gallery/{id}", galleryHandler.Delete)

			r.Get("/messages", contactHandler.List)
			r.Delete("/messages/{id}", contactHandler.Delete)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", slog.String("addr", srv.Addr), slog.String("env", cfg.AppEnv))
		slog.Info("swagger UI at http://localhost:" + cfg.Port + "/swagger/")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		fatal("forced shutdown", err)
	}

	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
