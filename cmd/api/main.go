package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/config"
	"github.com/georgemunganga/exhibition-crm/internal/modules/auth"
	"github.com/georgemunganga/exhibition-crm/internal/modules/catalog"
	"github.com/georgemunganga/exhibition-crm/internal/modules/contact"
	"github.com/georgemunganga/exhibition-crm/internal/modules/photo"
	"github.com/georgemunganga/exhibition-crm/internal/modules/report"
	"github.com/georgemunganga/exhibition-crm/internal/modules/search"
	"github.com/georgemunganga/exhibition-crm/internal/modules/user"
	"github.com/georgemunganga/exhibition-crm/internal/platform/lock"
	"github.com/georgemunganga/exhibition-crm/internal/platform/logger"
	"github.com/georgemunganga/exhibition-crm/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, "exhibition-crm")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.Store.DSN()
	if err != nil {
		log.Fatal("invalid record store settings", zap.Error(err))
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to open record store", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("record store unreachable", zap.Error(err))
	}
	log.Info("connected to record store")

	// ── Shared infrastructure ───────────────────────────────
	var locker lock.Locker = lock.NewLocalLocker()
	var drafts contact.DraftStore = contact.NewMemoryDraftStore(cfg.Drafts.TTL)
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis unreachable", zap.Error(err))
		}
		locker = lock.NewRedisLocker(rdb)
		drafts = contact.NewRedisDraftStore(rdb, cfg.Drafts.TTL)
		log.Info("using redis for drafts and submit locks")
	} else {
		log.Warn("REDIS_URL not set, drafts and submit locks are process-local")
	}

	var storage photo.Storage = photo.Unavailable{}
	if cfg.Storage.StorageEnabled() {
		s3Storage, err := photo.NewS3Storage(ctx, photo.S3Options{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
		}, log)
		if err != nil {
			log.Fatal("failed to configure photo storage", zap.Error(err))
		}
		storage = s3Storage
	} else {
		log.Warn("photo storage not configured, captured photos will be dropped on submit")
	}
	uploader := photo.NewPipeline(storage, cfg.Upload.Concurrency, log)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if len(cfg.Server.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition", "X-Export-Count"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	router.Handle("/metrics", metrics.Handler())

	// ── Accounts ────────────────────────────────────────────
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userRepo := user.NewPostgresRepository(db)
	userHandler := user.NewHandler(user.NewService(userRepo, cfg.Auth.SignupDomain))
	userHandler.RegisterRoutes(router)
	auth.NewHandler(auth.NewService(userRepo, tokens)).RegisterRoutes(router)

	// ── Leads ───────────────────────────────────────────────
	contactRepo := contact.NewPostgresRepository(db)
	contactService := contact.NewService(contactRepo, uploader, locker, log)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokens))

		userHandler.RegisterProtectedRoutes(r)
		catalog.NewHandler(catalog.NewService()).RegisterRoutes(r)
		search.NewHandler(contactService).RegisterRoutes(r)
		contact.NewHandler(contactService, drafts, locker, log).RegisterRoutes(r)
		report.NewHandler(contactService, cfg.Share.BackofficeEmail, log).RegisterRoutes(r)
	})

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("exhibition CRM API starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
