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

	emailPkg "campusverse/internal/adapters/email"
	web "campusverse/internal/adapters/http"
	"campusverse/internal/adapters/http/metrics"
	"campusverse/internal/adapters/http/middleware"
	"campusverse/internal/adapters/scheduler"
	"campusverse/internal/adapters/storage"
	catalogStore "campusverse/internal/adapters/storage/catalog"
	contactStore "campusverse/internal/adapters/storage/contact"
	preferenceStore "campusverse/internal/adapters/storage/preference"
	"campusverse/internal/application/orchestrators"
	"campusverse/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.MigrateDB(db); err != nil {
		return err
	}

	m := metrics.New()
	timedDB := storage.NewTimedDB(db, m, cfg.SlowQuery())

	catalog, err := catalogStore.NewEmbeddedStore(time.Now())
	if err != nil {
		return err
	}
	prefs := preferenceStore.NewSQLiteStore(timedDB)
	contacts := contactStore.NewSQLiteStore(timedDB)

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_configured", "provider", "noop", "reason", "RESEND_KEY not set, contact messages are not delivered")
		}
	}

	var verifier orchestrators.CredentialVerifier = orchestrators.AcceptAllVerifier{}
	if cfg.DemoPasswordHash != "" {
		verifier = orchestrators.NewPassphraseVerifier(cfg.DemoPasswordHash)
	}

	sessions := middleware.NewSessionStore(middleware.SessionConfig{
		WelcomeDelay: cfg.WelcomeDelay,
		TTL:          cfg.SessionTTL,
		Metrics:      m,
	})
	apiLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, time.Second)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginAttemptsPerMinute, time.Minute)

	csrfKey, err := cfg.CSRFAuthKey()
	if err != nil {
		return err
	}
	srv, err := web.NewServer(web.Deps{
		Sessions:     sessions,
		Catalog:      catalog,
		Preferences:  prefs,
		Contact:      contacts,
		Sender:       sender,
		Verifier:     verifier,
		LoginLimiter: loginLimiter,
		APILimiter:   apiLimiter,
		Metrics:      m,
		DB:           timedDB,
		SupportEmail: cfg.SupportEmail,
		CSRFKey:      csrfKey,
		Secure:       cfg.IsProduction(),
		SlowRequest:  cfg.SlowRequest(),
	})
	if err != nil {
		return err
	}

	jobs := scheduler.New()
	housekeeping := orchestrators.HousekeepingDeps{
		Sessions: sessions,
		Limiters: []orchestrators.VisitorSweeper{apiLimiter, loginLimiter},
		Contact: orchestrators.ContactDeps{
			Store:        contacts,
			Sender:       sender,
			SupportEmail: cfg.SupportEmail,
			Metrics:      m,
			Now:          time.Now,
		},
	}
	if err := jobs.Add("housekeeping", cfg.HousekeepingSchedule, func(ctx context.Context) error {
		_, err := orchestrators.ExecuteHousekeeping(ctx, housekeeping)
		return err
	}); err != nil {
		return err
	}
	jobs.Start()

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_started", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"schema", storage.LatestSchemaVersion())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	jobs.Stop(shutdownCtx)
	return httpSrv.Shutdown(shutdownCtx)
}
