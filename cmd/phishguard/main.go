package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phishguard/internal/auth"
	"phishguard/internal/banner"
	"phishguard/internal/cache"
	"phishguard/internal/config"
	"phishguard/internal/logger"
	"phishguard/internal/mailer"
	"phishguard/internal/scanner"
	"phishguard/internal/server"
	"phishguard/internal/store"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const shutdownTimeout = 15 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Print version information and exit")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Printf("%s %s (commit %s, built %s)\n", cfg.App.Name, Version, Commit, BuildTime)
		return
	}

	fmt.Println(banner.Generate(cfg.App.Name))

	// Initialize logger
	log, err := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer st.Close()

	mail, err := mailer.New(cfg.Mail, log)
	if err != nil {
		return err
	}

	codes := cache.NewMemoryStore[string](cfg.Auth.OTPTTL)
	defer codes.Close()

	authService := auth.NewService(st, codes, mail, auth.Options{
		AppName:    cfg.App.Name,
		OTPTTL:     cfg.Auth.OTPTTL,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     log,
	})

	urlScanner, emailScanner := scanner.New(cfg.Scan, log)

	handler := server.NewHandler(cfg, server.Deps{
		URLScanner:   urlScanner,
		EmailScanner: emailScanner,
		Store:        st,
		Auth:         authService,
	})
	defer handler.Close()

	// Structured startup logs
	log.Info("application starting",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("build_time", BuildTime),
		slog.String("host", cfg.App.Host),
		slog.String("port", cfg.App.Port),
		slog.String("cache_mode", string(cfg.Cache.Mode)),
		slog.Duration("cache_ttl", cfg.Cache.TTL),
		slog.String("store_mode", string(cfg.Store.Mode)),
		slog.String("mail_mode", string(cfg.Mail.Mode)),
		slog.String("resolver", string(cfg.Scan.Resolver)),
		slog.String("whois_provider", string(cfg.Scan.WHOISProvider)),
		slog.Bool("rate_limit", cfg.RateLimit.Enabled),
		slog.String("log_level", cfg.Log.Level),
		slog.String("log_format", cfg.Log.Format))

	if cfg.Auth.ExposeOTP {
		log.Warn("OTP exposure is enabled, reset codes are returned in API responses")
	}

	srv := &http.Server{
		Addr:              cfg.App.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// A full URL scan waits on the slowest upstream.
		WriteTimeout: cfg.Scan.HTTPTimeout + cfg.Scan.WHOISTimeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", slog.String("address", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", slog.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
