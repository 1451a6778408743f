package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/api"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/mail"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/media"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/metrics"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/seed"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/store"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/workers"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitMediaError      = 3
	ExitHTTPServerError = 4
	ExitMailError       = 5
	ExitSeedError       = 6
)

// =============================================================================
// Server
// =============================================================================

// Server represents the catalog application server.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      store.Store
	dispatcher *workers.ReplyDispatcher
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      fmt.Errorf("auth.jwt_secret: %w", err),
			ExitCode: ExitConfigError,
		}
	}

	sender, err := newSender(cfg.Mail, logger)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitMailError,
		}
	}

	storage, err := media.NewDiskStorage(cfg.Media.Dir, media.Config{
		MaxBytes:     cfg.Media.MaxUploadBytes(),
		AllowedTypes: cfg.Media.Allowed,
	})
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitMediaError,
		}
	}

	// Connect to database
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	created, err := seed.EnsureAdmin(context.Background(), s, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminName)
	if err != nil {
		s.Close()
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitConfigError,
		}
	}
	if created {
		logger.Info("bootstrap admin created", "email", cfg.Auth.AdminEmail)
	}

	m := metrics.New()

	dispatcher := workers.NewReplyDispatcher(s, sender, m, workers.ReplyDispatcherConfig{
		Interval:    cfg.Mail.Interval,
		BatchSize:   cfg.Mail.BatchSize,
		MaxAttempts: cfg.Mail.MaxAttempts,
		ReplyTo:     cfg.Mail.ReplyTo,
	}, logger)

	opts := []api.Option{
		api.WithMetrics(m),
		api.WithNotifier(dispatcher),
		api.WithVersion(Version),
	}
	if cfg.Web.StaticDir != "" {
		if !api.IsWebUIBuilt(cfg.Web.StaticDir) {
			logger.Warn("web.static_dir has no index.html", "dir", cfg.Web.StaticDir)
		}
		opts = append(opts, api.WithWebUI(api.WebUIHandler(cfg.Web.StaticDir)))
	}

	handler := api.NewHandler(s, storage, tokens, logger, opts...)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      s,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

func openStore(cfg *Config) (*store.SQLiteStore, error) {
	if dir := dataDirOf(cfg.Database.DSN); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitDatabaseError}
		}
	}
	s, err := store.NewSQLiteStore(cfg.Database.DSN)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitDatabaseError,
		}
	}
	return s, nil
}

// newSender returns an SMTP sender when mail is enabled, else a sender that
// only logs.
func newSender(cfg MailConfig, logger *slog.Logger) (mail.Sender, error) {
	if !cfg.Enabled {
		logger.Info("mail disabled, replies will be logged")
		return mail.NewLogSender(logger), nil
	}
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:      cfg.Host,
		Port:      cfg.Port,
		Username:  cfg.Username,
		Password:  cfg.Password,
		From:      cfg.From,
		TLSPolicy: cfg.TLSPolicy,
		SSL:       cfg.SSL,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("mail enabled", "host", cfg.Host, "port", cfg.Port, "from", cfg.From)
	return sender, nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	s.dispatcher.Start()

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.Shutdown(context.Background())
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	// Stop after HTTP so no reply is queued without a dispatcher
	s.dispatcher.Stop()

	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Seeding
// =============================================================================

// RunSeed imports a catalog fixture and exits.
func RunSeed(ctx context.Context, cfg *Config, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return &ServerError{Op: "RunSeed", Err: err, ExitCode: ExitSeedError}
	}
	defer f.Close()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := seed.Import(ctx, s, f, logger)
	if err != nil {
		return &ServerError{Op: "RunSeed", Err: err, ExitCode: ExitSeedError}
	}

	logger.Info("seed complete",
		"file", path,
		"categories", res.Categories,
		"skipped_categories", res.SkippedCategories,
		"sub_categories", res.SubCategories,
		"groups", res.Groups,
		"fields", res.Fields,
		"backgrounds", res.Backgrounds,
		"skipped_backgrounds", res.SkippedBackgrounds,
	)
	return nil
}

// dataDirOf returns the directory of a file DSN, or "" for in-memory and
// URI forms.
func dataDirOf(dsn string) string {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return ""
	}
	if dir := filepath.Dir(dsn); dir != "." {
		return dir
	}
	return ""
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
