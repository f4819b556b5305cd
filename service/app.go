package service

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivansvit/upgraded-blog/app/auth"
	"github.com/ivansvit/upgraded-blog/app/database"
	"github.com/ivansvit/upgraded-blog/app/mailer"
	"github.com/ivansvit/upgraded-blog/app/routes"
	"github.com/ivansvit/upgraded-blog/app/sessions"
	"github.com/ivansvit/upgraded-blog/config"
	"github.com/ivansvit/upgraded-blog/pkg/logger"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// server bundles the HTTP server with the stores it must close on exit.
type server struct {
	http     *http.Server
	db       *gorm.DB
	sessions *sessions.Store
	log      zerolog.Logger
}

// RunAppServer starts the blog service and blocks until SIGINT or SIGTERM.
func RunAppServer(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.String("port", "", "port to listen on (overrides PORT)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.Env)
	srv, err := newServer(cfg, log)
	if err != nil {
		return err
	}
	defer srv.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.run(ctx)
}

// newServer opens the database and session store and builds the router.
func newServer(cfg *config.Config, log zerolog.Logger) (*server, error) {
	adminIDs, err := cfg.AdminUserIDs()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := sessions.Open(sessions.Options{
		Path:   cfg.SessionPath,
		Secret: cfg.SecretKey,
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	}, log)
	if err != nil {
		database.Close(db)
		return nil, err
	}

	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailFrom,
		Password: cfg.EmailPassword,
		Timeout:  cfg.MailTimeout,
	})
	if err != nil {
		store.Close()
		database.Close(db)
		return nil, err
	}

	router, err := routes.SetupRoutes(routes.Dependencies{
		DB:          db,
		Sessions:    store,
		Mailer:      sender,
		Policy:      auth.NewAdminIDs(adminIDs...),
		Log:         log,
		MailFrom:    cfg.MailFrom,
		MailTo:      cfg.MailTo,
		MailTimeout: cfg.MailTimeout,
	})
	if err != nil {
		store.Close()
		database.Close(db)
		return nil, err
	}

	return &server{
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		db:       db,
		sessions: store,
		log:      log,
	}, nil
}

// run serves until ctx is cancelled, then drains in-flight requests.
func (s *server) run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("Starting blog service")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down blog service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}

func (s *server) close() {
	if err := s.sessions.Close(); err != nil {
		s.log.Error().Err(err).Msg("Failed to close session store")
	}
	if err := database.Close(s.db); err != nil {
		s.log.Error().Err(err).Msg("Failed to close database")
	}
}
