package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lifeline/lifeline/internal/config"
	"github.com/lifeline/lifeline/internal/domain/bloodrequest"
	"github.com/lifeline/lifeline/internal/domain/chat"
	"github.com/lifeline/lifeline/internal/domain/compat"
	"github.com/lifeline/lifeline/internal/domain/donation"
	"github.com/lifeline/lifeline/internal/domain/donor"
	"github.com/lifeline/lifeline/internal/domain/drive"
	"github.com/lifeline/lifeline/internal/platform/db"
	"github.com/lifeline/lifeline/internal/platform/gemini"
	"github.com/lifeline/lifeline/internal/platform/ledger"
	"github.com/lifeline/lifeline/internal/platform/middleware"
	"github.com/lifeline/lifeline/internal/platform/notification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lifeline-server",
		Short: "Lifeline blood donation API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Lifeline API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	zlog.Logger = logger

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutSec) * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Notification engine. Senders log until a real gateway is configured.
	notifyMgr := notification.NewManager(
		&logEmailSender{logger: logger},
		&logSMSSender{logger: logger},
		notification.NewTemplateEngine(),
	)
	notification.NewHandler(notifyMgr).RegisterRoutes(apiV1)

	// Ledger anchor (optional)
	var anchor donation.Ledger
	if cfg.LedgerEnabled {
		account, err := ledgerAccount(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to set up ledger account")
		}
		anchor = ledger.NewNoteAnchor(ledger.NewClient(cfg.AlgodURL, cfg.AlgodToken), account)
		logger.Info().Str("address", account.Address).Msg("ledger anchoring enabled")
	}

	// Domain services
	compat.NewHandler().RegisterRoutes(apiV1)

	donorRepo := donor.NewRepoPG(pool)
	donorSvc := donor.NewService(donorRepo)
	donor.NewHandler(donorSvc).RegisterRoutes(apiV1)

	requestSvc := bloodrequest.NewService(
		bloodrequest.NewRepoPG(pool),
		newEmergencyNotifier(notifyMgr, cfg.AlertRecipient),
	)
	bloodrequest.NewHandler(requestSvc).RegisterRoutes(apiV1)

	driveSvc := drive.NewService(drive.NewRepoPG(pool))
	drive.NewHandler(driveSvc).RegisterRoutes(apiV1)

	donationSvc := donation.NewService(donation.NewRepoPG(pool), donorRepo, anchor)
	donation.NewHandler(donationSvc).RegisterRoutes(apiV1)

	// Chat dispatcher. The model strategy is fixed at startup.
	var generator chat.Generator
	switch cfg.AssistantMode {
	case config.AssistantModeGemini:
		generator = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		logger.Info().Str("model", cfg.GeminiModel).Msg("assistant mode: gemini")
	default:
		generator = chat.NewOffline()
		logger.Info().Msg("assistant mode: offline")
	}
	chatSvc := chat.NewService(generator, donorSvc, driveSvc, requestSvc, cfg.ChatFunctionResults, cfg.EmergencyPhone)
	chat.NewHandler(chatSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// ledgerAccount restores the anchoring account from LEDGER_SEED, or generates
// a fresh one when no seed is configured.
func ledgerAccount(cfg *config.Config) (*ledger.Account, error) {
	if cfg.LedgerSeed == "" {
		return ledger.GenerateAccount()
	}
	seed, err := hex.DecodeString(cfg.LedgerSeed)
	if err != nil {
		return nil, fmt.Errorf("decode LEDGER_SEED: %w", err)
	}
	return ledger.RestoreAccount(seed)
}

// emergencyNotifier adapts the notification engine to the registrar's
// Notifier interface, avoiding an import from bloodrequest to the engine.
type emergencyNotifier struct {
	mgr       *notification.Manager
	recipient string
}

func newEmergencyNotifier(mgr *notification.Manager, recipient string) *emergencyNotifier {
	return &emergencyNotifier{mgr: mgr, recipient: recipient}
}

func (n *emergencyNotifier) EmergencyRequested(ctx context.Context, req *bloodrequest.Request) error {
	if n.recipient == "" {
		return nil
	}
	_, err := n.mgr.SendFromTemplate(ctx, "emergency-blood-alert", map[string]string{
		"units":      fmt.Sprintf("%d", req.UnitsNeeded),
		"blood_type": string(req.BloodType),
		"hospital":   req.HospitalName,
		"urgency":    string(req.Urgency),
		"request_id": req.ID,
	}, n.recipient)
	return err
}

// logEmailSender and logSMSSender are stand-ins for real delivery gateways.
type logEmailSender struct {
	logger zerolog.Logger
}

func (s *logEmailSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.logger.Info().Str("to", to).Str("subject", subject).Msg("email notification")
	return nil
}

type logSMSSender struct {
	logger zerolog.Logger
}

func (s *logSMSSender) SendSMS(_ context.Context, to, body string) error {
	s.logger.Info().Str("to", to).Str("body", body).Msg("sms notification")
	return nil
}
