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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medinsight/medinsight/internal/config"
	"github.com/medinsight/medinsight/internal/domain/appointments"
	"github.com/medinsight/medinsight/internal/domain/audit"
	authdomain "github.com/medinsight/medinsight/internal/domain/auth"
	"github.com/medinsight/medinsight/internal/domain/dashboard"
	"github.com/medinsight/medinsight/internal/domain/dossiers"
	"github.com/medinsight/medinsight/internal/domain/medecins"
	"github.com/medinsight/medinsight/internal/domain/notifications"
	"github.com/medinsight/medinsight/internal/domain/patients"
	"github.com/medinsight/medinsight/internal/domain/predictions"
	"github.com/medinsight/medinsight/internal/domain/registration"
	"github.com/medinsight/medinsight/internal/domain/users"
	"github.com/medinsight/medinsight/internal/platform/auth"
	"github.com/medinsight/medinsight/internal/platform/gateway"
	"github.com/medinsight/medinsight/internal/platform/keycloak"
	"github.com/medinsight/medinsight/internal/platform/middleware"
	"github.com/medinsight/medinsight/internal/platform/session"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medinsight-server",
		Short: "MedInsight hospital portal backend",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(realmCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func realmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realm",
		Short: "Manage the identity realm",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Provision the realm, client, and role catalog in Keycloak",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			kc := keycloakClient(cfg)
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			res, err := kc.Bootstrap(ctx, logger)
			if err != nil {
				return err
			}
			fmt.Printf("Realm %q ready (created: %t, client created: %t, roles created: %d)\n",
				cfg.KeycloakRealm, res.RealmCreated, res.ClientCreated, len(res.RolesCreated))

			seedUser, _ := cmd.Flags().GetString("seed-admin")
			seedEmail, _ := cmd.Flags().GetString("seed-admin-email")
			seedPassword, _ := cmd.Flags().GetString("seed-admin-password")
			if seedUser != "" {
				if seedPassword == "" {
					return fmt.Errorf("--seed-admin-password is required with --seed-admin")
				}
				if err := kc.SeedUser(ctx, seedUser, seedEmail, seedPassword, keycloak.RoleAdmin); err != nil {
					return err
				}
				fmt.Printf("Administrator %q provisioned.\n", seedUser)
			}
			return nil
		},
	}
	initCmd.Flags().String("seed-admin", "", "Username of the first administrator to create")
	initCmd.Flags().String("seed-admin-email", "", "Email of the seeded administrator")
	initCmd.Flags().String("seed-admin-password", "", "Password of the seeded administrator")
	cmd.AddCommand(initCmd)

	return cmd
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func keycloakClient(cfg *config.Config) *keycloak.Client {
	return keycloak.NewClient(keycloak.Config{
		BaseURL:       cfg.KeycloakURL,
		Realm:         cfg.KeycloakRealm,
		ClientID:      cfg.KeycloakClientID,
		AdminUser:     cfg.KeycloakAdminUser,
		AdminPassword: cfg.KeycloakAdminPassword,
		Timeout:       cfg.HTTPTimeout(),
	})
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// Session store. Postgres when DATABASE_URL is set, memory otherwise.
	var store session.Store
	if cfg.DatabaseURL != "" {
		poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid DATABASE_URL")
		}
		poolCfg.MaxConns = cfg.DBMaxConns
		poolCfg.MinConns = cfg.DBMinConns
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if _, err := pool.Exec(ctx, session.MigrationSessions); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare sessions table")
		}
		store = session.NewPGStoreFromPool(pool, cfg.SessionTTL())
		logger.Info().Msg("sessions stored in postgres")
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL())
		logger.Info().Msg("sessions stored in memory")
	}

	kc := keycloakClient(cfg)

	// An upstream 401 means the token died server side. Drop the session so
	// the next request is forced back through /connexion.
	onUnauthorized := func(token string) {
		clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Clear(clearCtx, token); err != nil {
			logger.Warn().Err(err).Msg("failed to clear rejected session")
		}
	}

	gw := gateway.NewClient(cfg.GatewayURL,
		gateway.WithTimeout(cfg.HTTPTimeout()),
		gateway.WithUnauthorizedHook(onUnauthorized),
	)
	patientGW := gateway.NewClient(cfg.PatientServiceURL,
		gateway.WithTimeout(cfg.HTTPTimeout()),
	)

	verifier := auth.NewVerifier(auth.VerifierConfig{
		Issuer:  kc.Issuer(),
		JWKSURL: kc.JWKSURL(),
	})

	// Services
	registrationSvc := registration.NewService(kc, registration.NewGatewayProfiles(patientGW), logger)
	authSvc := authdomain.NewService(kc, store, logger)
	usersSvc := users.NewService(kc, logger)
	patientsSvc := patients.NewService(gw)
	medecinsSvc := medecins.NewService(gw)
	appointmentsSvc := appointments.NewService(gw)
	dossiersSvc := dossiers.NewService(gw)
	notificationsSvc := notifications.NewService(gw)
	dashboardSvc := dashboard.NewService(gw, logger)
	auditSvc := audit.NewService(gw)
	predictionsSvc := predictions.NewService(gw)

	// Persist access-trail entries through the security service in addition
	// to the structured log.
	auditSink := middleware.AuditRecorderFunc(func(entry middleware.AuditEntry) error {
		recCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout())
		defer cancel()
		return auditSvc.Record(recCtx, "", &audit.Log{
			Action:     entry.Action,
			EntityType: entry.Resource,
			EntityID:   entry.PatientID,
			UserID:     entry.UserID,
			Username:   entry.Username,
			Timestamp:  entry.Timestamp.Format(time.RFC3339),
			IPAddress:  entry.IPAddress,
			Details:    entry.Method + " " + entry.Path,
		})
	})

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
	}))
	e.Use(auth.Middleware(auth.MiddlewareConfig{
		Store:    store,
		Verifier: verifier,
		Logger:   logger,
	}))
	e.Use(middleware.Audit(logger, auditSink))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Public auth endpoints: registration saga, login, logout.
	authGroup := e.Group("/api/auth")
	authGroup.Use(middleware.RateLimit(rateLimitCfg))
	registration.NewHandler(registrationSvc).Register(authGroup)
	authdomain.NewHandler(authSvc).Register(authGroup)

	// Session-guarded portal endpoints.
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	users.NewHandler(usersSvc).RegisterRoutes(apiV1)
	patients.NewHandler(patientsSvc).RegisterRoutes(apiV1)
	medecins.NewHandler(medecinsSvc).RegisterRoutes(apiV1)
	appointments.NewHandler(appointmentsSvc).RegisterRoutes(apiV1)
	dossiers.NewHandler(dossiersSvc).RegisterRoutes(apiV1)
	notifications.NewHandler(notificationsSvc).RegisterRoutes(apiV1)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(apiV1)
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)
	predictions.NewHandler(predictionsSvc).RegisterRoutes(apiV1)

	// Background poller keeps the notification badge warm.
	pollCtx, pollCancel := context.WithCancel(ctx)
	defer pollCancel()
	poller := notifications.NewPoller(notificationsSvc, cfg.NotifyPollInterval(), logger)
	go poller.Run(pollCtx)

	// Serve until interrupted, then drain.
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	pollCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
