package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/klab/reports/internal/config"
	"github.com/klab/reports/internal/domain/catalog"
	"github.com/klab/reports/internal/domain/directory"
	"github.com/klab/reports/internal/domain/identity"
	"github.com/klab/reports/internal/domain/license"
	"github.com/klab/reports/internal/domain/report"
	"github.com/klab/reports/internal/domain/settings"
	"github.com/klab/reports/internal/platform/auth"
	"github.com/klab/reports/internal/platform/db"
	"github.com/klab/reports/internal/platform/middleware"
	"github.com/klab/reports/internal/platform/sandbox"
)

// tierAdapter defers the license service lookup so the report and license
// services can reference each other without a construction cycle.
type tierAdapter struct {
	svc *license.Service
}

func (a *tierAdapter) CurrentTier(ctx context.Context) (string, error) {
	return a.svc.CurrentTier(ctx)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "klab-server",
		Short: "Diagnostic lab report management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
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

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
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

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
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

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install defaults and the reference test catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

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

			seeder := sandbox.NewSeeder(pool, logger)
			if err := seeder.EnsureDefaults(ctx); err != nil {
				return err
			}
			if err := seeder.SeedCatalog(ctx); err != nil {
				return err
			}
			if withDemo, _ := cmd.Flags().GetBool("demo"); withDemo {
				if err := seeder.SeedDemo(ctx); err != nil {
					return err
				}
			}
			fmt.Println("Seed completed.")
			return nil
		},
	}
	cmd.Flags().Bool("demo", false, "Also create demo patients and reports")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Migrations
	migrator := db.NewMigrator(pool, "./migrations")
	applied, err := migrator.Up(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}
	if applied > 0 {
		logger.Info().Int("count", applied).Msg("migrations applied")
	}

	// First-run provisioning
	seeder := sandbox.NewSeeder(pool, logger)
	if err := seeder.EnsureDefaults(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure defaults")
	}
	if err := seeder.AutoSeed(ctx); err != nil {
		logger.Fatal().Err(err).Msg("auto-seed failed")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Session auth. Development runs open so the desktop client can talk to
	// a local server without a token.
	signer := auth.NewSigner(cfg.JWTSecret)
	if !cfg.IsDev() {
		e.Use(auth.RequireToken(signer, auth.DefaultSkipper))
	}

	api := e.Group("/api")

	// Health
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now(),
		})
	})
	api.GET("/health/db", db.HealthHandler(pool))

	// Repositories
	catalogRepo := catalog.NewRepoPG(pool)
	directoryRepo := directory.NewRepoPG(pool)
	reportRepo := report.NewRepoPG(pool)
	licenseRepo := license.NewRepoPG(pool)
	userRepo := identity.NewRepoPG(pool)
	settingsRepo := settings.NewRepoPG(pool)

	// Services. The report service asks the license service for the tier,
	// and the license service asks the report service for monthly usage.
	tier := &tierAdapter{}
	catalogSvc := catalog.NewService(catalogRepo)
	directorySvc := directory.NewService(directoryRepo)
	reportSvc := report.NewService(reportRepo, catalogRepo, directoryRepo, tier, cfg.FreeTierLimit)
	licenseSvc := license.NewService(licenseRepo, reportSvc, cfg.LicenseKeys, cfg.FreeTierLimit)
	tier.svc = licenseSvc
	userSvc := identity.NewService(userRepo, signer)

	// Handlers
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)
	directory.NewHandler(directorySvc).RegisterRoutes(api)
	report.NewHandler(reportSvc).RegisterRoutes(api)
	license.NewHandler(licenseSvc).RegisterRoutes(api)
	identity.NewHandler(userSvc).RegisterRoutes(api)
	settings.NewHandler(settingsRepo).RegisterRoutes(api)
	sandbox.NewResetHandler(pool, seeder).RegisterRoutes(api)

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
