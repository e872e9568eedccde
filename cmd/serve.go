package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/appestoicismo/newsllater/app/handlers"
	"github.com/appestoicismo/newsllater/app/router"
	"github.com/appestoicismo/newsllater/app/services"
	businessflow "github.com/appestoicismo/newsllater/business_flow"
	"github.com/appestoicismo/newsllater/config"
	"github.com/appestoicismo/newsllater/logger"
	"github.com/appestoicismo/newsllater/repository"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router router.Router
	config *config.ProductionConfig
	db     *gorm.DB
}

// NewServeCmd creates the serve command for starting the HTTP API
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the newsletter API server.

The server provides:
  • Newsletter generation from uploads and pasted text
  • Newsletter history, editing and export (TXT, HTML, XLSX)
  • Saved audiences and application settings
  • Health check and Prometheus metrics endpoints

Examples:
  # Start with settings from the environment and .env
  newsllater serve

  # Override the listen address
  newsllater serve --host 127.0.0.1 --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), host, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from SERVER_PORT: 3001)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from SERVER_HOST: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, host string, port int) error {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	logger.Info("starting newsletter generator",
		"environment", cfg.Deployment.Environment,
		"version", cfg.Deployment.Version,
	)

	app, err := initializeApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(app.db)

	app.router.SetupRoutes()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		errCh <- app.router.Start(address)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", err)
	}

	logger.Info("server stopped")
	return nil
}

func initializeApplication(ctx context.Context, cfg *config.ProductionConfig) (*Application, error) {
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			closeDatabase(db)
			return nil, err
		}
	}

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		closeDatabase(db)
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	// Initialize repositories
	audienceRepo := repository.NewAudienceRepository(db)
	newsletterRepo := repository.NewNewsletterRepository(db)
	sourceFileRepo := repository.NewSourceFileRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Initialize services
	claudeClient := services.NewClaudeClient(cfg.Claude)

	// Initialize business flows
	generationFlow := businessflow.NewNewsletterGenerationFlow(
		audienceRepo,
		newsletterRepo,
		sourceFileRepo,
		settingRepo,
		repository.NewTransactor(db),
		claudeClient,
	)
	newsletterFlow := businessflow.NewNewsletterFlow(newsletterRepo, sourceFileRepo)
	audienceFlow := businessflow.NewAudienceFlow(audienceRepo)
	settingsFlow := businessflow.NewSettingsFlow(settingRepo)

	// Initialize handlers
	newsletterHandler := handlers.NewNewsletterHandler(generationFlow, newsletterFlow, cfg.Upload, cfg.Claude.Timeout)
	audienceHandler := handlers.NewAudienceHandler(audienceFlow)
	settingsHandler := handlers.NewSettingsHandler(settingsFlow)

	appRouter := router.NewFiberRouter(cfg, newsletterHandler, audienceHandler, settingsHandler)

	return &Application{
		router: appRouter,
		config: cfg,
		db:     db,
	}, nil
}
