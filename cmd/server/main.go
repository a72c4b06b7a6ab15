package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lanxiangspa/booking-server/internal/config"
	"github.com/lanxiangspa/booking-server/pkg/api"
	"github.com/lanxiangspa/booking-server/pkg/clients/sheetsclient"
	"github.com/lanxiangspa/booking-server/pkg/core/services"
	"github.com/lanxiangspa/booking-server/pkg/db"
	"github.com/lanxiangspa/booking-server/pkg/legacy"
	"github.com/lanxiangspa/booking-server/pkg/sheetstore"
	"github.com/lanxiangspa/booking-server/pkg/utils/logging"
)

var (
	env        string
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "booking-server",
		Short: "Lan Xiang Spa booking backend",
		Long:  `HTTP backend for the spa booking form: staff availability queries and booking commits against the shared spreadsheet.`,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "prod", "Environment name, prefixes the log file")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to booking_config.yaml (default: search cwd and home)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env, then the YAML config
func loadConfig() (*config.Config, error) {
	// A missing .env is fine, secrets may come from the real environment
	_ = godotenv.Load()

	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func checkConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Load and validate the configuration, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("✓ Config OK: spreadsheet %s, timezone %s, port %d\n",
				cfg.SpreadsheetID, cfg.Timezone, cfg.ListenPort)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the booking HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.InitLogger(env)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			return serve(cfg, logger)
		},
	}
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logger.Info("Starting booking server",
		zap.String("environment", env),
		zap.String("timezone", cfg.Timezone),
		zap.Int("port", cfg.ListenPort))

	sheetsClient, err := sheetsclient.NewClient(ctx, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	store := db.NewSheetsStore(sheetstore.New(sheetsClient, cfg.SpreadsheetID), db.Tabs{
		Staff:       cfg.StaffTab,
		OffDays:     cfg.OffDaysTab,
		WebBookings: cfg.WebBookingsTab,
		Walkins:     cfg.WalkinsTab,
		Services:    cfg.ServicesTab,
	})

	recurring := make([]services.RecurringOffDay, 0, len(cfg.RecurringOffDays))
	for _, off := range cfg.RecurringOffDays {
		rule, err := services.CompileRecurringOffDay(off.Staff, off.RRule, loc)
		if err != nil {
			return err
		}
		recurring = append(recurring, rule)
	}

	var forwarder services.LegacyForwarder
	if cfg.LegacyCRMConn != "" {
		legacyDB, err := legacy.NewDB(ctx, cfg.LegacyCRMConn)
		if err != nil {
			return fmt.Errorf("failed to connect to legacy CRM: %w", err)
		}
		defer legacyDB.Close()
		forwarder = legacyDB
		logger.Info("Legacy CRM forwarding enabled")
	}

	engine := services.NewEngine(store, services.NewRealClock(), loc, recurring, forwarder, logger)

	router := api.NewRouter(&api.Config{
		Logger:         logger,
		Service:        engine,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ListenPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
