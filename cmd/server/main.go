/*
main.go - Application entry point

PURPOSE:
  Wires the workforce scheduling server: configuration, SQLite store, rule
  engine, service, availability generator and HTTP API.

COMMANDS:
  workforce serve     Start the HTTP server (default when no command is given)
  workforce migrate   Apply pending database migrations and print the version

STARTUP SEQUENCE (serve):
  1. Load configuration (config.yml, .env, WFE_* environment)
  2. Open the SQLite store and migrate it
  3. Build the rule engine from the rule file or the built-in catalog
  4. Start the weekly availability generator, when enabled
  5. Serve HTTP until SIGINT/SIGTERM, then drain and close

EXAMPLES:
  # Run with file database
  WFE_DATABASE_PATH=./data/workforce.db ./workforce serve

  # Run in memory with demo scenarios
  WFE_DATABASE_PATH=":memory:" WFE_SERVER_ENABLE_SCENARIOS=true ./workforce serve

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp/workforce-engine/api"
	"github.com/warp/workforce-engine/config"
	"github.com/warp/workforce-engine/factory"
	"github.com/warp/workforce-engine/schedule"
	"github.com/warp/workforce-engine/service"
	"github.com/warp/workforce-engine/store/sqlite"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "workforce",
	Short: "Workforce scheduling engine",
	Long:  `Validates availabilities, leave requests and shifts against employment rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}
		log := cfg.NewLogger()

		// New migrates on open
		store, err := sqlite.New(cfg.Database.Path, sqlite.WithLogger(log))
		if err != nil {
			return err
		}
		defer store.Close()

		version, err := store.MigrationVersion()
		if err != nil {
			return err
		}
		log.WithField("version", version).Info("database is up to date")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yml")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	log := cfg.NewLogger()
	loc := cfg.Location()
	clock := schedule.LocalClock{Loc: loc}

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path, sqlite.WithLogger(log), sqlite.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	rules, err := factory.NewRuleFactory().LoadFile(cfg.Rules.File)
	if err != nil {
		return err
	}
	svc := service.New(store, rules.Engine(clock, log),
		service.WithClock(clock),
		service.WithLogger(log),
	)

	handlerOpts := []api.HandlerOption{
		api.WithLogger(log),
		api.WithLocation(loc),
		api.WithClock(clock),
		api.WithHealthCheck(store.Ping),
	}
	if cfg.Scheduler.Enabled {
		scheduler, err := api.NewAvailabilityScheduler(svc, api.SchedulerConfig{
			Spec:     cfg.Scheduler.Spec,
			Location: loc,
			Clock:    clock,
			Logger:   log,
		})
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
		handlerOpts = append(handlerOpts, api.WithScheduler(scheduler))
	}

	router := api.NewRouter(api.NewHandler(svc, handlerOpts...), api.RouterOptions{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		EnableScenarios: cfg.Server.EnableScenarios,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":     server.Addr,
			"database": cfg.Database.Path,
			"timezone": loc.String(),
		}).Info("server starting")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
