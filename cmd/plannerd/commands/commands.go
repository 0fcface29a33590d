package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/simgebenzerr/planner-core/internal/infrastructure/config"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/database"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the planner API server",
		Long:  "Start the planner API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands.
// Each subcommand takes a --store flag selecting the local task store
// or the remote document store.
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage migrations for the local and remote stores (up, down, version)",
	}

	var store string

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(store, "up")
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(store, "down")
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion(store)
		},
	}

	migrateCmd.PersistentFlags().StringVar(&store, "store", "local", "Target store (local, remote)")
	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)

	return migrateCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print planner version",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			fmt.Printf("%s %s\n", cfg.App.Name, cfg.App.Version)
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	// An unopenable local store is fatal; nothing works without it.
	local, err := database.OpenLocal(cfg.LocalStore)
	if err != nil {
		appLogger.Fatalw("Failed to open local store", "error", err)
	}
	defer local.Close()

	remote, err := database.OpenRemote(cfg.DocumentStore)
	if err != nil {
		appLogger.Fatalw("Failed to connect to document store", "error", err)
	}
	defer remote.Close()

	srv, err := server.New(cfg, local, remote, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting planner API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
	)

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			appLogger.Infow("Server stopped", "reason", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Server shutdown failed", "error", err)
	}
}

func newMigrator(cfg *config.Config, store string) (*migrate.Migrate, func(), error) {
	switch store {
	case "local":
		local, err := database.OpenLocal(cfg.LocalStore)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local store: %w", err)
		}

		driver, err := sqlite3.WithInstance(local.DB.DB, &sqlite3.Config{})
		if err != nil {
			local.Close()
			return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
		}

		m, err := migrate.NewWithDatabaseInstance("file://migrations/local", "sqlite3", driver)
		if err != nil {
			local.Close()
			return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
		}

		return m, func() { local.Close() }, nil

	case "remote":
		remote, err := database.OpenRemote(cfg.DocumentStore)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to document store: %w", err)
		}

		driver, err := postgres.WithInstance(remote.DB.DB, &postgres.Config{})
		if err != nil {
			remote.Close()
			return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
		}

		m, err := migrate.NewWithDatabaseInstance("file://migrations/remote", "postgres", driver)
		if err != nil {
			remote.Close()
			return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
		}

		return m, func() { remote.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q (want local or remote)", store)
	}
}

func runMigration(store, direction string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, cleanup, err := newMigrator(cfg, store)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer cleanup()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", err)
	}

	if err == migrate.ErrNoChange {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully (%s store)\n", direction, store)
	}
}

func showMigrationVersion(store string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, cleanup, err := newMigrator(cfg, store)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer cleanup()

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version (%s store): %d\n", store, version)
	fmt.Printf("Dirty: %t\n", dirty)
}
