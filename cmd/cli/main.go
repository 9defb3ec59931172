package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/tour-desk/cmd/cli/commands"
	"github.com/jakechorley/tour-desk/internal/config"
	"github.com/jakechorley/tour-desk/pkg/core/tours"
	"github.com/jakechorley/tour-desk/pkg/memstore"
	"github.com/jakechorley/tour-desk/pkg/notify"
	"github.com/jakechorley/tour-desk/pkg/postgres"
	"github.com/jakechorley/tour-desk/pkg/utils/logging"
)

var (
	env        string
	configPath string
	inMemory   bool
	app        = &commands.AppContext{}
	closeDB    func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tours",
		Short: "Tour desk CLI - live tour list, client check-in and guide assignment",
		Long:  `A CLI for viewing scheduled tours, checking clients in and assigning guides, kept live by database change notifications.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeDB != nil {
				closeDB()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default tours_config.<env>.yaml)")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "Use an in-memory store seeded with demo data instead of Postgres")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.SeedCmd(app))
	rootCmd.AddCommand(commands.ListToursCmd(app))
	rootCmd.AddCommand(commands.WatchToursCmd(app))
	rootCmd.AddCommand(commands.CheckInCmd(app))
	rootCmd.AddCommand(commands.AssignGuideCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up config, logger, metrics, notifier and the tour store
func initApp() error {
	var err error
	app.Ctx = context.Background()
	app.In = os.Stdin
	app.Out = os.Stdout
	app.Notifier = notify.NewConsole(os.Stdout)

	switch {
	case configPath != "":
		app.Cfg, err = config.LoadFromPath(configPath)
	case inMemory:
		app.Cfg = config.Default()
	default:
		app.Cfg, err = config.LoadWithEnv(env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Logger, err = logging.InitLogger(env, app.Cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env), zap.Bool("memory", inMemory))

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector())
	app.Metrics = tours.NewMetrics(app.Registry)

	if inMemory {
		store := memstore.New()
		app.Store, app.Feed, app.Seeder = store, store, store
		if _, err := commands.SeedDemo(app.Ctx, store, app.Logger, time.Now()); err != nil {
			return fmt.Errorf("failed to seed in-memory store: %w", err)
		}
		app.Logger.Info("Using in-memory store")
		return nil
	}

	if err := app.Cfg.RequireDatabase(); err != nil {
		return err
	}

	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB = database.Close

	app.Store, app.Feed, app.Seeder, app.Migrator = database, database, database, database
	app.Logger.Info("Database initialized successfully")

	return nil
}
