package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/innercalm/internal/api"
	"github.com/terraincognita07/innercalm/internal/cache"
	"github.com/terraincognita07/innercalm/internal/classifier"
	"github.com/terraincognita07/innercalm/internal/cli"
	"github.com/terraincognita07/innercalm/internal/config"
	"github.com/terraincognita07/innercalm/internal/db"
	"github.com/terraincognita07/innercalm/internal/logging"
	"github.com/terraincognita07/innercalm/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "innercalm"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "InnerCalm mood tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newHistoryCommand(), newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireSecretKey(); err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func newHistoryCommand() *cobra.Command {
	var (
		ownerID   uint
		localPath string
		limit     int
	)
	command := &cobra.Command{
		Use:   "history",
		Short: "Print the reconciled mood history of an owner as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, cfg.LogFormat, serviceName)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return cli.RunHistoryCommand(cmd.Context(), cmd.OutOrStdout(), cli.HistoryOptions{
				DBPath:        cfg.DBPath,
				OwnerID:       ownerID,
				LocalPath:     localPath,
				Limit:         limit,
				RemoteTimeout: cfg.HistoryRemoteTimeout,
				Logger:        log,
			})
		},
	}
	command.Flags().UintVar(&ownerID, "owner", 0, "owner id (required)")
	command.Flags().StringVar(&localPath, "local", "", "JSON file with the cached local history")
	command.Flags().IntVar(&limit, "limit", services.DefaultHistoryLimit, "number of stored records to merge")
	_ = command.MarkFlagRequired("owner")
	return command
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return cli.RunMigrateCommand(cmd.OutOrStdout(), cfg.DBPath)
		},
	}
}

func runServer(cfg config.Config) error {
	time.Local = cfg.Location

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer func() { _ = log.Sync() }()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	locker, closeLocker, err := newOwnerLocker(cfg, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	app, err := newApp(cfg, database, locker, log)
	if err != nil {
		return err
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("innercalm listening",
		zap.String("addr", "0.0.0.0:"+cfg.Port),
		zap.String("db", cfg.DBPath),
		zap.String("tz", cfg.Location.String()),
		zap.Duration("cooldown_window", cfg.CooldownWindow),
		zap.Bool("classifier_enabled", cfg.ClassifierURL != ""),
		zap.Bool("distributed_lock", cfg.RedisAddr != ""),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(cfg config.Config, database *gorm.DB, locker services.OwnerLocker, log *zap.Logger) (*fiber.App, error) {
	repositories := db.NewRepositories(database)
	scorer := classifier.NewClient(cfg.ClassifierURL, cfg.ClassifierTimeout, log.Named("classifier"))

	handler, err := api.NewHandler(api.Dependencies{
		Submissions: services.NewSubmissionService(repositories.MoodRecords, locker, scorer, services.SubmissionOptions{
			CooldownWindow:    cfg.CooldownWindow,
			ClassifierTimeout: cfg.ClassifierTimeout,
			Logger:            log.Named("submissions"),
		}),
		History:   services.NewHistoryService(repositories.MoodRecords, cfg.HistoryRemoteTimeout, log.Named("history")),
		Stats:     services.NewAdminStatsService(repositories.MoodRecords),
		SecretKey: cfg.SecretKey,
		Logger:    log.Named("api"),
	})
	if err != nil {
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "InnerCalm",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	api.RegisterRoutes(app, handler)
	return app, nil
}

// newOwnerLocker uses Redis when REDIS_ADDR is set so several instances share
// the per-owner submission lock.
func newOwnerLocker(cfg config.Config, log *zap.Logger) (services.OwnerLocker, func(), error) {
	if cfg.RedisAddr == "" {
		return services.NewLocalOwnerLocker(), func() {}, nil
	}

	client := cache.NewRedisClient(cfg.RedisAddr)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, client); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis init failed: %w", err)
	}
	return cache.NewRedisOwnerLocker(client, cfg.LockTTL, log), func() { _ = client.Close() }, nil
}
