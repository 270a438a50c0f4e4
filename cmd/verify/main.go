// Package main provides the prediction verification CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/config"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/database"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/health"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/logger"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/metrics"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/provider"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/ratelimit"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/repository"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/scheduler"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/service"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/verification"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	daemon     bool
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	limiter    *ratelimit.QuotaLimiter
	verifier   *service.VerificationService
	repo       repository.PredictionRepository
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	runCmd.Flags().BoolVarP(&daemon, "daemon", "d", false, "Keep running and verify on the configured cron schedule")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(oneCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(statusCmd)
}

var rootCmd = &cobra.Command{
	Use:   "verify",
	Short: "Settle pending predictions against final results",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Verify every pending prediction whose event has finished",
	RunE: func(cmd *cobra.Command, args []string) error {
		if daemon {
			return runDaemon(cmd.Context())
		}
		return runOnce(cmd.Context())
	},
}

var oneCmd = &cobra.Command{
	Use:   "one <prediction-id>",
	Short: "Verify a single prediction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid prediction id: %w", err)
		}

		pred, err := verifier.VerifyOne(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Prediction %s settled: %s (actual %.1f)\n",
			pred.ID, pred.Result.Outcome, *pred.Result.ActualValue)
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <prediction-id>",
	Short: "Revert a settled prediction back to pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid prediction id: %w", err)
		}

		pred, err := verifier.Undo(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Prediction %s reverted to pending\n", pred.ID)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show quota usage, pending count, and recent performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return displayStatus(cmd.Context())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	httpLogger := log.New(os.Stderr, "provider-http: ", log.LstdFlags)
	httpClient := provider.NewRateLimitedHTTPClient(provider.DefaultHTTPClientConfig(), httpLogger)
	results := provider.NewRESTResultProvider(cfg.Providers.Result.BaseURL, cfg.Providers.Result.APIKey, httpClient)

	limiter = ratelimit.NewQuotaLimiter(ratelimit.Config{
		MaxCallsPerDay:       cfg.RateLimit.MaxCallsPerDay,
		MaxCallsPerHour:      cfg.RateLimit.MaxCallsPerHour,
		MinDelayBetweenCalls: cfg.RateLimit.MinDelayBetweenCalls(),
	}, nil)
	cache := ratelimit.NewResultCache(cfg.RateLimit.CacheExpiry())

	controller := verification.NewController(results, limiter, cache, appLog)
	repo = repository.NewPostgresPredictionRepository(db)
	verifier = service.NewVerificationService(controller, repo, cfg, appLog)

	return nil
}

func runOnce(ctx context.Context) error {
	report, err := verifier.VerifyPending(ctx)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("Verified %d predictions (%d deferred, %d failed)\n",
		report.Verified, report.Deferred, report.Failed)
	for id, outcome := range report.Outcomes {
		fmt.Printf("  %s: %s (actual %.1f)\n", id, outcome.Outcome, outcome.ActualValue)
	}
	for id, reason := range report.Failures {
		fmt.Printf("  %s: failed: %s\n", id, reason)
	}
	return nil
}

func runDaemon(ctx context.Context) error {
	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        fmt.Sprintf("%d", cfg.Metrics.Port),
		MetricsPath: cfg.Metrics.Path,
		Logger:      appLog,
		DB:          db,
		Quota:       limiter,
	})
	if err := healthSrv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	sched := scheduler.NewScheduler(verifier, appLog)
	if err := sched.ScheduleVerification(cfg.Verification.CronSchedule); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	healthSrv.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"cron":     cfg.Verification.CronSchedule,
		"next_run": sched.NextRun().Format(time.RFC3339),
	}).Info("Verification daemon started")

	<-ctx.Done()

	healthSrv.SetReady(false)
	sched.Stop()
	appLog.Info("Verification daemon stopped")
	return nil
}

func displayStatus(ctx context.Context) error {
	decision, err := limiter.CanCall()
	if err != nil {
		return fmt.Errorf("failed to read quota state: %w", err)
	}

	pending, err := repo.CountPending(ctx)
	if err != nil {
		return err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	summary, err := verifier.Performance(ctx, start, end)
	if err != nil {
		return err
	}

	fmt.Println("Quota:")
	fmt.Printf("  Remaining today:     %d / %d\n", decision.RemainingDaily, cfg.RateLimit.MaxCallsPerDay)
	fmt.Printf("  Remaining this hour: %d / %d\n", decision.RemainingHourly, cfg.RateLimit.MaxCallsPerHour)
	if !decision.Allowed {
		fmt.Printf("  Next call allowed in %s (%s)\n", decision.WaitTime.Round(time.Second), decision.Reason)
	}

	fmt.Println("\nPredictions:")
	fmt.Printf("  Pending: %d\n", pending)

	fmt.Println("\nLast 30 days:")
	fmt.Printf("  Settled: %d (won %d, lost %d, push %d)\n", summary.Total, summary.Won, summary.Lost, summary.Pushed)
	fmt.Printf("  Win rate: %.1f%%\n", summary.WinRate*100)

	return nil
}
