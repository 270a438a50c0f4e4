// Package main provides the value-bet scan CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/config"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/database"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/logger"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/metrics"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/provider"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/repository"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile   string
	fixturesFile string
	statKeys     []string
	watch        bool
	watchWindow  time.Duration
	appLog       *logrus.Logger
	cfg          *config.Config
	db           *database.DB
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&fixturesFile, "fixtures", "f", "", "Path to a JSON file of fixtures to scan (defaults to the odds provider's event list)")
	rootCmd.Flags().StringSliceVarP(&statKeys, "stats", "s", []string{"corners"}, "Stat keys to scan")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "After the scan, stay connected to the quote stream and re-price pending predictions as bookmakers move")
	rootCmd.Flags().DurationVar(&watchWindow, "watch-window", 48*time.Hour, "Kickoff horizon for stream subscriptions in watch mode")
}

var rootCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan upcoming events for value bets",
	Long:  `Runs the detection pipeline once: models candidate lines from historical samples, prices them against live quotes, and persists every surviving value bet as a pending prediction.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

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

	return nil
}

func runScan(ctx context.Context) error {
	defer db.Close()

	httpLogger := log.New(os.Stderr, "provider-http: ", log.LstdFlags)
	httpClient := provider.NewRateLimitedHTTPClient(provider.DefaultHTTPClientConfig(), httpLogger)
	defer httpClient.Close()

	stats := provider.NewRESTStatsProvider(cfg.Providers.Stats.BaseURL, cfg.Providers.Stats.APIKey, httpClient)
	odds := provider.NewRESTOddsProvider(cfg.Providers.Odds.BaseURL, cfg.Providers.Odds.APIKey, httpClient)
	repo := repository.NewPostgresPredictionRepository(db)

	svc := service.NewScanService(stats, odds, repo, cfg, appLog)

	fixtures, err := loadFixtures(ctx, odds)
	if err != nil {
		return err
	}

	report, err := svc.Scan(ctx, fixtures, statKeys)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printReport(report)

	if watch {
		return runWatch(repo)
	}
	return nil
}

// runWatch subscribes to the odds provider's quote stream and re-prices
// pending predictions on every push until interrupted.
func runWatch(repo repository.PredictionRepository) error {
	if cfg.Providers.Odds.StreamURL == "" {
		return fmt.Errorf("watch mode requires providers.odds.stream_url to be configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := service.NewQuoteWatcher(repo, cfg, appLog)

	eventIDs, err := watcher.PendingEventIDs(ctx, watchWindow)
	if err != nil {
		return err
	}
	if len(eventIDs) == 0 {
		fmt.Println("No pending predictions to watch.")
		return nil
	}

	streamLogger := log.New(os.Stderr, "quote-stream: ", log.LstdFlags)
	stream := provider.NewQuoteStreamClient(cfg.Providers.Odds.StreamURL, cfg.Providers.Odds.APIKey, streamLogger)
	stream.AddHandler(func(update provider.QuoteUpdate) error {
		bets, err := watcher.HandleUpdate(ctx, update)
		if err != nil {
			return err
		}
		for _, bet := range bets {
			best := bet.Evaluation.BestOpportunity
			fmt.Printf("value: %s v %s %s %s %.1f @ %.2f (%s) EV %.2f%%\n",
				bet.Prediction.HomeTeam, bet.Prediction.AwayTeam,
				bet.Prediction.Market, bet.Prediction.Side, bet.Prediction.Line,
				best.Odds, best.Bookmaker, best.EVPercent)
		}
		return nil
	})

	if err := stream.Connect(ctx); err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Subscribe(eventIDs); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	fmt.Printf("Watching %d events for price moves (ctrl-c to stop)...\n", len(eventIDs))
	<-ctx.Done()
	return nil
}

// loadFixtures reads the fixture list from the JSON file when given,
// otherwise reuses the odds provider's own event list.
func loadFixtures(ctx context.Context, odds provider.OddsProvider) ([]models.EventRecord, error) {
	if fixturesFile == "" {
		return odds.FetchEvents(ctx)
	}

	data, err := os.ReadFile(fixturesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file: %w", err)
	}

	var fixtures []models.EventRecord
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures file: %w", err)
	}
	return fixtures, nil
}

func printReport(report *service.ScanReport) {
	fmt.Printf("\nScanned %d fixtures (%d unmatched, %d skipped) in %s\n\n",
		report.Scanned, report.Unmatched, report.Skipped, report.Duration.Round(time.Millisecond))

	if len(report.ValueBets) == 0 {
		fmt.Println("No value bets found.")
		return
	}

	fmt.Printf("%-28s %-10s %-6s %-6s %-8s %-10s %-8s %-8s\n",
		"Event", "Market", "Side", "Line", "Prob", "Bookmaker", "Odds", "EV%")
	for _, bet := range report.ValueBets {
		best := bet.Evaluation.BestOpportunity
		event := fmt.Sprintf("%s v %s", bet.Prediction.HomeTeam, bet.Prediction.AwayTeam)
		fmt.Printf("%-28s %-10s %-6s %-6.1f %-8.4f %-10s %-8.2f %-8.2f\n",
			event, bet.Prediction.Market, bet.Prediction.Side, bet.Prediction.Line,
			bet.Prediction.Probability, best.Bookmaker, best.Odds, best.EVPercent)
		fmt.Printf("    stake: %s units (%s), potential profit %s\n",
			best.StakeUnits.String(), best.RecommendedStake.String(), best.PotentialProfit.String())
	}
}
