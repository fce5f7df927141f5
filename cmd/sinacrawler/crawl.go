package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"sinacrawler/pkg/crawler"
	"sinacrawler/pkg/logger"
	"sinacrawler/pkg/metrics"
	"sinacrawler/pkg/retry"
	"sinacrawler/pkg/sina"
	"sinacrawler/pkg/ui"
)

var (
	// Crawl command flags
	continueMode  string
	outputDir     string
	storeBackend  string
	redisAddr     string
	checkpointDir string
	maxAttempts   int
	metricsAddr   string
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl <uid> [continue_mode]",
	Short: "Crawl the timeline of one account",
	Long: `Crawl the public timeline of the account with the given numeric uid.

By default the crawl starts at the newest page and stops once it reaches posts
older than the newest post seen by the previous run. With continue mode
(y, yes or true) the crawl resumes after the last page recorded in the
checkpoint and walks deeper into history until the timeline runs out.

Each run writes <platform>-<uid>-<timestamp>UTC.csv and .json into the
output directory and prints the updated checkpoint.`,
	Example: `  # Fetch what is new since the last run
  sinacrawler crawl 1669879400

  # Resume a backfill where it stopped
  sinacrawler crawl 1669879400 --continue-mode yes
  sinacrawler crawl 1669879400 y

  # Use a checkpoint file instead of Redis and expose metrics
  sinacrawler crawl 1669879400 --store file --metrics-addr :9090`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVar(&continueMode, "continue-mode", "n", "resume deeper into history (y/yes/true)")
	crawlCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the CSV and JSON exports (default: current directory)")
	crawlCmd.Flags().StringVar(&storeBackend, "store", "", "checkpoint store: redis, file or memory")
	crawlCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address for the checkpoint store")
	crawlCmd.Flags().StringVar(&checkpointDir, "checkpoint-dir", "", "directory for the file checkpoint store")
	crawlCmd.Flags().IntVar(&maxAttempts, "max-attempts", 3, "maximum attempts per request")
	crawlCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while crawling")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	uid := strings.TrimSpace(args[0])
	if !sina.IsValidUID(uid) {
		return fmt.Errorf("invalid uid %q: expected a numeric account id", uid)
	}

	mode := continueMode
	if len(args) == 2 {
		mode = args[1]
	}

	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if storeBackend != "" {
		flags["store"] = storeBackend
	}
	if redisAddr != "" {
		flags["redis-addr"] = redisAddr
	}
	if checkpointDir != "" {
		flags["checkpoint-dir"] = checkpointDir
	}
	if cmd.Flags().Changed("max-attempts") {
		flags["max-attempts"] = maxAttempts
	}
	if metricsAddr != "" {
		flags["metrics-addr"] = metricsAddr
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.GetLogger()
	log.WithField("version", version).Info("sinacrawler starting")

	repo, closeStore, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.WithError(err).Warn("metrics listener stopped")
			}
		}()
		log.WithField("addr", cfg.Metrics.Addr).Info("serving metrics")
	}

	client := sina.NewClient(cfg.Sina, retry.FromConfig(cfg.Retry, log), log)
	client.SetMetrics(m)

	progress := ui.NewProgressDisplay(uid, verbose)
	c := crawler.New(client, repo, crawler.Options{
		Platform:  cfg.Checkpoint.Platform,
		OutputDir: cfg.Output.Directory,
		Endpoints: sina.NewEndpoints(cfg.Sina.BaseURL),
		Metrics:   m,
		Logger:    log,
		OnPage:    progress.PageDone,
	})

	resume := crawler.ParseContinueMode(mode)
	ui.PrintBanner()
	ui.PrintInfo("Target account", uid)
	ui.PrintInfo("Continue mode", fmt.Sprintf("%t", resume))
	ui.PrintInfo("Checkpoint store", cfg.Checkpoint.Backend)

	result, err := c.Run(ctx, uid, resume)
	progress.Complete()
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	ui.PrintRunSummary(result)
	return nil
}
