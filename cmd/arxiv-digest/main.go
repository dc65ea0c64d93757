package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/ryosukesatoh/arxiv-digest/internal/analyzer"
	"github.com/ryosukesatoh/arxiv-digest/internal/category"
	"github.com/ryosukesatoh/arxiv-digest/internal/config"
	"github.com/ryosukesatoh/arxiv-digest/internal/fetcher"
	"github.com/ryosukesatoh/arxiv-digest/internal/llm"
	"github.com/ryosukesatoh/arxiv-digest/internal/notion"
	"github.com/ryosukesatoh/arxiv-digest/internal/runner"
)

var (
	configPath string
	daysBack   int
	maxPapers  int
	dryRun     bool
)

func main() {
	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "arxiv-digest",
		Short: "Fetch recent arXiv papers, analyze them with Claude, and publish a daily digest to Notion",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (optional)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			r := buildRunner(cfg)
			report := r.Run(cmd.Context())
			logReport(report)
			if !report.Success() {
				os.Exit(1)
			}
			return nil
		},
	}
	runCmd.Flags().IntVar(&daysBack, "days", 0, "override days_back from config")
	runCmd.Flags().IntVar(&maxPapers, "max", 0, "override max_papers from config")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the pipeline without writing to Notion")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			r := buildRunner(cfg)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if cfg.RunOnStart {
				log.Println("Running initial digest...")
				logReport(r.Run(ctx))
			}

			c := cron.New()
			if _, err := c.AddFunc(cfg.Schedule, func() {
				log.Println("Cron triggered, running digest...")
				logReport(r.Run(ctx))
			}); err != nil {
				log.Fatalf("Failed to set up cron schedule %q: %v", cfg.Schedule, err)
			}
			c.Start()
			log.Printf("Scheduled digest with cron expression: %s", cfg.Schedule)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Printf("Received signal %v, shutting down...", sig)

			cancel()
			<-c.Stop().Done()
			log.Println("Shutdown complete")
			return nil
		},
	}

	root.AddCommand(runCmd, scheduleCmd)

	if err := root.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("days") {
		cfg.DaysBack = daysBack
	}
	if cmd.Flags().Changed("max") {
		cfg.MaxPapers = maxPapers
	}

	if cfg.Notion.DatabaseID == "" {
		log.Println("WARNING: notion.database_id is not set, papers will not be added to a database")
	}
	if cfg.Notion.ParentPageID == "" {
		log.Println("WARNING: notion.parent_page_id is not set, daily summaries will not be created")
	}

	return cfg, nil
}

func buildRunner(cfg *config.Config) *runner.Runner {
	categories := category.Default()

	f := fetcher.NewArxivFetcher(cfg.Fetcher.Categories, cfg.Fetcher.MaxResultsPerCategory)
	client := llm.NewAnthropicClient(cfg.Analyzer.APIKey, cfg.Analyzer.Model, cfg.Analyzer.MaxTokens)
	a := analyzer.New(client, categories)
	store := notion.NewStore(notion.NewClient(cfg.Notion.APIKey), cfg.Notion.DatabaseID, cfg.Notion.ParentPageID, categories)

	return runner.New(cfg.DaysBack, cfg.MaxPapers, dryRun, f, a, store)
}

func logReport(report *runner.Report) {
	log.Printf("Run %s finished: fetched=%d analyzed=%d added=%d summary=%v errors=%d",
		report.RunID, report.PapersFetched, report.PapersAnalyzed, report.PapersAdded,
		report.SummaryCreated, len(report.Errors))
}
