package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v0xg/seoaudit/internal/ai"
	"github.com/v0xg/seoaudit/internal/compliance"
	"github.com/v0xg/seoaudit/internal/config"
	"github.com/v0xg/seoaudit/internal/crawler"
	"github.com/v0xg/seoaudit/internal/issues"
	"github.com/v0xg/seoaudit/internal/logging"
	"github.com/v0xg/seoaudit/internal/pipeline"
	"github.com/v0xg/seoaudit/internal/report"
	"github.com/v0xg/seoaudit/internal/semrush"
	"github.com/v0xg/seoaudit/internal/suggest"
)

// flagBindings maps command-line flags onto configuration keys.
var flagBindings = map[string]string{
	"city":        "rewrite.city",
	"output":      "report.output",
	"template":    "report.template",
	"log-level":   "common.log_level",
	"log-format":  "common.log_format",
	"skip-crawl":  "crawl.skip",
	"crawl-dir":   "crawl.output_dir",
	"provider":    "suggestions.provider",
	"model":       "suggestions.model",
	"batch-size":  "suggestions.batch_size",
	"page-limit":  "rewrite.page_limit",
	"fetch-intro": "rewrite.fetch_intro",
	"profile":     "rewrite.browser_profile",
}

var configPath string

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "seoaudit <url>",
		Short: "Generate an SEO audit workbook for a multifamily property website",
		Long: `seoaudit crawls a website with Screaming Frog, turns every exported issue
into a ledger row with an AI-suggested fix, proposes title, meta description
and on-page copy rewrites for the leading pages, and writes everything into
an Excel report.

Example:
  seoaudit "https://www.example-apartments.com" --city Dallas`,
		Args:          cobra.ExactArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "Configuration file (default: ./seoaudit.yaml if present)")
	flags.String("city", "", "Target city for keyword research (required)")
	flags.StringP("output", "o", "SEO_Report_Generated.xlsx", "Output workbook")
	flags.String("template", "", "Template workbook to fill")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "console", "Log format: console, structured")
	flags.Bool("skip-crawl", false, "Reuse the exports already in --crawl-dir")
	flags.String("crawl-dir", "temp_crawl_data", "Directory for crawler exports")
	flags.String("provider", "claude", "AI provider: claude, openai")
	flags.String("model", "", "Specific model override")
	flags.Int("batch-size", suggest.DefaultBatchSize, "Issues per suggestion request")
	flags.Int("page-limit", 5, "Pages to rewrite")
	flags.Bool("fetch-intro", false, "Load each rewritten page in a headless browser to read its intro copy")
	flags.String("profile", "", "Chrome/Chromium profile directory for --fetch-intro (close browser first)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	loaded, err := config.NewLoader(".").Load(configPath, cmd.Flags(), flagBindings)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := logging.NewFactory().CreateLogger(logging.Level(cfg.Common.LogLevel), logging.Format(cfg.Common.LogFormat))
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if loaded.ConfigFileUsed != "" {
		logger.Debug("configuration loaded", zap.String("file", loaded.ConfigFileUsed))
	}

	layout, err := report.ParseSummaryLayout(cfg.Report.SummaryCells)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	policy, err := compliance.Load(cfg.Suggestions.CompliancePolicy)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	provider, err := ai.NewProvider(ai.Options{
		Name:         cfg.Suggestions.Provider,
		Model:        cfg.Suggestions.Model,
		AnthropicKey: cfg.Suggestions.AnthropicAPIKey,
		OpenAIKey:    cfg.Suggestions.OpenAIAPIKey,
		Temperature:  cfg.Suggestions.Temperature,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("AI provider init failed: %w", err)
	}
	client := suggest.NewClient(provider, suggest.Options{
		Policy:         policy,
		BatchMaxTokens: cfg.Suggestions.BatchMaxTokens,
		ItemMaxTokens:  cfg.Suggestions.ItemMaxTokens,
		Logger:         logger,
	})

	deps := pipeline.Dependencies{
		Research: semrush.NewClient(semrush.Options{
			APIKey:   cfg.Semrush.APIKey,
			BaseURL:  cfg.Semrush.BaseURL,
			Database: cfg.Semrush.Database,
			Throttle: cfg.Semrush.Throttle,
			Timeout:  cfg.Semrush.Timeout,
			Logger:   logger,
		}),
		Suggester: client,
		Rewriter:  client,
	}
	if !cfg.Crawl.Skip {
		deps.Crawler = &crawler.ScreamingFrog{Path: cfg.Crawl.ScreamingFrogPath, Logger: logger}
	}
	if cfg.Rewrite.FetchIntro {
		browser := crawler.NewBrowser(crawler.Options{
			Timeout:    cfg.Rewrite.IntroTimeout,
			ProfileDir: cfg.Rewrite.BrowserProfile,
			Logger:     logger,
		})
		defer browser.Close()
		deps.Intro = browser
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := pipeline.NewService(deps, logger).Run(ctx, pipeline.Settings{
		URL:              args[0],
		CrawlDir:         cfg.Crawl.OutputDir,
		SkipCrawl:        cfg.Crawl.Skip,
		City:             cfg.Rewrite.City,
		KeywordTemplates: cfg.Rewrite.KeywordTemplates,
		PageLimit:        cfg.Rewrite.PageLimit,
		BatchSize:        cfg.Suggestions.BatchSize,
		Template:         cfg.Report.Template,
		Output:           cfg.Report.Output,
		Layout:           layout,
	})
	if err != nil {
		logger.Error("report failed", zap.Error(err))
		return err
	}

	for _, category := range issues.Categories() {
		if count := summary.Counts[category]; count > 0 {
			fmt.Printf("  %-28s %d\n", category.Descriptor().Label, count)
		}
	}
	fmt.Printf("✓ Saved to %s (%d issues, %d pages rewritten)\n", summary.Output, summary.Issues, summary.Metadata)
	return nil
}
