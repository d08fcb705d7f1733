// Package pipeline runs one report: crawl, keyword research, page index,
// rewrites, audit and workbook.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/v0xg/seoaudit/internal/crawler"
	"github.com/v0xg/seoaudit/internal/issues"
	"github.com/v0xg/seoaudit/internal/ledger"
	"github.com/v0xg/seoaudit/internal/optimize"
	"github.com/v0xg/seoaudit/internal/pageindex"
	"github.com/v0xg/seoaudit/internal/report"
	"github.com/v0xg/seoaudit/internal/semrush"
	"github.com/v0xg/seoaudit/internal/suggest"
)

// Audit normalizes the exports in directory, fills suggestions and assembles
// the ordered ledger. It never fails: every degraded path leaves defaults.
func Audit(ctx context.Context, directory string, index *pageindex.Index, scheduler *suggest.Scheduler, logger *zap.Logger) ledger.Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if index == nil {
		index = pageindex.Empty()
	}

	records := issues.NewNormalizer(index, logger).Normalize(directory)
	logger.Info("issues collected", zap.Int("records", len(records)))

	audit := ledger.Assemble(scheduler.Process(ctx, records))
	logger.Info("audit ledger assembled", zap.Int("rows", audit.Len()))
	return audit
}

// Crawler produces the export directory.
type Crawler interface {
	Run(ctx context.Context, url, outputDir string) error
	Verify(outputDir string) []string
}

// Research supplies domain and keyword metrics.
type Research interface {
	Enabled() bool
	DomainOverview(ctx context.Context, domain string) (semrush.DomainOverview, bool)
	KeywordMetrics(ctx context.Context, keywords []string) []ledger.KeywordMetric
}

// Settings are the per-run inputs.
type Settings struct {
	URL              string
	CrawlDir         string
	SkipCrawl        bool
	City             string
	KeywordTemplates []string
	PageLimit        int
	BatchSize        int
	Template         string
	Output           string
	Layout           report.SummaryLayout
}

// Dependencies are the collaborators of a Service. Crawler, Research and
// Intro may be nil.
type Dependencies struct {
	Crawler   Crawler
	Research  Research
	Suggester suggest.Suggester
	Rewriter  optimize.Rewriter
	Intro     crawler.IntroFetcher
}

// Summary reports what a run produced.
type Summary struct {
	Issues   int
	Counts   map[issues.Category]int
	Metadata int
	OnPage   int
	Keywords int
	Output   string
}

// Service runs the whole report.
type Service struct {
	deps   Dependencies
	logger *zap.Logger
}

// NewService creates a service.
func NewService(deps Dependencies, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{deps: deps, logger: logger}
}

// Run produces the workbook. Only a crawl failure or a workbook that cannot
// be opened or saved is returned as an error.
func (s *Service) Run(ctx context.Context, settings Settings) (Summary, error) {
	s.logger.Info("starting report", zap.String("url", settings.URL), zap.String("city", settings.City))

	if err := s.crawl(ctx, settings); err != nil {
		return Summary{}, err
	}

	keywords := optimize.Keywords(settings.KeywordTemplates, settings.City)
	overview, metrics := s.research(ctx, settings.URL, keywords)

	s.logger.Info("step 3: rewrites and audit")
	index := pageindex.Build(issues.LocatePrimaryExport(settings.CrawlDir), s.logger)
	rewrites := optimize.New(s.deps.Rewriter, optimize.Options{
		Intro:     s.deps.Intro,
		PageLimit: settings.PageLimit,
		Logger:    s.logger,
	}).Run(ctx, index, keywords)

	scheduler := suggest.NewScheduler(s.deps.Suggester, settings.BatchSize, s.logger)
	audit := Audit(ctx, settings.CrawlDir, index, scheduler, s.logger)

	s.logger.Info("step 4: building report")
	if err := s.write(settings, audit, rewrites, overview, metrics); err != nil {
		return Summary{}, err
	}

	return Summary{
		Issues:   audit.Len(),
		Counts:   audit.Counts(),
		Metadata: len(rewrites.Metadata),
		OnPage:   len(rewrites.OnPage),
		Keywords: len(metrics),
		Output:   settings.Output,
	}, nil
}

func (s *Service) crawl(ctx context.Context, settings Settings) error {
	if settings.SkipCrawl || s.deps.Crawler == nil {
		if _, err := os.Stat(settings.CrawlDir); err != nil {
			s.logger.Warn("crawl skipped and export directory unavailable", zap.String("dir", settings.CrawlDir), zap.Error(err))
		} else {
			s.logger.Info("step 1: reusing existing crawl", zap.String("dir", settings.CrawlDir))
		}
		return nil
	}

	s.logger.Info("step 1: crawling")
	if err := s.deps.Crawler.Run(ctx, settings.URL, settings.CrawlDir); err != nil {
		return err
	}
	s.deps.Crawler.Verify(settings.CrawlDir)
	return nil
}

func (s *Service) research(ctx context.Context, site string, keywords []string) (*semrush.DomainOverview, []ledger.KeywordMetric) {
	if s.deps.Research == nil || !s.deps.Research.Enabled() {
		return nil, nil
	}

	s.logger.Info("step 2: keyword research")
	var overview *semrush.DomainOverview
	if result, ok := s.deps.Research.DomainOverview(ctx, Domain(site)); ok {
		overview = &result
		s.logger.Info("domain overview",
			zap.String("domain", result.Domain),
			zap.Int("organic_keywords", result.OrganicKeywords),
			zap.Int("organic_traffic", result.OrganicTraffic))
	}
	metrics := s.deps.Research.KeywordMetrics(ctx, keywords)
	return overview, metrics
}

type sheetWriter struct {
	name  string
	write func() error
}

func (s *Service) write(settings Settings, audit ledger.Ledger, rewrites optimize.Result, overview *semrush.DomainOverview, metrics []ledger.KeywordMetric) error {
	builder, err := report.Open(settings.Template, s.logger)
	if err != nil {
		return err
	}
	defer builder.Close()

	steps := []sheetWriter{
		{name: report.SummarySheet, write: func() error { return builder.WriteSummary(audit, settings.Layout) }},
		{name: report.AuditSheet, write: func() error { return builder.WriteAuditLedger(audit) }},
		{name: report.OnPageSheet, write: func() error { return builder.WriteOnPage(rewrites.OnPage) }},
		{name: report.MetadataSheet, write: func() error { return builder.WriteMetadata(rewrites.Metadata) }},
	}
	if overview != nil || len(metrics) > 0 {
		steps = append(steps, sheetWriter{name: report.KeywordSheet, write: func() error { return builder.WriteKeywords(overview, metrics) }})
	}

	for _, step := range steps {
		if err := step.write(); err != nil {
			return fmt.Errorf("write %s: %w", step.name, err)
		}
	}
	return builder.SaveAs(settings.Output)
}

// Domain returns the host of site, or the input up to its first slash when
// it does not parse as an absolute URL.
func Domain(site string) string {
	if parsed, err := url.Parse(site); err == nil && parsed.Hostname() != "" {
		return parsed.Hostname()
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(site, "https://"), "http://")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}
