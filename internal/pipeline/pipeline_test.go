package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/v0xg/seoaudit/internal/ai"
	"github.com/v0xg/seoaudit/internal/issues"
	"github.com/v0xg/seoaudit/internal/ledger"
	"github.com/v0xg/seoaudit/internal/pageindex"
	"github.com/v0xg/seoaudit/internal/pipeline"
	"github.com/v0xg/seoaudit/internal/report"
	"github.com/v0xg/seoaudit/internal/semrush"
	"github.com/v0xg/seoaudit/internal/suggest"
)

var exports = map[string]string{
	"internal_all.csv": "Address,Content Type,Status Code,Title 1,Meta Description 1,H1-1\n" +
		"https://example.test/,text/html,200,Home,Welcome home,Welcome\n" +
		"https://example.test/about,text/html,200,About Us,,\n",
	"h1_missing.csv": "Address,H1-1\nhttps://example.test/about,\n",
}

func writeExports(directory string) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}
	for name, contents := range exports {
		if err := os.WriteFile(filepath.Join(directory, name), []byte(contents), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type stubCrawler struct {
	err      error
	verified bool
}

func (crawler *stubCrawler) Run(ctx context.Context, url, outputDir string) error {
	if crawler.err != nil {
		return crawler.err
	}
	return writeExports(outputDir)
}

func (crawler *stubCrawler) Verify(outputDir string) []string {
	crawler.verified = true
	return nil
}

type stubResearch struct{}

func (stubResearch) Enabled() bool { return true }

func (stubResearch) DomainOverview(ctx context.Context, domain string) (semrush.DomainOverview, bool) {
	return semrush.DomainOverview{Domain: domain, OrganicKeywords: 7}, true
}

func (stubResearch) KeywordMetrics(ctx context.Context, keywords []string) []ledger.KeywordMetric {
	metrics := make([]ledger.KeywordMetric, len(keywords))
	for i, keyword := range keywords {
		metrics[i] = ledger.KeywordMetric{Keyword: keyword, Volume: 10 * (i + 1)}
	}
	return metrics
}

func TestAuditWithUnavailableService(t *testing.T) {
	directory := t.TempDir()
	require.NoError(t, writeExports(directory))

	index := pageindex.Build(issues.LocatePrimaryExport(directory), nil)
	scheduler := suggest.NewScheduler(suggest.NewClient(ai.Disabled{Reason: "no key"}, suggest.Options{}), 50, nil)

	audit := pipeline.Audit(context.Background(), directory, index, scheduler, nil)

	require.Equal(t, 1, audit.Len())
	record := audit.Records[0]
	require.Equal(t, issues.MissingH1, record.Category)
	require.Equal(t, "https://example.test/about", record.Page)
	require.Equal(t, "About Us", record.CurrentTitle)
	require.Empty(t, record.CurrentH1)
	require.Equal(t, "Add H1 heading", record.SuggestedFix)
}

func TestServiceRunWritesWorkbook(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "report.xlsx")
	client := suggest.NewClient(ai.Disabled{Reason: "no key"}, suggest.Options{})
	crawler := &stubCrawler{}

	service := pipeline.NewService(pipeline.Dependencies{
		Crawler:   crawler,
		Research:  stubResearch{},
		Suggester: client,
		Rewriter:  client,
	}, nil)

	summary, err := service.Run(context.Background(), pipeline.Settings{
		URL:       "https://example.test/",
		CrawlDir:  filepath.Join(directory, "crawl"),
		City:      "Dallas",
		PageLimit: 5,
		BatchSize: 50,
		Output:    output,
	})
	require.NoError(t, err)
	require.True(t, crawler.verified)
	require.Equal(t, pipeline.Summary{
		Issues:   1,
		Counts:   map[issues.Category]int{issues.MissingH1: 1},
		Metadata: 2,
		OnPage:   2,
		Keywords: 4,
		Output:   output,
	}, summary)

	file, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer file.Close()

	require.Contains(t, file.GetSheetList(), report.KeywordSheet)
	domain, err := file.GetCellValue(report.KeywordSheet, "A2")
	require.NoError(t, err)
	require.Equal(t, "example.test", domain)

	rows, err := file.GetRows(report.AuditSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Missing H1", rows[1][0])
	require.Equal(t, "Add H1 heading", rows[1][6])
}

func TestServiceRunCrawlFailureIsFatal(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "report.xlsx")
	client := suggest.NewClient(nil, suggest.Options{})

	service := pipeline.NewService(pipeline.Dependencies{
		Crawler:   &stubCrawler{err: errors.New("crawl failed: exit status 1")},
		Suggester: client,
		Rewriter:  client,
	}, nil)

	_, err := service.Run(context.Background(), pipeline.Settings{URL: "https://example.test/", CrawlDir: directory, City: "Dallas", Output: output})
	require.Error(t, err)

	_, statErr := os.Stat(output)
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestDomain(t *testing.T) {
	testCases := map[string]string{
		"https://www.example.test/floor-plans": "www.example.test",
		"http://example.test":                  "example.test",
		"example.test/about":                   "example.test",
	}
	for input, expected := range testCases {
		require.Equal(t, expected, pipeline.Domain(input), input)
	}
}
