package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/seoaudit/internal/config"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	loaded, err := config.NewLoader(t.TempDir()).Load("", nil, nil)
	require.NoError(t, err)

	cfg := loaded.Config
	require.Empty(t, loaded.ConfigFileUsed)
	require.Equal(t, "info", cfg.Common.LogLevel)
	require.Equal(t, "claude", cfg.Suggestions.Provider)
	require.Equal(t, 50, cfg.Suggestions.BatchSize)
	require.EqualValues(t, 4000, cfg.Suggestions.BatchMaxTokens)
	require.EqualValues(t, 1000, cfg.Suggestions.ItemMaxTokens)
	require.InDelta(t, 0.7, cfg.Suggestions.Temperature, 1e-9)
	require.Equal(t, 100*time.Millisecond, cfg.Semrush.Throttle)
	require.Equal(t, "us", cfg.Semrush.Database)
	require.Equal(t, 5, cfg.Rewrite.PageLimit)
	require.Len(t, cfg.Rewrite.KeywordTemplates, 4)
	require.Equal(t, "apartments in {city}", cfg.Rewrite.KeywordTemplates[0])
	require.Equal(t, "SEO_Report_Generated.xlsx", cfg.Report.Output)
	require.Equal(t, "temp_crawl_data", cfg.Crawl.OutputDir)
	require.Empty(t, cfg.Rewrite.BrowserProfile)
}

func TestLoadPrecedence(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
common:
  log_level: warn
suggestions:
  batch_size: 25
rewrite:
  city: Austin
report:
  summary_cells:
    not_found: C5
`), 0o644))

	t.Setenv("SEOAUDIT_COMMON_LOG_LEVEL", "error")
	t.Setenv("SEOAUDIT_SEMRUSH_THROTTLE", "250ms")
	t.Setenv("SEOAUDIT_REWRITE_KEYWORD_TEMPLATES", "condos {city},lofts {city}")
	t.Setenv("ANTHROPIC_API_KEY", "from-dotenv")
	t.Setenv("SEMRUSH_API_KEY", "")
	t.Setenv("SEOAUDIT_REWRITE_BROWSER_PROFILE", "/home/agent/.config/chromium")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("city", "", "")
	flags.Int("batch-size", 0, "")
	flags.String("output", "default.xlsx", "")
	require.NoError(t, flags.Parse([]string{"--city", "Dallas"}))

	bindings := map[string]string{
		"city":       "rewrite.city",
		"batch-size": "suggestions.batch_size",
		"output":     "report.output",
	}
	loaded, err := config.NewLoader().Load(path, flags, bindings)
	require.NoError(t, err)

	cfg := loaded.Config
	require.Equal(t, path, loaded.ConfigFileUsed)
	require.Equal(t, "error", cfg.Common.LogLevel)
	require.Equal(t, 25, cfg.Suggestions.BatchSize)
	require.Equal(t, "Dallas", cfg.Rewrite.City)
	require.Equal(t, "SEO_Report_Generated.xlsx", cfg.Report.Output)
	require.Equal(t, 250*time.Millisecond, cfg.Semrush.Throttle)
	require.Equal(t, []string{"condos {city}", "lofts {city}"}, cfg.Rewrite.KeywordTemplates)
	require.Equal(t, "from-dotenv", cfg.Suggestions.AnthropicAPIKey)
	require.Equal(t, map[string]string{"not_found": "C5"}, cfg.Report.SummaryCells)
	require.Equal(t, "/home/agent/.config/chromium", cfg.Rewrite.BrowserProfile)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"), nil, nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	loaded, err := config.NewLoader(t.TempDir()).Load("", nil, nil)
	require.NoError(t, err)

	cfg := loaded.Config
	require.ErrorContains(t, cfg.Validate(), "rewrite.city is required")

	cfg.Rewrite.City = "Dallas"
	require.NoError(t, cfg.Validate())

	cfg.Suggestions.Provider = "gemini"
	cfg.Suggestions.BatchSize = 0
	err = cfg.Validate()
	require.ErrorContains(t, err, "unsupported provider")
	require.ErrorContains(t, err, "batch_size must be positive")
}
