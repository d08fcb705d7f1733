// Package config loads run configuration from embedded defaults, an optional
// YAML file, the environment and command-line flags, in increasing priority.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

//go:embed default_config.yaml
var defaultConfig []byte

const (
	// EnvPrefix prefixes every environment override, e.g. SEOAUDIT_REWRITE_CITY.
	EnvPrefix = "SEOAUDIT"
	// FileName is the configuration file searched for in the working directory.
	FileName = "seoaudit"
)

// wellKnownEnv maps keys to unprefixed variables honored for compatibility
// with existing .env files.
var wellKnownEnv = map[string]string{
	"suggestions.anthropic_api_key": "ANTHROPIC_API_KEY",
	"suggestions.openai_api_key":    "OPENAI_API_KEY",
	"semrush.api_key":               "SEMRUSH_API_KEY",
	"crawl.screaming_frog_path":     "SCREAMING_FROG_PATH",
}

// Config is the complete run configuration.
type Config struct {
	Common      Common      `mapstructure:"common"`
	Crawl       Crawl       `mapstructure:"crawl"`
	Suggestions Suggestions `mapstructure:"suggestions"`
	Semrush     Semrush     `mapstructure:"semrush"`
	Rewrite     Rewrite     `mapstructure:"rewrite"`
	Report      Report      `mapstructure:"report"`
}

type Common struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type Crawl struct {
	ScreamingFrogPath string `mapstructure:"screaming_frog_path"`
	OutputDir         string `mapstructure:"output_dir"`
	Skip              bool   `mapstructure:"skip"`
}

type Suggestions struct {
	Provider         string  `mapstructure:"provider"`
	Model            string  `mapstructure:"model"`
	BatchSize        int     `mapstructure:"batch_size"`
	BatchMaxTokens   int64   `mapstructure:"batch_max_tokens"`
	ItemMaxTokens    int64   `mapstructure:"item_max_tokens"`
	Temperature      float64 `mapstructure:"temperature"`
	AnthropicAPIKey  string  `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey     string  `mapstructure:"openai_api_key"`
	CompliancePolicy string  `mapstructure:"compliance_policy"`
}

type Semrush struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Database string        `mapstructure:"database"`
	Throttle time.Duration `mapstructure:"throttle"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type Rewrite struct {
	City             string        `mapstructure:"city"`
	PageLimit        int           `mapstructure:"page_limit"`
	KeywordTemplates []string      `mapstructure:"keyword_templates"`
	FetchIntro       bool          `mapstructure:"fetch_intro"`
	IntroTimeout     time.Duration `mapstructure:"intro_timeout"`
	BrowserProfile   string        `mapstructure:"browser_profile"`
}

type Report struct {
	Template     string            `mapstructure:"template"`
	Output       string            `mapstructure:"output"`
	SummaryCells map[string]string `mapstructure:"summary_cells"`
}

// Validate reports configuration errors that would make a run meaningless.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Suggestions.Provider) {
	case "claude", "anthropic", "openai", "gpt":
	default:
		errs = append(errs, fmt.Errorf("suggestions.provider: unsupported provider %q", c.Suggestions.Provider))
	}
	if c.Suggestions.BatchSize <= 0 {
		errs = append(errs, errors.New("suggestions.batch_size must be positive"))
	}
	if c.Rewrite.PageLimit < 0 {
		errs = append(errs, errors.New("rewrite.page_limit must not be negative"))
	}
	if strings.TrimSpace(c.Rewrite.City) == "" {
		errs = append(errs, errors.New("rewrite.city is required"))
	}
	if c.Report.Output == "" {
		errs = append(errs, errors.New("report.output is required"))
	}
	if !c.Crawl.Skip && c.Crawl.OutputDir == "" {
		errs = append(errs, errors.New("crawl.output_dir is required"))
	}
	return errors.Join(errs...)
}

// Loader wraps viper to resolve a Config.
type Loader struct {
	envPrefix   string
	searchPaths []string
	embedded    []byte
}

// NewLoader creates a loader searching the given directories for seoaudit.yaml.
func NewLoader(searchPaths ...string) *Loader {
	return &Loader{
		envPrefix:   EnvPrefix,
		searchPaths: append([]string(nil), searchPaths...),
		embedded:    defaultConfig,
	}
}

// Loaded carries the resolved configuration and the file it came from.
type Loaded struct {
	Config         Config
	ConfigFileUsed string
}

// Load resolves the configuration. configPath, when set, must exist. bindings
// maps flag names in flags onto configuration keys; only flags set on the
// command line override other sources.
func (l *Loader) Load(configPath string, flags *pflag.FlagSet, bindings map[string]string) (Loaded, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.MergeConfig(bytes.NewReader(l.embedded)); err != nil {
		return Loaded{}, fmt.Errorf("failed to merge embedded configuration: %w", err)
	}

	v.SetConfigName(FileName)
	for _, path := range l.searchPaths {
		v.AddConfigPath(path)
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Loaded{}, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range wellKnownEnv {
		prefixed := l.envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return Loaded{}, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.Visit(func(flag *pflag.Flag) {
			key, ok := bindings[flag.Name]
			if !ok || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, flag)
		})
		if bindErr != nil {
			return Loaded{}, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Loaded{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return Loaded{Config: cfg, ConfigFileUsed: v.ConfigFileUsed()}, nil
}
