package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrExecutableNotFound is returned when the crawler binary cannot be found.
var ErrExecutableNotFound = errors.New("crawler executable not found")

// DefaultScreamingFrogPath is the Windows install location of the CLI.
const DefaultScreamingFrogPath = `C:\Program Files (x86)\Screaming Frog SEO Spider\ScreamingFrogSEOSpiderCLI.exe`

// ExportTabs are the crawler tabs exported for the audit, one per category
// plus the primary internal pages export.
var ExportTabs = []string{
	"Internal:All",
	"Response Codes:Client Error (4xx)",
	"Response Codes:Redirection (3xx)",
	"Images:Missing Alt Text",
	"Images:Missing Alt Attribute",
	"Page Titles:Missing",
	"Page Titles:Below X Characters",
	"Meta Description:Missing",
	"H1:Missing",
	"H1:Multiple",
	"H2:Multiple",
	"Canonicals:Missing",
	"Security:Missing HSTS Header",
	"Security:Missing X-Frame-Options Header",
	"Security:Missing X-Content-Type-Options Header",
	"Security:Missing Secure Referrer-Policy Header",
	"Security:Missing Content-Security-Policy Header",
	"URL:Parameters",
	"External:All",
}

// expectedExports are the files whose absence after a crawl is worth a warning.
var expectedExports = []string{
	"internal_all.csv",
	"response_codes_client_error_(4xx).csv",
	"images_missing_alt_text.csv",
	"page_titles_missing.csv",
	"h1_missing.csv",
}

// CommandResult captures a finished process.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner executes an external command.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// OSCommandRunner executes commands using os/exec.
type OSCommandRunner struct{}

// Run executes name with args and captures its output. A non-zero exit is
// reported through ExitCode, not as an error.
func (OSCommandRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitErr := &exec.ExitError{}
		if errors.As(err, &exitErr) {
			return CommandResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitErr.ExitCode()}, nil
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return CommandResult{}, fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
		}
		return CommandResult{}, err
	}
	return CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// ScreamingFrog runs the crawler CLI headless and exports the audit tabs.
type ScreamingFrog struct {
	Path   string
	Runner CommandRunner
	Logger *zap.Logger
}

// Run crawls url and writes the exports into outputDir. Files already in
// outputDir are removed first; subdirectories are left alone. Any failure
// here is fatal to the run.
func (s *ScreamingFrog) Run(ctx context.Context, url, outputDir string) error {
	logger := s.logger()
	if err := prepareOutputDir(outputDir, logger); err != nil {
		return err
	}

	path := s.Path
	if path == "" {
		path = DefaultScreamingFrogPath
	}
	runner := s.Runner
	if runner == nil {
		runner = OSCommandRunner{}
	}

	args := Arguments(url, outputDir)
	logger.Info("starting crawl", zap.String("url", url), zap.String("output_dir", outputDir))
	logger.Debug("crawler command", zap.String("path", path), zap.Strings("args", args))

	result, err := runner.Run(ctx, path, args...)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	if result.ExitCode != 0 {
		logger.Error("crawler exited with error",
			zap.Int("exit_code", result.ExitCode),
			zap.String("stdout", result.Stdout),
			zap.String("stderr", result.Stderr))
		return fmt.Errorf("crawl failed: exit status %d", result.ExitCode)
	}

	logger.Info("crawl completed")
	return nil
}

// Arguments builds the crawler command line.
func Arguments(url, outputDir string) []string {
	return []string{
		"--crawl", url,
		"--headless",
		"--save-crawl",
		"--output-folder", outputDir,
		"--export-tabs", strings.Join(ExportTabs, ","),
	}
}

// Verify reports the expected core exports missing from outputDir.
func (s *ScreamingFrog) Verify(outputDir string) []string {
	var missing []string
	for _, file := range expectedExports {
		if _, err := os.Stat(filepath.Join(outputDir, file)); err != nil {
			missing = append(missing, file)
		}
	}
	if len(missing) > 0 {
		s.logger().Warn("expected exports not found", zap.Strings("files", missing))
	}
	return missing
}

func (s *ScreamingFrog) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func prepareOutputDir(outputDir string, logger *zap.Logger) error {
	entries, err := os.ReadDir(outputDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read output dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(outputDir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("could not remove stale export", zap.String("file", path), zap.Error(err))
		}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
