package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// IntroFetcher returns the current introductory copy of a live page.
type IntroFetcher interface {
	FetchIntro(ctx context.Context, url string) (string, error)
}

// Options configures the headless browser
type Options struct {
	Timeout    time.Duration
	ProfileDir string // Chrome/Chromium profile directory for authenticated sessions
	Logger     *zap.Logger
}

// Browser wraps a Rod browser that is launched on first use and reused for
// every page.
type Browser struct {
	opts    Options
	browser *rod.Browser
}

// NewBrowser creates a browser; nothing is launched until the first fetch.
func NewBrowser(opts Options) *Browser {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Browser{opts: opts}
}

// Close cleans up browser resources
func (b *Browser) Close() {
	if b.browser != nil {
		b.browser.Close()
		b.browser = nil
	}
}

// FetchIntro loads url and extracts its first substantive paragraph.
func (b *Browser) FetchIntro(ctx context.Context, url string) (string, error) {
	html, err := b.render(ctx, url)
	if err != nil {
		return "", err
	}
	return ExtractIntro(html)
}

// render navigates to url and returns the rendered document.
func (b *Browser) render(ctx context.Context, url string) (string, error) {
	if err := b.launch(); err != nil {
		return "", err
	}

	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", fmt.Errorf("open %s: %w", url, err)
	}
	defer page.Close()

	page = page.Timeout(b.opts.Timeout)

	// Wait for page load
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("load %s: %w", url, err)
	}

	// Wait for network to be idle; don't hang on persistent connections
	page.Timeout(5*time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return html, nil
}

func (b *Browser) launch() error {
	if b.browser != nil {
		return nil
	}

	// Launch headless browser
	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(true)

	if b.opts.ProfileDir != "" {
		l = l.UserDataDir(b.opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	b.opts.Logger.Debug("headless browser launched", zap.String("control_url", u))
	b.browser = browser
	return nil
}
