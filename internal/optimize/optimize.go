// Package optimize produces the metadata and on-page rewrite ledgers for the
// site's leading pages.
package optimize

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/v0xg/seoaudit/internal/crawler"
	"github.com/v0xg/seoaudit/internal/ledger"
	"github.com/v0xg/seoaudit/internal/pageindex"
	"github.com/v0xg/seoaudit/internal/suggest"
)

// DefaultPageLimit is the number of candidate pages rewritten per run.
const DefaultPageLimit = 5

// DefaultKeywordTemplates render the target keywords for a city.
var DefaultKeywordTemplates = []string{
	"apartments in {city}",
	"pet friendly apartments {city}",
	"luxury apartments {city}",
	"studio apartments {city}",
}

// Keywords renders templates for city, dropping blanks and duplicates.
func Keywords(templates []string, city string) []string {
	if len(templates) == 0 {
		templates = DefaultKeywordTemplates
	}
	city = strings.TrimSpace(city)
	seen := make(map[string]bool, len(templates))
	keywords := make([]string, 0, len(templates))
	for _, template := range templates {
		keyword := strings.Join(strings.Fields(strings.ReplaceAll(template, "{city}", city)), " ")
		if keyword == "" || seen[keyword] {
			continue
		}
		seen[keyword] = true
		keywords = append(keywords, keyword)
	}
	return keywords
}

// Rewriter proposes page-level copy.
type Rewriter interface {
	RewriteMetadata(ctx context.Context, url, currentTitle string, keywords []string) suggest.MetadataRewrite
	RewriteOnPage(ctx context.Context, url, currentH1, currentContent, keyword string) suggest.OnPageRewrite
}

// Result holds both rewrite ledgers.
type Result struct {
	Metadata []ledger.MetadataRow
	OnPage   []ledger.OnPageRow
}

// Optimizer selects candidate pages and rewrites them.
type Optimizer struct {
	rewriter  Rewriter
	intro     crawler.IntroFetcher
	pageLimit int
	logger    *zap.Logger
}

// Options configures an Optimizer. Intro is optional; without it the meta
// description stands in for the page's intro copy.
type Options struct {
	Intro     crawler.IntroFetcher
	PageLimit int
	Logger    *zap.Logger
}

// New creates an optimizer.
func New(rewriter Rewriter, opts Options) *Optimizer {
	if opts.PageLimit <= 0 {
		opts.PageLimit = DefaultPageLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Optimizer{rewriter: rewriter, intro: opts.Intro, pageLimit: opts.PageLimit, logger: opts.Logger}
}

// Candidates returns up to limit pages in export order that returned 200 and
// are HTML. When the export lacks either the status or the content type
// column, no filter applies.
func Candidates(index *pageindex.Index, limit int) []pageindex.Attributes {
	filter := index.HasStatusColumn() && index.HasContentTypeColumn()

	var candidates []pageindex.Attributes
	for _, page := range index.Pages() {
		if len(candidates) == limit {
			break
		}
		if filter && (page.Status() != 200 || !page.IsHTML()) {
			continue
		}
		candidates = append(candidates, page)
	}
	return candidates
}

// Run rewrites every candidate page. The first keyword is the on-page target.
func (o *Optimizer) Run(ctx context.Context, index *pageindex.Index, keywords []string) Result {
	candidates := Candidates(index, o.pageLimit)
	if len(candidates) == 0 {
		o.logger.Warn("no candidate pages for rewriting")
		return Result{}
	}

	primary := ""
	if len(keywords) > 0 {
		primary = keywords[0]
	}
	joined := strings.Join(keywords, ", ")

	o.logger.Info("optimizing pages", zap.Int("pages", len(candidates)))
	result := Result{
		Metadata: make([]ledger.MetadataRow, 0, len(candidates)),
		OnPage:   make([]ledger.OnPageRow, 0, len(candidates)),
	}
	for _, page := range candidates {
		if ctx.Err() != nil {
			o.logger.Warn("optimization interrupted", zap.Error(ctx.Err()))
			break
		}

		metadata := o.rewriter.RewriteMetadata(ctx, page.Address, page.Title, keywords)
		result.Metadata = append(result.Metadata, ledger.MetadataRow{
			URL:                     page.Address,
			Keywords:                joined,
			CurrentTitle:            page.Title,
			ProposedTitle:           metadata.Title,
			CurrentH1:               page.H1,
			CurrentMetaDescription:  page.MetaDescription,
			ProposedMetaDescription: metadata.MetaDescription,
		})

		label, content := o.currentCopy(ctx, page)
		onPage := o.rewriter.RewriteOnPage(ctx, page.Address, page.H1, content, primary)
		result.OnPage = append(result.OnPage, ledger.OnPageRow{
			URL:                     page.Address,
			Keyword:                 primary,
			CurrentTitle:            page.Title,
			ProposedTitle:           metadata.Title,
			CurrentH1:               page.H1,
			ProposedH1:              onPage.H1,
			CurrentMetaDescription:  page.MetaDescription,
			ProposedMetaDescription: metadata.MetaDescription,
			OriginalCopy:            copyBlock("H1", page.H1, label, content),
			ProposedCopy:            copyBlock("H1", onPage.H1, "Intro", onPage.Content),
		})
	}
	return result
}

// currentCopy returns the page's intro copy and its label. The live intro is
// preferred; the meta description is the fallback.
func (o *Optimizer) currentCopy(ctx context.Context, page pageindex.Attributes) (string, string) {
	if o.intro != nil {
		intro, err := o.intro.FetchIntro(ctx, page.Address)
		if err == nil && intro != "" {
			return "Intro", intro
		}
		o.logger.Warn("intro copy unavailable, using meta description",
			zap.String("url", page.Address), zap.Error(err))
	}
	return "Desc", page.MetaDescription
}

func copyBlock(headingLabel, heading, bodyLabel, body string) string {
	if heading == "" && body == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s\n%s: %s", headingLabel, heading, bodyLabel, body)
}
