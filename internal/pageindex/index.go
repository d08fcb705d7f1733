// Package pageindex builds the lookup from page address to the on-page
// attributes recorded in the primary "internal pages" export.
package pageindex

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/v0xg/seoaudit/internal/tabular"
)

// Column aliases, newest exporter naming first.
var (
	AddressColumns               = []string{"Address", "URL", "Url"}
	TitleColumns                 = []string{"Title 1", "Page Title", "Title"}
	TitleLengthColumns           = []string{"Title 1 Length", "Title 1 Characters", "Title Length"}
	MetaDescriptionColumns       = []string{"Meta Description 1", "Meta Description"}
	MetaDescriptionLengthColumns = []string{"Meta Description 1 Length", "Meta Description 1 Characters", "Meta Description Length"}
	H1Columns                    = []string{"H1-1", "H1 1", "H1"}
	H2Columns                    = []string{"H2-1", "H2 1", "H2"}
	CanonicalColumns             = []string{"Canonical Link Element 1", "Canonical Link Element", "Canonical"}
	WordCountColumns             = []string{"Word Count"}
	IndexabilityColumns          = []string{"Indexability"}
	StatusCodeColumns            = []string{"Status Code", "Status"}
	ContentTypeColumns           = []string{"Content Type", "Content"}
)

// Attributes is one page's current on-page state. Attributes the export does
// not carry are empty strings.
type Attributes struct {
	Address               string
	Title                 string
	TitleLength           string
	MetaDescription       string
	MetaDescriptionLength string
	H1                    string
	H2                    string
	Canonical             string
	WordCount             string
	Indexability          string
	StatusCode            string
	ContentType           string
}

// Status parses StatusCode; zero when absent or non-numeric.
func (a Attributes) Status() int {
	code, err := strconv.Atoi(strings.TrimSuffix(a.StatusCode, ".0"))
	if err != nil {
		return 0
	}
	return code
}

// IsHTML reports whether the content type is an HTML document.
func (a Attributes) IsHTML() bool {
	return strings.Contains(strings.ToLower(a.ContentType), "text/html")
}

// Index maps page addresses to attributes. It is read-only once built.
type Index struct {
	pages          map[string]Attributes
	order          []string
	hasStatus      bool
	hasContentType bool
}

// Empty returns an index on which every lookup misses.
func Empty() *Index {
	return &Index{pages: map[string]Attributes{}}
}

// Build reads the primary export at path. A missing or unreadable export, or
// one without an address column, yields an empty index.
func Build(path string, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}

	table, err := tabular.ReadFile(path)
	if err != nil {
		logger.Warn("page index unavailable", zap.String("file", path), zap.Error(err))
		return Empty()
	}

	index, err := BuildFromTable(table)
	if err != nil {
		logger.Warn("page index unavailable", zap.String("file", path), zap.Error(err))
		return Empty()
	}

	logger.Info("page index built", zap.String("file", path), zap.Int("pages", index.Len()))
	return index
}

// BuildFromTable indexes an already parsed export. The first row for an
// address wins when the export repeats it.
func BuildFromTable(table *tabular.Table) (*Index, error) {
	if err := table.Require(AddressColumns...); err != nil {
		return nil, err
	}

	index := &Index{
		pages:          make(map[string]Attributes, table.Len()),
		hasStatus:      table.HasAny(StatusCodeColumns...),
		hasContentType: table.HasAny(ContentTypeColumns...),
	}
	for _, row := range table.Rows() {
		address := row.Get(AddressColumns...)
		if address == "" {
			continue
		}
		if _, seen := index.pages[address]; seen {
			continue
		}
		index.pages[address] = Attributes{
			Address:               address,
			Title:                 row.Get(TitleColumns...),
			TitleLength:           row.Get(TitleLengthColumns...),
			MetaDescription:       row.Get(MetaDescriptionColumns...),
			MetaDescriptionLength: row.Get(MetaDescriptionLengthColumns...),
			H1:                    row.Get(H1Columns...),
			H2:                    row.Get(H2Columns...),
			Canonical:             row.Get(CanonicalColumns...),
			WordCount:             row.Get(WordCountColumns...),
			Indexability:          row.Get(IndexabilityColumns...),
			StatusCode:            row.Get(StatusCodeColumns...),
			ContentType:           row.Get(ContentTypeColumns...),
		}
		index.order = append(index.order, address)
	}
	return index, nil
}

// Lookup returns the attributes for address. The flag is false when the page
// is absent from the export, which differs from a page with empty attributes.
func (i *Index) Lookup(address string) (Attributes, bool) {
	if i == nil {
		return Attributes{}, false
	}
	attributes, ok := i.pages[strings.TrimSpace(address)]
	return attributes, ok
}

// Len returns the number of indexed pages.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.order)
}

// Pages returns every page in export order.
func (i *Index) Pages() []Attributes {
	if i == nil {
		return nil
	}
	pages := make([]Attributes, len(i.order))
	for n, address := range i.order {
		pages[n] = i.pages[address]
	}
	return pages
}

// HasStatusColumn reports whether the export carried a status code column.
func (i *Index) HasStatusColumn() bool {
	return i != nil && i.hasStatus
}

// HasContentTypeColumn reports whether the export carried a content type column.
func (i *Index) HasContentTypeColumn() bool {
	return i != nil && i.hasContentType
}
