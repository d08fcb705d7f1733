package issues

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/v0xg/seoaudit/internal/pageindex"
	"github.com/v0xg/seoaudit/internal/tabular"
)

var errSourceMissing = errors.New("export not found")

// Normalizer maps the categorised exports in one directory to records.
type Normalizer struct {
	index   *pageindex.Index
	sources []Source
	logger  *zap.Logger
}

// NewNormalizer creates a normalizer joining against index. The index is only read.
func NewNormalizer(index *pageindex.Index, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if index == nil {
		index = pageindex.Empty()
	}
	return &Normalizer{index: index, sources: Sources(), logger: logger}
}

// Normalize reads every known export under directory and returns the records
// in source order. A missing or malformed export is skipped with a warning.
func (n *Normalizer) Normalize(directory string) []Record {
	var records []Record
	for _, source := range n.sources {
		sourceRecords, file, err := n.normalizeSource(directory, source)
		fields := []zap.Field{zap.String("category", source.Category.String())}
		if source.Header.Name != "" {
			fields = append(fields, zap.String("header", source.Header.Name))
		}
		if err != nil {
			if errors.Is(err, errSourceMissing) {
				n.logger.Warn("export missing, category skipped", append(fields, zap.Strings("files", source.Files))...)
			} else {
				n.logger.Warn("export unreadable, category skipped", append(fields, zap.String("file", file), zap.Error(err))...)
			}
			continue
		}
		n.logger.Info("export normalized", append(fields, zap.String("file", file), zap.Int("issues", len(sourceRecords)))...)
		records = append(records, sourceRecords...)
	}
	return records
}

func (n *Normalizer) normalizeSource(directory string, source Source) ([]Record, string, error) {
	path, err := locate(directory, source.Files)
	if err != nil {
		return nil, "", err
	}

	table, err := tabular.ReadFile(path)
	if err != nil {
		return nil, path, err
	}
	if err := table.Require(source.Required...); err != nil {
		return nil, path, err
	}

	records := make([]Record, 0, table.Len())
	for _, row := range table.Rows() {
		record, ok := source.extract(row)
		if !ok || record.Page == "" {
			continue
		}
		record.Category = source.Category
		record.Header = source.Header
		n.enrich(&record, row, source.Subject)
		records = append(records, record)
	}
	return records, path, nil
}

// enrich fills the page-context fields. A row that describes the subject page
// supplies its own values; the page index fills whatever the row lacks. The
// field that defines the category is always left empty.
func (n *Normalizer) enrich(record *Record, row tabular.Row, subject bool) {
	var title, h1, description string
	if subject {
		title = row.Get(pageindex.TitleColumns...)
		h1 = row.Get(pageindex.H1Columns...)
		description = row.Get(pageindex.MetaDescriptionColumns...)
	}

	if attributes, ok := n.index.Lookup(record.Page); ok {
		if title == "" {
			title = attributes.Title
		}
		if h1 == "" {
			h1 = attributes.H1
		}
		if description == "" {
			description = attributes.MetaDescription
		}
	}

	record.CurrentTitle = title
	record.CurrentH1 = h1
	record.CurrentMetaDescription = description
	record.clear(record.Category.Descriptor().ForcedEmpty)
}

func locate(directory string, files []string) (string, error) {
	for _, file := range files {
		path := filepath.Join(directory, file)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %v", errSourceMissing, files)
}

// LocatePrimaryExport returns the path of the primary pages export under
// directory, or the first candidate name when none exists.
func LocatePrimaryExport(directory string) string {
	path, err := locate(directory, PrimaryExportFiles)
	if err != nil {
		return filepath.Join(directory, PrimaryExportFiles[0])
	}
	return path
}
