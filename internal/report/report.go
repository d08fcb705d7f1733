// Package report writes the audit and rewrite ledgers into the output
// workbook.
package report

import (
	"fmt"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/v0xg/seoaudit/internal/issues"
	"github.com/v0xg/seoaudit/internal/ledger"
	"github.com/v0xg/seoaudit/internal/semrush"
)

// Sheet names.
const (
	SummarySheet  = "Technical SEO"
	AuditSheet    = "Detailed Audit Logs"
	MetadataSheet = "Metadata Optimization"
	OnPageSheet   = "On-Page Recommendations"
	KeywordSheet  = "Keyword Research"
)

// SummaryLayout maps a category to the template cell holding its occurrence
// count.
type SummaryLayout map[issues.Category]string

// ParseSummaryLayout resolves category slugs and validates cell references.
func ParseSummaryLayout(cells map[string]string) (SummaryLayout, error) {
	layout := make(SummaryLayout, len(cells))
	for slug, cell := range cells {
		category, ok := issues.ParseCategory(slug)
		if !ok {
			return nil, fmt.Errorf("summary layout: unknown category %q", slug)
		}
		if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
			return nil, fmt.Errorf("summary layout: %s: %w", slug, err)
		}
		layout[category] = cell
	}
	return layout, nil
}

// Builder accumulates sheets in one workbook.
type Builder struct {
	file   *excelize.File
	fresh  bool
	bold   int
	wrap   int
	logger *zap.Logger
}

// Open loads the template workbook. A missing or empty template path yields
// a new workbook whose first sheet is the summary sheet.
func Open(template string, logger *zap.Logger) (*Builder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		file  *excelize.File
		fresh bool
	)
	switch _, statErr := os.Stat(template); {
	case template != "" && statErr == nil:
		opened, err := excelize.OpenFile(template)
		if err != nil {
			return nil, fmt.Errorf("open template %s: %w", template, err)
		}
		file = opened
	default:
		if template != "" {
			logger.Warn("template workbook not found, starting a blank workbook", zap.String("template", template))
		}
		file = excelize.NewFile()
		fresh = true
		if err := file.SetSheetName(file.GetSheetName(0), SummarySheet); err != nil {
			return nil, fmt.Errorf("name summary sheet: %w", err)
		}
	}

	builder := &Builder{file: file, fresh: fresh, logger: logger}
	if err := builder.init(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return builder, nil
}

func (b *Builder) init() error {
	if _, err := b.ensureSheet(SummarySheet); err != nil {
		return err
	}

	bold, err := b.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	wrap, err := b.file.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	b.bold, b.wrap = bold, wrap
	return nil
}

// Close releases the workbook.
func (b *Builder) Close() error {
	return b.file.Close()
}

// WriteSummary writes per-category occurrence counts. With a layout, each
// count lands in its mapped cell. Without one, an Issue/Occurrences table is
// written below any existing content.
func (b *Builder) WriteSummary(audit ledger.Ledger, layout SummaryLayout) error {
	counts := audit.Counts()

	if len(layout) > 0 {
		categories := make([]issues.Category, 0, len(layout))
		for category := range layout {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
		for _, category := range categories {
			if err := b.file.SetCellValue(SummarySheet, layout[category], counts[category]); err != nil {
				return fmt.Errorf("write %s count: %w", category, err)
			}
		}
		return nil
	}

	if !b.fresh {
		b.logger.Warn("no summary layout configured for template, appending a summary table", zap.String("sheet", SummarySheet))
	}
	row, err := b.nextRow(SummarySheet)
	if err != nil {
		return err
	}
	if err := b.writeHeader(SummarySheet, row, []string{"Issue", "Occurrences"}); err != nil {
		return err
	}
	for _, category := range issues.Categories() {
		row++
		if err := b.setRow(SummarySheet, row, []any{category.Descriptor().Label, counts[category]}); err != nil {
			return err
		}
	}
	return b.file.SetColWidth(SummarySheet, "A", "A", 32)
}

// WriteAuditLedger recreates the audit sheet from the ledger.
func (b *Builder) WriteAuditLedger(audit ledger.Ledger) error {
	if err := b.recreateSheet(AuditSheet); err != nil {
		return err
	}
	if err := b.writeHeader(AuditSheet, 1, ledger.AuditColumns); err != nil {
		return err
	}
	for i, values := range audit.Rows() {
		row := make([]any, len(values))
		for j, value := range values {
			row[j] = value
		}
		if err := b.setRow(AuditSheet, i+2, row); err != nil {
			return err
		}
	}
	return b.file.SetColWidth(AuditSheet, "A", "G", 30)
}

// WriteMetadata recreates the metadata sheet.
func (b *Builder) WriteMetadata(rows []ledger.MetadataRow) error {
	if err := b.recreateSheet(MetadataSheet); err != nil {
		return err
	}
	if err := b.writeHeader(MetadataSheet, 1, ledger.MetadataColumns); err != nil {
		return err
	}
	for i, row := range rows {
		if err := b.setRow(MetadataSheet, i+2, row.Values()); err != nil {
			return err
		}
	}
	return nil
}

// WriteOnPage appends one labelled block per row, separated by a blank row.
func (b *Builder) WriteOnPage(rows []ledger.OnPageRow) error {
	if _, err := b.ensureSheet(OnPageSheet); err != nil {
		return err
	}
	current, err := b.nextRow(OnPageSheet)
	if err != nil {
		return err
	}

	for _, row := range rows {
		for _, block := range row.Blocks() {
			if err := b.setRow(OnPageSheet, current, []any{block.Label, block.Value}); err != nil {
				return err
			}
			if err := b.style(OnPageSheet, 1, current, b.bold); err != nil {
				return err
			}
			if err := b.style(OnPageSheet, 2, current, b.wrap); err != nil {
				return err
			}
			current++
		}
		current++
	}
	if err := b.file.SetColWidth(OnPageSheet, "A", "A", 28); err != nil {
		return err
	}
	return b.file.SetColWidth(OnPageSheet, "B", "B", 90)
}

// WriteKeywords recreates the keyword research sheet.
func (b *Builder) WriteKeywords(overview *semrush.DomainOverview, metrics []ledger.KeywordMetric) error {
	if err := b.recreateSheet(KeywordSheet); err != nil {
		return err
	}

	row := 1
	if overview != nil {
		if err := b.writeHeader(KeywordSheet, row, []string{"Domain", "Organic Keywords", "Organic Traffic", "Organic Cost"}); err != nil {
			return err
		}
		row++
		values := []any{overview.Domain, overview.OrganicKeywords, overview.OrganicTraffic, overview.OrganicCost}
		if err := b.setRow(KeywordSheet, row, values); err != nil {
			return err
		}
		row += 2
	}

	if err := b.writeHeader(KeywordSheet, row, ledger.KeywordColumns); err != nil {
		return err
	}
	for _, metric := range metrics {
		row++
		if err := b.setRow(KeywordSheet, row, metric.Values()); err != nil {
			return err
		}
	}
	return nil
}

// SaveAs writes the workbook to path.
func (b *Builder) SaveAs(path string) error {
	if err := b.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	b.logger.Info("report saved", zap.String("path", path))
	return nil
}

func (b *Builder) ensureSheet(name string) (bool, error) {
	index, err := b.file.GetSheetIndex(name)
	if err != nil {
		return false, fmt.Errorf("look up sheet %s: %w", name, err)
	}
	if index >= 0 {
		return false, nil
	}
	if _, err := b.file.NewSheet(name); err != nil {
		return false, fmt.Errorf("create sheet %s: %w", name, err)
	}
	return true, nil
}

func (b *Builder) recreateSheet(name string) error {
	created, err := b.ensureSheet(name)
	if err != nil || created {
		return err
	}
	if err := b.file.DeleteSheet(name); err != nil {
		return fmt.Errorf("delete sheet %s: %w", name, err)
	}
	if _, err := b.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return nil
}

// nextRow returns the first row to write: 1 for an empty sheet, otherwise
// two rows below the last used one.
func (b *Builder) nextRow(sheet string) (int, error) {
	rows, err := b.file.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return 1, nil
	}
	return len(rows) + 2, nil
}

func (b *Builder) writeHeader(sheet string, row int, columns []string) error {
	values := make([]any, len(columns))
	for i, column := range columns {
		values[i] = column
	}
	if err := b.setRow(sheet, row, values); err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), row)
	if err != nil {
		return err
	}
	return b.file.SetCellStyle(sheet, first, last, b.bold)
}

func (b *Builder) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := b.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func (b *Builder) style(sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return b.file.SetCellStyle(sheet, cell, cell, style)
}
