package report_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/v0xg/seoaudit/internal/issues"
	"github.com/v0xg/seoaudit/internal/ledger"
	"github.com/v0xg/seoaudit/internal/report"
	"github.com/v0xg/seoaudit/internal/semrush"
)

func auditLedger() ledger.Ledger {
	return ledger.Assemble(
		[]issues.Record{
			{Category: issues.MissingH1, Page: "https://example.test/a", CurrentTitle: "A"},
			{Category: issues.NotFound, Page: "https://example.test/", Details: "Linked to: https://example.test/gone", SuggestedFix: "Remove the link"},
		},
		[]issues.Record{
			{Category: issues.MissingH1, Page: "https://example.test/b"},
		},
	)
}

func openSaved(t *testing.T, path string) *excelize.File {
	t.Helper()
	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })
	return file
}

func TestBuilderFreshWorkbook(t *testing.T) {
	output := filepath.Join(t.TempDir(), "report.xlsx")

	builder, err := report.Open(filepath.Join(t.TempDir(), "missing-template.xlsx"), nil)
	require.NoError(t, err)
	defer builder.Close()

	audit := auditLedger()
	require.NoError(t, builder.WriteSummary(audit, nil))
	require.NoError(t, builder.WriteAuditLedger(audit))
	require.NoError(t, builder.WriteMetadata([]ledger.MetadataRow{
		{URL: "https://example.test/", Keywords: "apartments in Dallas", CurrentTitle: "Home", ProposedTitle: "Luxury Apartments in Dallas"},
	}))
	require.NoError(t, builder.WriteOnPage([]ledger.OnPageRow{
		{URL: "https://example.test/", Keyword: "apartments in Dallas", OriginalCopy: "H1: Welcome\nDesc: Hi", ProposedCopy: "H1: Dallas Living\nIntro: Hello"},
		{URL: "https://example.test/contact", Keyword: "apartments in Dallas"},
	}))
	require.NoError(t, builder.WriteKeywords(
		&semrush.DomainOverview{Domain: "example.test", OrganicKeywords: 12, OrganicTraffic: 340, OrganicCost: 5.5},
		[]ledger.KeywordMetric{{Keyword: "apartments in Dallas", Volume: 4400, Difficulty: 62.5}},
	))
	require.NoError(t, builder.SaveAs(output))

	file := openSaved(t, output)
	require.Equal(t, []string{
		report.SummarySheet,
		report.AuditSheet,
		report.MetadataSheet,
		report.OnPageSheet,
		report.KeywordSheet,
	}, file.GetSheetList())

	summary, err := file.GetRows(report.SummarySheet)
	require.NoError(t, err)
	require.Equal(t, []string{"Issue", "Occurrences"}, summary[0])
	require.Equal(t, []string{"404 Error", "1"}, summary[1])
	require.Equal(t, []string{"Missing H1", "2"}, summary[5])
	require.Len(t, summary, len(issues.Categories())+1)

	rows, err := file.GetRows(report.AuditSheet)
	require.NoError(t, err)
	require.Equal(t, ledger.AuditColumns, rows[0])
	require.Len(t, rows, 4)
	require.Equal(t, "404 Error", rows[1][0])
	require.Equal(t, "Remove the link", rows[1][6])
	require.Equal(t, []string{"Missing H1", "https://example.test/a", "A", "", "", "", "Add H1 heading"}, rows[2])
	require.Equal(t, "https://example.test/b", rows[3][1])

	styleID, err := file.GetCellStyle(report.AuditSheet, "G1")
	require.NoError(t, err)
	style, err := file.GetStyle(styleID)
	require.NoError(t, err)
	require.True(t, style.Font.Bold)

	metadata, err := file.GetRows(report.MetadataSheet)
	require.NoError(t, err)
	require.Equal(t, ledger.MetadataColumns, metadata[0])
	require.Equal(t, "4", metadata[1][3])
	require.Equal(t, "27", metadata[1][5])

	onPage, err := file.GetRows(report.OnPageSheet)
	require.NoError(t, err)
	require.Equal(t, []string{"Web Page:", "https://example.test/"}, onPage[0])
	require.Equal(t, []string{"Original Copy:", "H1: Welcome\nDesc: Hi"}, onPage[8])
	require.Empty(t, onPage[10])
	require.Equal(t, []string{"Web Page:", "https://example.test/contact"}, onPage[11])
	require.Len(t, onPage, 11+8)

	keywords, err := file.GetRows(report.KeywordSheet)
	require.NoError(t, err)
	require.Equal(t, []string{"example.test", "12", "340", "5.5"}, keywords[1])
	require.Equal(t, ledger.KeywordColumns, keywords[3])
	require.Equal(t, []string{"apartments in Dallas", "4400", "62.5"}, keywords[4])
}

func TestBuilderTemplateWithLayout(t *testing.T) {
	directory := t.TempDir()
	template := filepath.Join(directory, "template.xlsx")

	seed := excelize.NewFile()
	require.NoError(t, seed.SetSheetName("Sheet1", report.SummarySheet))
	require.NoError(t, seed.SetCellValue(report.SummarySheet, "A2", "Broken Links"))
	_, err := seed.NewSheet(report.AuditSheet)
	require.NoError(t, err)
	require.NoError(t, seed.SetCellValue(report.AuditSheet, "A9", "stale"))
	_, err = seed.NewSheet(report.OnPageSheet)
	require.NoError(t, err)
	require.NoError(t, seed.SetCellValue(report.OnPageSheet, "A1", "Existing"))
	require.NoError(t, seed.SaveAs(template))
	require.NoError(t, seed.Close())

	layout, err := report.ParseSummaryLayout(map[string]string{"not_found": "B2", "missing_h1": "B3"})
	require.NoError(t, err)

	builder, err := report.Open(template, nil)
	require.NoError(t, err)
	defer builder.Close()

	audit := auditLedger()
	require.NoError(t, builder.WriteSummary(audit, layout))
	require.NoError(t, builder.WriteAuditLedger(audit))
	require.NoError(t, builder.WriteOnPage([]ledger.OnPageRow{{URL: "https://example.test/"}}))

	output := filepath.Join(directory, "out.xlsx")
	require.NoError(t, builder.SaveAs(output))

	file := openSaved(t, output)
	value, err := file.GetCellValue(report.SummarySheet, "B2")
	require.NoError(t, err)
	require.Equal(t, "1", value)
	value, err = file.GetCellValue(report.SummarySheet, "B3")
	require.NoError(t, err)
	require.Equal(t, "2", value)
	value, err = file.GetCellValue(report.SummarySheet, "A2")
	require.NoError(t, err)
	require.Equal(t, "Broken Links", value)

	audits, err := file.GetRows(report.AuditSheet)
	require.NoError(t, err)
	require.Len(t, audits, 4)

	onPage, err := file.GetRows(report.OnPageSheet)
	require.NoError(t, err)
	require.Equal(t, []string{"Existing"}, onPage[0])
	require.Equal(t, []string{"Web Page:", "https://example.test/"}, onPage[2])
}

func TestParseSummaryLayoutRejectsUnknownEntries(t *testing.T) {
	_, err := report.ParseSummaryLayout(map[string]string{"broken_links": "B2"})
	require.Error(t, err)

	_, err = report.ParseSummaryLayout(map[string]string{"not_found": "not a cell"})
	require.Error(t, err)
}
