package issues_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v0xg/seoaudit/internal/issues"
	"github.com/v0xg/seoaudit/internal/pageindex"
	"github.com/v0xg/seoaudit/internal/tabular"
)

func buildIndex(t *testing.T, contents string) *pageindex.Index {
	t.Helper()
	table, err := tabular.Read(strings.NewReader(contents))
	require.NoError(t, err)
	index, err := pageindex.BuildFromTable(table)
	require.NoError(t, err)
	return index
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	directory := t.TempDir()
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(directory, name), []byte(contents), 0o644))
	}
	return directory
}

const indexExport = `Address,Title 1,H1-1,Meta Description 1
https://example.test/,Home,Welcome,Homepage description
https://example.test/old,Indexed Old,Indexed Heading,Indexed description
https://example.test/about,About,About Us,About description
`

func TestNormalizeWithNoExportsProducesNothing(t *testing.T) {
	normalizer := issues.NewNormalizer(buildIndex(t, indexExport), nil)

	records := normalizer.Normalize(t.TempDir())

	require.Empty(t, records)
}

func TestNormalizePrefersRowContextForRedirects(t *testing.T) {
	directory := writeFiles(t, map[string]string{
		"response_codes_redirection_(3xx).csv": "Address,Redirect URL,Title 1,H1-1\nhttps://example.test/old,https://example.test/new,Row Title,Row Heading\n",
	})
	normalizer := issues.NewNormalizer(buildIndex(t, indexExport), nil)

	records := normalizer.Normalize(directory)

	require.Len(t, records, 1)
	record := records[0]
	require.Equal(t, issues.Redirect, record.Category)
	require.Equal(t, "https://example.test/old", record.Page)
	require.Equal(t, "https://example.test/new", record.Target)
	require.Equal(t, "Redirects to: https://example.test/new", record.Details)
	require.Equal(t, "Row Title", record.CurrentTitle)
	require.Equal(t, "Row Heading", record.CurrentH1)
	require.Equal(t, "Indexed description", record.CurrentMetaDescription)
}

func TestNormalizeForcesDefiningFieldEmpty(t *testing.T) {
	directory := writeFiles(t, map[string]string{
		"h1_missing.csv":               "Address,H1-1\nhttps://example.test/,Stale Heading\n",
		"page_titles_missing.csv":      "Address\nhttps://example.test/about\n",
		"meta_description_missing.csv": "Address\nhttps://example.test/\n",
	})
	normalizer := issues.NewNormalizer(buildIndex(t, indexExport), nil)

	records := normalizer.Normalize(directory)

	require.Len(t, records, 3)

	require.Equal(t, issues.MissingH1, records[0].Category)
	require.Equal(t, "", records[0].CurrentH1)
	require.Equal(t, "Home", records[0].CurrentTitle)

	require.Equal(t, issues.MissingTitle, records[1].Category)
	require.Equal(t, "", records[1].CurrentTitle)
	require.Equal(t, "About Us", records[1].CurrentH1)

	require.Equal(t, issues.MissingMetaDescription, records[2].Category)
	require.Equal(t, "", records[2].CurrentMetaDescription)
	require.Equal(t, "Welcome", records[2].CurrentH1)
}

func TestNormalizeJoinsReferringPageForBrokenLinks(t *testing.T) {
	directory := writeFiles(t, map[string]string{
		"response_codes_client_error_4xx.csv": "Address,Source,Title 1\nhttps://example.test/gone,https://example.test/about,Not Found Title\nhttps://example.test/lost,,\n",
	})
	normalizer := issues.NewNormalizer(buildIndex(t, indexExport), nil)

	records := normalizer.Normalize(directory)

	require.Len(t, records, 2)
	require.Equal(t, "https://example.test/about", records[0].Page)
	require.Equal(t, "Linked to: https://example.test/gone", records[0].Details)
	require.Equal(t, "About", records[0].CurrentTitle)
	require.Equal(t, "About description", records[0].CurrentMetaDescription)

	require.Equal(t, "See Inlinks Report", records[1].Page)
	require.Equal(t, "", records[1].CurrentTitle)
}

func TestNormalizeSkipsMalformedExportAndContinues(t *testing.T) {
	directory := writeFiles(t, map[string]string{
		"h1_missing.csv":         "Title 1\nNo address column\n",
		"canonicals_missing.csv": "Address\nhttps://example.test/\n",
	})
	normalizer := issues.NewNormalizer(nil, nil)

	records := normalizer.Normalize(directory)

	require.Len(t, records, 1)
	require.Equal(t, issues.MissingCanonical, records[0].Category)
	require.Equal(t, "", records[0].CurrentTitle)
}

func TestNormalizeSecurityHeadersAndNofollow(t *testing.T) {
	directory := writeFiles(t, map[string]string{
		"security_missing_hsts_header.csv":                    "Address\nhttps://example.test/\n",
		"security_missing_content-security-policy_header.csv": "Address\nhttps://example.test/about\n",
		"links_external.csv": "Source,Destination,Follow\n" +
			"https://example.test/,https://partner.test/,true\n" +
			"https://example.test/about,https://ads.test/,false\n",
	})
	normalizer := issues.NewNormalizer(buildIndex(t, indexExport), nil)

	records := normalizer.Normalize(directory)

	require.Len(t, records, 3)
	require.Equal(t, "Missing HSTS", records[0].Label())
	require.Equal(t, "Missing CSP", records[1].Label())
	require.Equal(t, issues.ContentSecurity, records[1].Header)
	require.Equal(t, issues.ExternalNofollow, records[2].Category)
	require.Equal(t, "https://example.test/about", records[2].Page)
	require.Equal(t, "Link to: https://ads.test/", records[2].Details)
}

func TestNormalizeMultipleHeadings(t *testing.T) {
	directory := writeFiles(t, map[string]string{
		"h1_multiple.csv": "Address,Occurrences,H1-1,H1-2\nhttps://example.test/,2,Welcome,Live Here\n",
	})
	normalizer := issues.NewNormalizer(buildIndex(t, indexExport), nil)

	records := normalizer.Normalize(directory)

	require.Len(t, records, 1)
	require.Equal(t, 2, records[0].HeadingCount)
	require.Equal(t, "H1 count: 2 (Welcome / Live Here)", records[0].Details)
	require.Equal(t, "Welcome", records[0].CurrentH1)
}

func TestLocatePrimaryExport(t *testing.T) {
	directory := writeFiles(t, map[string]string{"internal_html.csv": "Address\n"})
	require.Equal(t, filepath.Join(directory, "internal_html.csv"), issues.LocatePrimaryExport(directory))

	empty := t.TempDir()
	require.Equal(t, filepath.Join(empty, "internal_all.csv"), issues.LocatePrimaryExport(empty))
}
