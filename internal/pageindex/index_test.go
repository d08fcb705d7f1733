package pageindex_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v0xg/seoaudit/internal/pageindex"
)

const internalAll = `Address,Content Type,Status Code,Indexability,Title 1,Title 1 Length,Meta Description 1,Meta Description 1 Length,H1-1,H2-1,Canonical Link Element 1,Word Count
https://example.test/,text/html; charset=UTF-8,200,Indexable,Home,4,Welcome home,12,Welcome,Amenities,https://example.test/,350
https://example.test/floor-plans,text/html; charset=UTF-8,200,Indexable,Floor Plans,11,,,,,,120
https://example.test/logo.png,image/png,200,Indexable,,,,,,,,
https://example.test/,text/html,200,Indexable,Duplicate,9,,,,,,
`

func writeExport(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "internal_all.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestBuildIndexesPagesInExportOrder(t *testing.T) {
	index := pageindex.Build(writeExport(t, internalAll), nil)

	require.Equal(t, 3, index.Len())
	require.True(t, index.HasStatusColumn())
	require.True(t, index.HasContentTypeColumn())

	home, ok := index.Lookup("https://example.test/")
	require.True(t, ok)
	require.Equal(t, "Home", home.Title)
	require.Equal(t, "Welcome home", home.MetaDescription)
	require.Equal(t, "Welcome", home.H1)
	require.Equal(t, "Amenities", home.H2)
	require.Equal(t, "350", home.WordCount)
	require.Equal(t, 200, home.Status())
	require.True(t, home.IsHTML())

	plans, ok := index.Lookup("https://example.test/floor-plans")
	require.True(t, ok)
	require.Equal(t, "", plans.H1)

	_, ok = index.Lookup("https://example.test/missing")
	require.False(t, ok)

	pages := index.Pages()
	require.Equal(t, "https://example.test/", pages[0].Address)
	require.Equal(t, "https://example.test/floor-plans", pages[1].Address)
	require.False(t, pages[2].IsHTML())
}

func TestBuildIsIdempotent(t *testing.T) {
	path := writeExport(t, internalAll)

	first := pageindex.Build(path, nil)
	second := pageindex.Build(path, nil)

	require.Equal(t, first, second)
}

func TestBuildFallsBackToLegacyAliases(t *testing.T) {
	index := pageindex.Build(writeExport(t, "URL,Page Title,H1\nhttps://legacy.test/,Legacy,Heading\n"), nil)

	attributes, ok := index.Lookup("https://legacy.test/")
	require.True(t, ok)
	require.Equal(t, "Legacy", attributes.Title)
	require.Equal(t, "Heading", attributes.H1)
	require.False(t, index.HasStatusColumn())
}

func TestBuildNeverFails(t *testing.T) {
	testCases := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing_file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "internal_all.csv") },
		},
		{
			name: "no_address_column",
			path: func(t *testing.T) string { return writeExport(t, "Title 1,H1-1\nHome,Welcome\n") },
		},
		{
			name: "empty_file",
			path: func(t *testing.T) string { return writeExport(t, "") },
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			index := pageindex.Build(testCase.path(t), nil)
			require.Equal(t, 0, index.Len())
			_, ok := index.Lookup("https://example.test/")
			require.False(t, ok)
		})
	}
}
