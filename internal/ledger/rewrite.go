package ledger

import "unicode/utf8"

// MetadataColumns is the fixed column order of the metadata rewrite ledger.
var MetadataColumns = []string{
	"URL",
	"Target Keywords",
	"Current Title",
	"Current Title Length",
	"Proposed Title",
	"Proposed Title Length",
	"Current H1",
	"Current Meta Description",
	"Current Meta Description Length",
	"Proposed Meta Description",
	"Proposed Meta Description Length",
}

// MetadataRow is one page's title and meta description proposal.
type MetadataRow struct {
	URL                     string
	Keywords                string
	CurrentTitle            string
	ProposedTitle           string
	CurrentH1               string
	CurrentMetaDescription  string
	ProposedMetaDescription string
}

// Values renders the row in MetadataColumns order. Lengths are character counts.
func (r MetadataRow) Values() []any {
	return []any{
		r.URL,
		r.Keywords,
		r.CurrentTitle,
		utf8.RuneCountInString(r.CurrentTitle),
		r.ProposedTitle,
		utf8.RuneCountInString(r.ProposedTitle),
		r.CurrentH1,
		r.CurrentMetaDescription,
		utf8.RuneCountInString(r.CurrentMetaDescription),
		r.ProposedMetaDescription,
		utf8.RuneCountInString(r.ProposedMetaDescription),
	}
}

// OnPageRow is one page's on-page copy proposal.
type OnPageRow struct {
	URL                     string
	Keyword                 string
	CurrentTitle            string
	ProposedTitle           string
	CurrentH1               string
	ProposedH1              string
	CurrentMetaDescription  string
	ProposedMetaDescription string
	OriginalCopy            string
	ProposedCopy            string
}

// Block is one labelled line of an on-page recommendation.
type Block struct {
	Label string
	Value string
}

// Blocks renders the row as labelled lines. The copy lines are omitted when
// neither original nor proposed copy exists.
func (r OnPageRow) Blocks() []Block {
	blocks := []Block{
		{Label: "Web Page:", Value: r.URL},
		{Label: "Targeted Keyword:", Value: r.Keyword},
		{Label: "Current Title:", Value: r.CurrentTitle},
		{Label: "Proposed Title:", Value: r.ProposedTitle},
		{Label: "Current H1:", Value: r.CurrentH1},
		{Label: "Proposed H1:", Value: r.ProposedH1},
		{Label: "Current Meta Description:", Value: r.CurrentMetaDescription},
		{Label: "Proposed Meta Description:", Value: r.ProposedMetaDescription},
	}
	if r.OriginalCopy != "" || r.ProposedCopy != "" {
		blocks = append(blocks,
			Block{Label: "Original Copy:", Value: r.OriginalCopy},
			Block{Label: "Proposed Copy:", Value: r.ProposedCopy},
		)
	}
	return blocks
}

// KeywordMetric is one keyword's search volume and difficulty.
type KeywordMetric struct {
	Keyword    string
	Volume     int
	Difficulty float64
}

// KeywordColumns is the fixed column order of the keyword research table.
var KeywordColumns = []string{"Keyword", "Search Volume", "Keyword Difficulty"}

// Values renders the metric in KeywordColumns order.
func (m KeywordMetric) Values() []any {
	return []any{m.Keyword, m.Volume, m.Difficulty}
}
