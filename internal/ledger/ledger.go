// Package ledger assembles the presentation-ready tables: the audit issue
// ledger and the two rewrite ledgers.
package ledger

import (
	"sort"

	"github.com/v0xg/seoaudit/internal/issues"
)

// AuditColumns is the fixed column order of the audit ledger.
var AuditColumns = []string{
	"Issue Type",
	"Page URL",
	"Current Title",
	"Current H1",
	"Current Meta Description",
	"Element/Details",
	"Suggested Fix",
}

// Ledger is the ordered set of audit records.
type Ledger struct {
	Records []issues.Record
}

// Assemble concatenates the given buckets and orders them by category
// declaration order. Within a category, input order is kept, so buckets
// passed in source order stay in source order. Nothing is deduplicated. A
// record that somehow has no suggestion receives its category default.
func Assemble(buckets ...[]issues.Record) Ledger {
	var records []issues.Record
	for _, bucket := range buckets {
		records = append(records, bucket...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Category < records[j].Category
	})

	for i := range records {
		if records[i].SuggestedFix == "" {
			records[i].SuggestedFix = records[i].DefaultFix()
		}
	}
	return Ledger{Records: records}
}

// Len returns the number of rows.
func (l Ledger) Len() int {
	return len(l.Records)
}

// Rows renders every record in AuditColumns order.
func (l Ledger) Rows() [][]string {
	rows := make([][]string, len(l.Records))
	for i, record := range l.Records {
		rows[i] = []string{
			record.Label(),
			record.Page,
			record.CurrentTitle,
			record.CurrentH1,
			record.CurrentMetaDescription,
			record.Details,
			record.SuggestedFix,
		}
	}
	return rows
}

// Counts returns the number of records per category.
func (l Ledger) Counts() map[issues.Category]int {
	counts := make(map[issues.Category]int)
	for _, record := range l.Records {
		counts[record.Category]++
	}
	return counts
}
