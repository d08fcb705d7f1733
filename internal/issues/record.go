package issues

import (
	"fmt"
	"strings"
)

// Record is one finding, enriched with page context and a suggested fix.
type Record struct {
	Category Category
	// Header is set only for SecurityHeaderMissing.
	Header SecurityHeader
	Page   string
	// Details is the free-text element description shown in the ledger.
	Details string
	// Target is the broken link, redirect destination, image or external link.
	Target       string
	HeadingCount int
	TitleLength  int

	CurrentTitle           string
	CurrentH1              string
	CurrentMetaDescription string

	SuggestedFix string
}

// Label is the issue type shown in the ledger.
func (r Record) Label() string {
	if r.Category == SecurityHeaderMissing && r.Header.Short != "" {
		return r.Header.Label()
	}
	return r.Category.Descriptor().Label
}

// DefaultFix is the category default, specialised for security headers.
func (r Record) DefaultFix() string {
	if r.Category == SecurityHeaderMissing && r.Header.Name != "" {
		return fmt.Sprintf("Add %s header", r.Header.Name)
	}
	return r.Category.DefaultFix()
}

// Listing renders the record as one line of a numbered prompt listing.
func (r Record) Listing() string {
	parts := []string{"Page: " + r.Page}
	if r.Category == SecurityHeaderMissing && r.Header.Name != "" {
		parts = append(parts, "Header: "+r.Header.Name)
	}
	if r.Details != "" {
		parts = append(parts, r.Details)
	}
	if r.CurrentTitle != "" {
		parts = append(parts, "Current title: "+r.CurrentTitle)
	}
	if r.CurrentH1 != "" {
		parts = append(parts, "Current H1: "+r.CurrentH1)
	}
	if r.CurrentMetaDescription != "" {
		parts = append(parts, "Current meta description: "+r.CurrentMetaDescription)
	}
	return strings.Join(parts, " | ")
}

func (r *Record) clear(field Field) {
	switch field {
	case TitleField:
		r.CurrentTitle = ""
	case H1Field:
		r.CurrentH1 = ""
	case MetaDescriptionField:
		r.CurrentMetaDescription = ""
	}
}
