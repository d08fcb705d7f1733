// Package issues turns the crawler's categorised exports into one issue
// record shape joined with the page index.
package issues

import "fmt"

// Category is a fixed audit-finding kind. Declaration order is ledger order.
type Category int

const (
	NotFound Category = iota
	Redirect
	MissingAlt
	MissingAltAttribute
	MissingH1
	MultipleH1
	MultipleH2
	MissingTitle
	ShortTitle
	MissingMetaDescription
	MissingCanonical
	SecurityHeaderMissing
	URLParameters
	ExternalNofollow
)

// Field names the page-context field a category forces empty.
type Field int

const (
	NoField Field = iota
	TitleField
	H1Field
	MetaDescriptionField
)

// Descriptor carries everything category-specific about suggestion
// generation and presentation.
type Descriptor struct {
	Slug          string
	Label         string
	DefaultFix    string
	ResponseField string
	Task          string
	ForcedEmpty   Field
	// Literal marks values that are identifiers such as URLs, not prose.
	Literal bool
}

var descriptors = [...]Descriptor{
	NotFound: {
		Slug:          "not_found",
		Label:         "404 Error",
		DefaultFix:    "Update link or remove",
		ResponseField: "fix",
		Task:          "Each item is a page that links to a URL returning 404. Recommend how to fix the broken link on that page (update to a relevant live URL, or remove it).",
	},
	Redirect: {
		Slug:          "redirect",
		Label:         "Redirect (3xx)",
		DefaultFix:    "Check if permanent/necessary",
		ResponseField: "action",
		Task:          "Each item is a URL that redirects. Recommend the action to take (keep as a 301, update internal links to the final destination, or remove the redirect chain).",
	},
	MissingAlt: {
		Slug:          "missing_alt",
		Label:         "Missing Alt",
		DefaultFix:    "Add descriptive alt text",
		ResponseField: "alt_text",
		Task:          "Each item is an image with empty alt text. Write concise, descriptive alt text (under 125 characters) based on the image file name and the page it appears on.",
	},
	MissingAltAttribute: {
		Slug:          "missing_alt_attribute",
		Label:         "Missing Alt Attribute",
		DefaultFix:    "Add alt attribute",
		ResponseField: "alt_text",
		Task:          "Each item is an image without an alt attribute. Write concise, descriptive alt text (under 125 characters) based on the image file name and the page it appears on.",
	},
	MissingH1: {
		Slug:          "missing_h1",
		Label:         "Missing H1",
		DefaultFix:    "Add H1 heading",
		ResponseField: "h1",
		Task:          "Each item is a page without an H1 heading. Write one H1 (under 70 characters) that matches the page's topic.",
		ForcedEmpty:   H1Field,
	},
	MultipleH1: {
		Slug:          "multiple_h1",
		Label:         "Multiple H1",
		DefaultFix:    "Use only one H1 per page",
		ResponseField: "h1",
		Task:          "Each item is a page with more than one H1. Write the single H1 the page should keep (under 70 characters).",
	},
	MultipleH2: {
		Slug:          "multiple_h2",
		Label:         "Multiple H2",
		DefaultFix:    "Review H2 hierarchy",
		ResponseField: "fix",
		Task:          "Each item is a page with many H2 headings. Recommend how to restructure the heading hierarchy in one sentence.",
	},
	MissingTitle: {
		Slug:          "missing_title",
		Label:         "Missing Page Title",
		DefaultFix:    "Add unique page title",
		ResponseField: "title",
		Task:          "Each item is a page without a title tag. Write a unique title tag (30-60 characters).",
		ForcedEmpty:   TitleField,
	},
	ShortTitle: {
		Slug:          "short_title",
		Label:         "Short Page Title",
		DefaultFix:    "Expand title (30-60 chars)",
		ResponseField: "title",
		Task:          "Each item is a page whose title tag is too short. Write an expanded title tag (30-60 characters) that keeps the original intent.",
	},
	MissingMetaDescription: {
		Slug:          "missing_meta_description",
		Label:         "Missing Meta Description",
		DefaultFix:    "Add meta description (150-160 chars)",
		ResponseField: "description",
		Task:          "Each item is a page without a meta description. Write a meta description (150-160 characters).",
		ForcedEmpty:   MetaDescriptionField,
	},
	MissingCanonical: {
		Slug:          "missing_canonical",
		Label:         "Missing Canonical",
		DefaultFix:    "Add self-referencing canonical",
		ResponseField: "canonical",
		Task:          "Each item is a page without a canonical link element. Give the canonical URL the page should declare (usually its own clean URL).",
		Literal:       true,
	},
	SecurityHeaderMissing: {
		Slug:          "security_header_missing",
		Label:         "Missing Security Header",
		DefaultFix:    "Add security header",
		ResponseField: "fix",
		Task:          "Each item is a page served without the named HTTP security header. Give the header and a safe recommended value to add.",
	},
	URLParameters: {
		Slug:          "url_parameters",
		Label:         "URL Parameters",
		DefaultFix:    "Check for duplicate content",
		ResponseField: "action",
		Task:          "Each item is a crawlable URL with query parameters. Recommend the action (canonicalise, block from crawling, or keep) to avoid duplicate content.",
	},
	ExternalNofollow: {
		Slug:          "external_nofollow",
		Label:         "External Nofollow",
		DefaultFix:    "Verify nofollow is intended",
		ResponseField: "action",
		Task:          "Each item is an external link marked nofollow. Recommend whether to keep nofollow, switch to sponsored/ugc, or make it followed.",
	},
}

// Categories returns every category in declaration order.
func Categories() []Category {
	categories := make([]Category, len(descriptors))
	for i := range descriptors {
		categories[i] = Category(i)
	}
	return categories
}

// Valid reports whether c is a declared category.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(descriptors)
}

// Descriptor returns the category's descriptor.
func (c Category) Descriptor() Descriptor {
	if !c.Valid() {
		return Descriptor{Slug: "unknown", Label: "Unknown", DefaultFix: "Review issue", ResponseField: "fix"}
	}
	return descriptors[c]
}

// DefaultFix returns the static suggestion used when no generated one exists.
func (c Category) DefaultFix() string {
	return c.Descriptor().DefaultFix
}

// ParseCategory resolves a category from its slug.
func ParseCategory(slug string) (Category, bool) {
	for i, descriptor := range descriptors {
		if descriptor.Slug == slug {
			return Category(i), true
		}
	}
	return 0, false
}

func (c Category) String() string {
	return c.Descriptor().Slug
}

// SecurityHeader names one of the HTTP response headers the crawler audits.
type SecurityHeader struct {
	Name  string
	Short string
}

// The security headers, in export order.
var (
	HSTS                = SecurityHeader{Name: "Strict-Transport-Security", Short: "HSTS"}
	XFrameOptions       = SecurityHeader{Name: "X-Frame-Options", Short: "X-Frame-Options"}
	XContentTypeOptions = SecurityHeader{Name: "X-Content-Type-Options", Short: "X-Content-Type-Options"}
	ReferrerPolicy      = SecurityHeader{Name: "Referrer-Policy", Short: "Referrer-Policy"}
	ContentSecurity     = SecurityHeader{Name: "Content-Security-Policy", Short: "CSP"}
)

// Label is the ledger label for a missing header.
func (h SecurityHeader) Label() string {
	return fmt.Sprintf("Missing %s", h.Short)
}
