package issues

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/v0xg/seoaudit/internal/pageindex"
	"github.com/v0xg/seoaudit/internal/tabular"
)

// PrimaryExportFiles are the accepted names of the "all internal pages" export.
var PrimaryExportFiles = []string{"internal_all.csv", "internal_html.csv"}

var (
	sourceColumns      = []string{"Source", "From"}
	imagePageColumns   = []string{"Source", "From", "Address", "URL", "Url"}
	destinationColumns = []string{"Destination", "To", "Address"}
	redirectColumns    = []string{"Redirect URL", "Redirect URI", "Redirect Destination"}
	followColumns      = []string{"Follow", "Link Follow"}
	h1CountColumns     = []string{"Occurrences", "H1 Count", "H1-1 Occurrences"}
	h2CountColumns     = []string{"Occurrences", "H2 Count", "H2-1 Occurrences"}
)

// Source describes one categorised export.
type Source struct {
	Category Category
	Header   SecurityHeader
	// Files are accepted file names; the first existing one wins.
	Files []string
	// Required lists column aliases of which at least one must be present.
	Required []string
	// Subject reports whether the export row describes the subject page
	// itself, in which case its own title/heading/description take precedence.
	Subject bool
	extract func(row tabular.Row) (Record, bool)
}

// Sources returns the fixed set of categorised exports in ledger order.
func Sources() []Source {
	return []Source{
		{
			Category: NotFound,
			Files:    []string{"response_codes_client_error_(4xx).csv", "response_codes_client_error_4xx.csv"},
			Required: pageindex.AddressColumns,
			extract: func(row tabular.Row) (Record, bool) {
				target := row.Get(pageindex.AddressColumns...)
				return Record{
					Page:    row.GetOr("See Inlinks Report", sourceColumns...),
					Target:  target,
					Details: "Linked to: " + target,
				}, target != ""
			},
		},
		{
			Category: Redirect,
			Files:    []string{"response_codes_redirection_(3xx).csv", "response_codes_redirection_3xx.csv"},
			Required: pageindex.AddressColumns,
			Subject:  true,
			extract: func(row tabular.Row) (Record, bool) {
				target := row.Get(redirectColumns...)
				return Record{
					Page:    row.Get(pageindex.AddressColumns...),
					Target:  target,
					Details: "Redirects to: " + target,
				}, true
			},
		},
		imageSource(MissingAlt, "images_missing_alt_text.csv"),
		imageSource(MissingAltAttribute, "images_missing_alt_attribute.csv"),
		{
			Category: MissingH1,
			Files:    []string{"h1_missing.csv"},
			Required: pageindex.AddressColumns,
			Subject:  true,
			extract:  addressOnly(""),
		},
		{
			Category: MultipleH1,
			Files:    []string{"h1_multiple.csv"},
			Required: pageindex.AddressColumns,
			Subject:  true,
			extract:  headingCount("H1", h1CountColumns, []string{"H1-1", "H1-2", "H1-3"}),
		},
		{
			Category: MultipleH2,
			Files:    []string{"h2_multiple.csv"},
			Required: pageindex.AddressColumns,
			Subject:  true,
			extract:  headingCount("H2", h2CountColumns, []string{"H2-1", "H2-2", "H2-3"}),
		},
		{
			Category: MissingTitle,
			Files:    []string{"page_titles_missing.csv"},
			Required: pageindex.AddressColumns,
			Subject:  true,
			extract:  addressOnly(""),
		},
		{
			Category: ShortTitle,
			Files:    []string{"page_titles_below_30_characters.csv", "page_titles_below_x_characters.csv"},
			Required: pageindex.AddressColumns,
			Subject:  true,
			extract: func(row tabular.Row) (Record, bool) {
				title := row.Get(pageindex.TitleColumns...)
				length := atoi(row.Get(pageindex.TitleLengthColumns...))
				if length == 0 {
					length = len([]rune(title))
				}
				return Record{
					Page:        row.Get(pageindex.AddressColumns...),
					TitleLength: length,
					Details:     fmt.Sprintf("Title: %s (%d chars)", title, length),
				}, true
			},
		},
		{
			Category: MissingMetaDescription,
			Files:    []string{"meta_description_missing.csv"},
			Required: pageindex.AddressColumns,
			Subject:  true,
			extract:  addressOnly(""),
		},
		{
			Category: MissingCanonical,
			Files:    []string{"canonicals_missing.csv"},
			Required: pageindex.AddressColumns,
			Subject:  true,
			extract:  addressOnly(""),
		},
		securitySource(HSTS, "security_missing_hsts_header.csv", "security_missing_hsts.csv"),
		securitySource(XFrameOptions, "security_missing_x-frame-options_header.csv"),
		securitySource(XContentTypeOptions, "security_missing_x-content-type-options_header.csv"),
		securitySource(ReferrerPolicy, "security_missing_secure_referrer-policy_header.csv"),
		securitySource(ContentSecurity, "security_missing_content-security-policy_header.csv"),
		{
			Category: URLParameters,
			Files:    []string{"url_parameters.csv"},
			Required: pageindex.AddressColumns,
			Subject:  true,
			extract:  addressOnly("Parameterised URL"),
		},
		{
			Category: ExternalNofollow,
			Files:    []string{"external_all.csv", "links_external.csv"},
			Required: followColumns,
			extract: func(row tabular.Row) (Record, bool) {
				if !isNofollow(row.Get(followColumns...)) {
					return Record{}, false
				}
				target := row.Get(destinationColumns...)
				return Record{
					Page:    row.Get(sourceColumns...),
					Target:  target,
					Details: "Link to: " + target,
				}, true
			},
		},
	}
}

func imageSource(category Category, file string) Source {
	return Source{
		Category: category,
		Files:    []string{file},
		Required: pageindex.AddressColumns,
		extract: func(row tabular.Row) (Record, bool) {
			image := row.Get(pageindex.AddressColumns...)
			return Record{
				Page:    row.Get(imagePageColumns...),
				Target:  image,
				Details: "Image: " + image,
			}, true
		},
	}
}

func securitySource(header SecurityHeader, files ...string) Source {
	return Source{
		Category: SecurityHeaderMissing,
		Header:   header,
		Files:    files,
		Required: pageindex.AddressColumns,
		Subject:  true,
		extract: func(row tabular.Row) (Record, bool) {
			return Record{
				Page:    row.Get(pageindex.AddressColumns...),
				Details: fmt.Sprintf("Missing %s header", header.Name),
			}, true
		},
	}
}

func addressOnly(details string) func(row tabular.Row) (Record, bool) {
	return func(row tabular.Row) (Record, bool) {
		return Record{Page: row.Get(pageindex.AddressColumns...), Details: details}, true
	}
}

func headingCount(tag string, countColumns []string, headingColumns []string) func(row tabular.Row) (Record, bool) {
	return func(row tabular.Row) (Record, bool) {
		var headings []string
		for _, column := range headingColumns {
			if heading := row.Get(column); heading != "" {
				headings = append(headings, heading)
			}
		}
		count := atoi(row.Get(countColumns...))
		if count == 0 {
			count = len(headings)
		}
		details := fmt.Sprintf("%s count: %d", tag, count)
		if len(headings) > 0 {
			details += " (" + strings.Join(headings, " / ") + ")"
		}
		return Record{
			Page:         row.Get(pageindex.AddressColumns...),
			HeadingCount: count,
			Details:      details,
		}, true
	}
}

func isNofollow(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "false", "0", "no", "nofollow":
		return true
	}
	return false
}

func atoi(value string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(value), ".0"))
	if err != nil {
		return 0
	}
	return n
}
