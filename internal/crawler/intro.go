package crawler

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minIntroWords filters out captions, buttons and cookie notices.
const minIntroWords = 12

// ErrNoIntro is returned when a document has no substantive paragraph.
var ErrNoIntro = errors.New("no introductory paragraph found")

// ExtractIntro returns the first paragraph of the main content with at least
// minIntroWords words. Navigation, header, footer and form chrome are skipped.
func ExtractIntro(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, nav, header, footer, form, aside").Remove()

	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var intro string
	root.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(strings.Fields(text)) < minIntroWords {
			return true
		}
		intro = text
		return false
	})

	if intro == "" {
		return "", ErrNoIntro
	}
	return intro, nil
}
