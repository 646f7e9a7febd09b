package scrape

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// DefaultMaxChars bounds cleaned page text so the combined corpus stays
// within the extraction prompt's context.
const DefaultMaxChars = 4000

// minContainerChars is the container text length below which the
// readability extractor is tried as well.
const minContainerChars = 200

// noiseSelector matches elements dropped before text extraction.
const noiseSelector = "script, style, nav, header, footer, iframe, noscript"

// containerSelectors are tried in order; the first match wins. Content divs
// match on the exact class or id token only: substring matches also hit
// banners and navigation such as "domain-notice" or "main-nav".
var containerSelectors = []string{
	"main",
	"article",
	"div.content, div#content",
}

// Clean strips markup noise from rawHTML and returns whitespace-normalized
// text truncated to maxChars characters. maxChars <= 0 uses DefaultMaxChars.
// pageURL is only used to resolve links for the readability fallback and may
// be empty.
func Clean(rawHTML, pageURL string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	doc.Find(noiseSelector).Remove()

	root, matched := contentRoot(doc)
	text := Normalize(root.Text())

	// A matched container with almost no text usually means the selector hit
	// a wrapper or teaser block while the article lives elsewhere.
	if matched && utf8.RuneCountInString(text) < minContainerChars &&
		utf8.RuneCountInString(Normalize(doc.Text())) >= 4*minContainerChars {
		if full, err := doc.Html(); err == nil {
			if alt := readabilityText(full, pageURL); utf8.RuneCountInString(alt) > utf8.RuneCountInString(text) {
				text = alt
			}
		}
	}
	return Truncate(text, maxChars)
}

func contentRoot(doc *goquery.Document) (*goquery.Selection, bool) {
	for _, sel := range containerSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found, true
		}
	}
	return doc.Selection, false
}

func readabilityText(rawHTML, pageURL string) string {
	rawHTML = strings.TrimSpace(rawHTML)
	if rawHTML == "" {
		return ""
	}
	parsed, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		parsed = &url.URL{Scheme: "https", Host: "localhost"}
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		return ""
	}
	return Normalize(article.TextContent)
}

// Normalize trims every line, splits lines on double-space boundaries, drops
// empty fragments and rejoins the rest with single spaces. Whitespace runs
// inside a fragment collapse to one space.
func Normalize(text string) string {
	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.Join(strings.Fields(phrase), " "); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, " ")
}

// Truncate returns the first maxChars characters of s. The cut is not
// sentence-aware.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
