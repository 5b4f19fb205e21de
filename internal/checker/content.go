package checker

import (
	"finder/pkg/domain"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Page is the decoded content of a fetched website.
type Page struct {
	// Body is the UTF-8 decoded HTML.
	Body string
	// Title is the trimmed text of the first <title> element.
	Title string
	// RefreshURL is the absolute target of a <meta http-equiv="refresh"> tag.
	RefreshURL string
}

// ParsePage extracts the title and meta refresh target from an HTML body.
// base resolves a relative refresh target and may be nil.
func ParsePage(body string, base *url.URL) Page {
	p := Page{Body: body}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return p
	}

	p.Title = strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(s.AttrOr("http-equiv", "")), "refresh") {
			return true
		}
		p.RefreshURL = refreshTarget(s.AttrOr("content", ""), base)

		return p.RefreshURL == ""
	})

	return p
}

// refreshTarget parses a refresh directive such as `0; url=https://example.com`.
func refreshTarget(content string, base *url.URL) string {
	_, after, found := strings.Cut(content, ";")
	if !found {
		return ""
	}
	after = strings.TrimSpace(after)
	if len(after) < 4 || !strings.EqualFold(after[:4], "url=") {
		return ""
	}
	target := strings.Trim(strings.TrimSpace(after[4:]), `'"`)
	if target == "" {
		return ""
	}

	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	return u.String()
}

// readPage reads at most limit bytes of the response body and decodes them to
// UTF-8 using the charset announced by the headers or the document itself.
func readPage(resp *http.Response, limit int64) (Page, error) {
	r, err := charset.NewReader(io.LimitReader(resp.Body, limit), resp.Header.Get("Content-Type"))
	if err != nil {
		return Page{}, fmt.Errorf("could not decode page charset: %w", err)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return Page{}, fmt.Errorf("could not read page body: %w", err)
	}

	var base *url.URL
	if resp.Request != nil {
		base = resp.Request.URL
	}

	return ParsePage(string(raw), base), nil
}

// Verdict is a content based classification.
type Verdict struct {
	Status domain.Status
	Reason string
}

// ContentAnalyzer looks for parking and under-construction signals in a page.
type ContentAnalyzer struct {
	parkingPhrases      []string
	constructionPhrases []string
	shortBodyThreshold  int
	domains             DomainClassifier
}

// NewContentAnalyzer builds an analyzer. The domain classifier is used to
// recognize meta refresh redirects to parking services.
func NewContentAnalyzer(parkingPhrases, constructionPhrases []string, shortBodyThreshold int,
	domains DomainClassifier) ContentAnalyzer {
	return ContentAnalyzer{
		parkingPhrases:      lowerAll(parkingPhrases),
		constructionPhrases: lowerAll(constructionPhrases),
		shortBodyThreshold:  shortBodyThreshold,
		domains:             domains,
	}
}

// Analyze returns a verdict and true when the page is a parking or
// placeholder page. Parking signals are checked first.
func (a ContentAnalyzer) Analyze(p Page) (Verdict, bool) {
	if p.Body == "" {
		return Verdict{}, false
	}
	lower := strings.ToLower(p.Body)

	for _, phrase := range a.parkingPhrases {
		if strings.Contains(lower, phrase) {
			return Verdict{
				Status: domain.StatusRedirectParking,
				Reason: "Content appears to be a parking/for-sale page",
			}, true
		}
	}

	if p.RefreshURL != "" && a.domains.IsParking(p.RefreshURL) {
		return Verdict{
			Status: domain.StatusRedirectParking,
			Reason: "Page refreshes to parking domain: " + Host(p.RefreshURL),
		}, true
	}

	if a.underConstruction(lower) {
		reason := "Website appears to be under construction"
		if p.Title != "" {
			reason += fmt.Sprintf(" (title: %q)", p.Title)
		}

		return Verdict{Status: domain.StatusUnderConstruction, Reason: reason}, true
	}

	return Verdict{}, false
}

// underConstruction applies the placeholder rule: a short page needs one
// distinct phrase, a long page needs two.
func (a ContentAnalyzer) underConstruction(lower string) bool {
	matches := 0
	for _, phrase := range a.constructionPhrases {
		if strings.Contains(lower, phrase) {
			matches++
		}
	}

	if matches >= 1 && utf8.RuneCountInString(lower) < a.shortBodyThreshold {
		return true
	}

	return matches >= 2
}
