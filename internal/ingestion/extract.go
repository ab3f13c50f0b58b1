package ingestion

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/page-digest/internal/types"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Extraction thresholds, all measured in runes.
const (
	minSelectorTextLength  = 100
	minCandidateTextLength = 200
	minFragmentLength      = 5
	minExtractedLength     = 500
	minBodyLineLength      = 10
	fallbackContentLength  = 5000
)

// contentSelectors are tried in order. The first match whose text is long
// enough becomes the content container.
var contentSelectors = []string{
	"article",
	`[role="main"]`,
	".content",
	".post-content",
	".article-content",
	".entry-content",
	".post-body",
	".article-body",
	".main-content",
	".page-content",
	".story-content",
	".text-content",
	".body-content",
	".content-area",
	".content-wrapper",
	".main",
	".main-area",
	".primary-content",
	".primary",
	".container",
	".wrapper",
}

// noiseMarkers flag page chrome when found in an element's class or id.
var noiseMarkers = []string{"nav", "footer", "sidebar", "header"}

// ExtractFromHTML parses raw HTML and extracts its readable content.
func ExtractFromHTML(htmlContent, pageURL string) (types.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return types.PageContent{}, &ExtractionError{Message: "failed to parse HTML", Cause: err}
	}
	return Extract(doc, pageURL), nil
}

// Extract pulls the title and main readable text out of a parsed document.
// It never fails: on any internal error it falls back to the leading body text.
func Extract(doc *goquery.Document, pageURL string) (page types.PageContent) {
	title := documentTitle(doc)

	defer func() {
		if r := recover(); r != nil {
			page = fallbackContent(doc, title, pageURL)
		}
	}()

	container := findMainContent(doc)
	content := strings.Join(textFragments(container), "\n\n")
	if RuneLen(content) < minExtractedLength {
		content = bodyLines(doc)
	}

	return types.PageContent{
		Title:   title,
		URL:     pageURL,
		Content: Truncate(CollapseWhitespace(content), MaxContentLength),
	}
}

func documentTitle(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	return CollapseWhitespace(doc.Find("title").First().Text())
}

// findMainContent picks the element most likely to hold the page's content.
func findMainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if RuneLen(strings.TrimSpace(sel.Text())) > minSelectorTextLength {
			return sel
		}
	}

	var best *goquery.Selection
	bestLen := 0
	doc.Find("div, section, main, article").Each(func(_ int, s *goquery.Selection) {
		if hasNoiseMarker(s.Get(0)) {
			return
		}
		n := RuneLen(strings.TrimSpace(s.Text()))
		if n > bestLen && n > minCandidateTextLength {
			bestLen = n
			best = s
		}
	})
	if best != nil {
		return best
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return doc.Selection
	}
	return body
}

// textFragments collects trimmed text nodes under the container, skipping
// scripts, styles and page chrome.
func textFragments(container *goquery.Selection) []string {
	var fragments []string
	for _, root := range container.Nodes {
		walkText(root, func(n *html.Node) {
			if skipTextNode(n) {
				return
			}
			text := strings.TrimSpace(n.Data)
			if RuneLen(text) > minFragmentLength {
				fragments = append(fragments, text)
			}
		})
	}
	return fragments
}

func walkText(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.TextNode {
		visit(n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, visit)
	}
}

func skipTextNode(n *html.Node) bool {
	parent := n.Parent
	if parent == nil || parent.Type != html.ElementNode {
		return false
	}
	switch parent.DataAtom {
	case atom.Script, atom.Style:
		return true
	}
	return hasNoiseMarker(parent)
}

func hasNoiseMarker(n *html.Node) bool {
	if n == nil {
		return false
	}
	var class, id string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "class":
			class = strings.ToLower(attr.Val)
		case "id":
			id = strings.ToLower(attr.Val)
		}
	}
	for _, marker := range noiseMarkers {
		if strings.Contains(class, marker) || strings.Contains(id, marker) {
			return true
		}
	}
	return false
}

// bodyLines keeps the body text lines that are long enough to be prose.
func bodyLines(doc *goquery.Document) string {
	bodyText := strings.TrimSpace(doc.Find("body").Text())
	var kept []string
	for _, line := range strings.Split(bodyText, "\n") {
		if RuneLen(strings.TrimSpace(line)) > minBodyLineLength {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n\n")
}

func fallbackContent(doc *goquery.Document, title, pageURL string) types.PageContent {
	page := types.PageContent{Title: title, URL: pageURL}
	if doc == nil {
		return page
	}
	page.Content = Prefix(strings.TrimSpace(doc.Find("body").Text()), fallbackContentLength)
	return page
}
