package rendering

import (
	"fmt"
	"strings"

	"github.com/jonathan/page-digest/internal/types"
)

// Format selects the webhook message type.
type Format string

const (
	// FormatText sends one plain text block.
	FormatText Format = types.MsgTypeText
	// FormatPost sends a rich text post with one paragraph per line.
	FormatPost Format = types.MsgTypePost
)

// Locale selects the labels and the post locale key.
type Locale string

const (
	// LocaleChinese uses Chinese labels.
	LocaleChinese Locale = "zh_cn"
	// LocaleEnglish uses English labels.
	LocaleEnglish Locale = "en_us"
)

// KeyPointCount is the number of key point lines in every message.
const KeyPointCount = 3

// Options configures message assembly.
type Options struct {
	Format Format
	Locale Locale
}

// DefaultOptions returns a Chinese text message.
func DefaultOptions() Options {
	return Options{Format: FormatText, Locale: LocaleChinese}
}

// ParseFormat validates a format name. An empty name selects FormatText.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatPost:
		return FormatPost, nil
	default:
		return "", fmt.Errorf("unsupported message format %q (want text or post)", name)
	}
}

// ParseLocale validates a locale name. An empty name selects LocaleChinese.
func ParseLocale(name string) (Locale, error) {
	switch Locale(strings.ToLower(strings.TrimSpace(name))) {
	case "", LocaleChinese, "zh":
		return LocaleChinese, nil
	case LocaleEnglish, "en":
		return LocaleEnglish, nil
	default:
		return "", fmt.Errorf("unsupported locale %q (want zh_cn or en_us)", name)
	}
}

type labelSet struct {
	title1, title2, overview, keyPoints, link string
	noTitle1, noTitle2, noOverview, noPoint   string
}

var labels = map[Locale]labelSet{
	LocaleChinese: {
		title1:     "标题1：",
		title2:     "标题2：",
		overview:   "导读：",
		keyPoints:  "要点：",
		link:       "链接：",
		noTitle1:   "标题1",
		noTitle2:   "标题2",
		noOverview: "暂无导读",
		noPoint:    "暂无要点",
	},
	LocaleEnglish: {
		title1:     "Title 1: ",
		title2:     "Title 2: ",
		overview:   "Overview: ",
		keyPoints:  "Key points:",
		link:       "Link: ",
		noTitle1:   "Title 1",
		noTitle2:   "Title 2",
		noOverview: "No summary available",
		noPoint:    "No point available",
	},
}

func labelsFor(locale Locale) labelSet {
	if l, ok := labels[locale]; ok {
		return l
	}
	return labels[LocaleChinese]
}

// Assemble builds the webhook message from the summary, the headline
// candidates and the page. Missing values get placeholder text; nothing
// else is invented.
func Assemble(summary types.NormalizedSummary, titles types.AtmosphereTitles, page types.PageContent, opts Options) types.OutboundMessage {
	l := labelsFor(opts.Locale)

	clean := strings.TrimSpace
	if opts.Format == FormatPost {
		clean = func(s string) string { return strings.TrimSpace(PlainText(s)) }
	}

	title1 := orDefault(clean(titleAt(titles, 0)), l.noTitle1)
	title2 := orDefault(clean(titleAt(titles, 1)), l.noTitle2)
	overview := orDefault(clean(summary.Overview), l.noOverview)

	body := []string{
		l.title1 + title1,
		l.title2 + title2,
		"",
		l.overview + overview,
		"",
		l.keyPoints,
	}
	for i, point := range keyPoints(summary.KeyPoints, clean) {
		body = append(body, fmt.Sprintf("%d. %s", i+1, orDefault(point, l.noPoint)))
	}

	if opts.Format == FormatPost {
		return postMessage(title1, body, l.link, page.URL, opts.Locale)
	}

	lines := append(body, "", l.link+page.URL)
	return types.OutboundMessage{
		MsgType: types.MsgTypeText,
		Content: types.MessageContent{Text: strings.Join(lines, "\n")},
	}
}

// keyPoints cleans the points, drops empty ones, then pads or cuts the list
// to exactly KeyPointCount entries.
func keyPoints(points []string, clean func(string) string) []string {
	kept := make([]string, 0, KeyPointCount)
	for _, p := range points {
		if p = clean(p); p != "" {
			kept = append(kept, p)
		}
	}
	for len(kept) < KeyPointCount {
		kept = append(kept, "")
	}
	return kept[:KeyPointCount]
}

func postMessage(title string, body []string, linkLabel, url string, locale Locale) types.OutboundMessage {
	if _, ok := labels[locale]; !ok {
		locale = LocaleChinese
	}

	paragraphs := make([][]types.PostElement, 0, len(body)+1)
	for _, line := range body {
		if strings.TrimSpace(line) == "" {
			continue
		}
		paragraphs = append(paragraphs, []types.PostElement{textElement(line)})
	}

	link := []types.PostElement{textElement(linkLabel)}
	if url != "" {
		link = append(link, types.PostElement{Tag: types.TagLink, Text: url, Href: url})
	}
	paragraphs = append(paragraphs, link)

	return types.OutboundMessage{
		MsgType: types.MsgTypePost,
		Content: types.MessageContent{
			Post: map[string]types.PostBody{
				string(locale): {Title: title, Content: paragraphs},
			},
		},
	}
}

func textElement(text string) types.PostElement {
	return types.PostElement{Tag: types.TagText, Text: text, UnEscape: true}
}

func titleAt(titles types.AtmosphereTitles, i int) string {
	if i < len(titles) {
		return titles[i]
	}
	return ""
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
