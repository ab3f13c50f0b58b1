package parsing

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jonathan/page-digest/internal/types"
	"github.com/tidwall/gjson"
)

// Parse normalizes raw model output into a summary. It never fails: input
// that matches no known shape becomes the overview. Shapes are tried in order:
//
//  1. a JSON object, located between the first '{' and the last '}'
//  2. labelled lines (Title:, Highlights:, Summary: or their Chinese forms)
//  3. free text
func Parse(raw types.RawModelOutput) types.NormalizedSummary {
	text := StripFences(raw)
	if text == "" {
		return emptySummary()
	}

	if span := JSONSpan(text); span != "" {
		if parsed := gjson.Parse(span); gjson.Valid(span) && parsed.IsObject() {
			return fromJSON(parsed)
		}
		return types.NormalizedSummary{Overview: text, KeyPoints: []string{}}
	}

	if summary, ok := parseLabelled(text); ok {
		return summary
	}
	return types.NormalizedSummary{Overview: text, KeyPoints: []string{}}
}

// ParseObject normalizes an already-decoded summary object using the same
// field priority as Parse. Use it when the summary arrives as structured
// data, such as a decoded API payload, rather than as raw model text.
func ParseObject(obj map[string]any) types.NormalizedSummary {
	if len(obj) == 0 {
		return emptySummary()
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return emptySummary()
	}
	return fromJSON(gjson.ParseBytes(data))
}

func emptySummary() types.NormalizedSummary {
	return types.NormalizedSummary{KeyPoints: []string{}}
}

// fromJSON reads overview (or content), key_points (or highlights) and title.
func fromJSON(obj gjson.Result) types.NormalizedSummary {
	summary := emptySummary()

	if title := obj.Get("title"); truthy(title) {
		summary.Title = title.String()
	}
	for _, key := range []string{"overview", "content"} {
		if v := obj.Get(key); truthy(v) {
			summary.Overview = v.String()
			break
		}
	}

	points := obj.Get("key_points")
	if !points.IsArray() {
		points = obj.Get("highlights")
	}
	if points.IsArray() {
		for _, item := range points.Array() {
			summary.KeyPoints = append(summary.KeyPoints, item.String())
		}
	}
	return summary
}

// truthy reports whether a JSON value carries something worth keeping.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return v.Exists()
	}
}

var (
	labelPattern  = regexp.MustCompile(`(?i)^(title|highlights|summary|标题|要点|总结)\s*[:：]\s*(.*)$`)
	bulletPattern = regexp.MustCompile(`^(?:[-*•·]|\d+[.、)）])\s*`)
)

const (
	sectionTitle      = "title"
	sectionHighlights = "highlights"
	sectionSummary    = "summary"
)

func sectionFor(label string) string {
	switch strings.ToLower(label) {
	case "title", "标题":
		return sectionTitle
	case "highlights", "要点":
		return sectionHighlights
	default:
		return sectionSummary
	}
}

// parseLabelled reads the older line-oriented output. Unlabelled lines extend
// the current highlights or summary section. It reports false when no label
// is present.
func parseLabelled(text string) (types.NormalizedSummary, bool) {
	summary := emptySummary()
	var overview []string
	section := ""
	found := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := labelPattern.FindStringSubmatch(line); m != nil {
			found = true
			section = sectionFor(m[1])
			rest := strings.TrimSpace(m[2])
			switch section {
			case sectionTitle:
				summary.Title = rest
			case sectionHighlights:
				if point := stripBullet(rest); point != "" {
					summary.KeyPoints = append(summary.KeyPoints, point)
				}
			case sectionSummary:
				if rest != "" {
					overview = append(overview, rest)
				}
			}
			continue
		}

		switch section {
		case sectionHighlights:
			if point := stripBullet(line); point != "" {
				summary.KeyPoints = append(summary.KeyPoints, point)
			}
		case sectionSummary:
			overview = append(overview, line)
		}
	}

	if !found {
		return types.NormalizedSummary{}, false
	}
	summary.Overview = strings.Join(overview, "\n")
	return summary, true
}

func stripBullet(line string) string {
	return strings.TrimSpace(bulletPattern.ReplaceAllString(line, ""))
}
