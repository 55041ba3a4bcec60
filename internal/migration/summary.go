package migration

import (
	"strings"

	"golang.org/x/net/html"
)

// Summary is the one-line board digest of a block's HTML: what was worked on,
// the open issue, the memo, and checklist progress.
type Summary struct {
	TodayWork      string
	Issue          string
	Memo           string
	ChecklistTotal int
	ChecklistDone  int
}

// sectionKeywords routes heading text to a summary bucket. First matching
// keyword wins; a heading matching nothing closes the open bucket.
var sectionKeywords = []struct {
	bucket   string
	keywords []string
}{
	{bucket: "today", keywords: []string{"요청내용", "오늘의 업무"}},
	{bucket: "issue", keywords: []string{"이슈"}},
	{bucket: "memo", keywords: []string{"메모"}},
}

// checklist markers, both the bracket syntax and the rendered glyphs.
var (
	checklistMarkers = []string{"[ ]", "[x]", "☐", "☑"}
	checkedMarkers   = []string{"[x]", "☑"}
)

// Summarize extracts a board summary from block HTML. Top-level headings
// switch the accumulation bucket by keyword; following block text accumulates
// into the open bucket until the next heading. When no bucket collected
// anything for "today", the first paragraph or list item text is used.
func Summarize(rawHTML string) Summary {
	if strings.TrimSpace(rawHTML) == "" {
		return Summary{}
	}

	nodes, err := parseBodyFragment(rawHTML)
	if err != nil {
		return Summary{}
	}

	summary := Summary{}
	countChecklists(nodes, &summary)

	bucket := ""
	buckets := map[string][]string{}

	for _, node := range nodes {
		if node.Type != html.ElementNode {
			continue
		}
		text := strings.TrimSpace(nodeText(node))
		if text == "" {
			continue
		}
		if isHeading(node.Data) {
			bucket = bucketForHeading(text)
			continue
		}
		if bucket != "" {
			buckets[bucket] = append(buckets[bucket], text)
		}
	}

	summary.TodayWork = shortText(strings.Join(buckets["today"], " / "))
	summary.Issue = shortText(strings.Join(buckets["issue"], " / "))
	summary.Memo = shortText(strings.Join(buckets["memo"], " / "))

	if summary.TodayWork == "" {
		summary.TodayWork = shortText(firstBlockText(nodes))
	}
	if summary.ChecklistDone > summary.ChecklistTotal {
		summary.ChecklistDone = summary.ChecklistTotal
	}
	return summary
}

func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4":
		return true
	}
	return false
}

func bucketForHeading(text string) string {
	for _, section := range sectionKeywords {
		for _, keyword := range section.keywords {
			if strings.Contains(text, keyword) {
				return section.bucket
			}
		}
	}
	return ""
}

// countChecklists counts <li> entries carrying a checklist marker anywhere in
// the fragment, not just at the top level.
func countChecklists(nodes []*html.Node, summary *Summary) {
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "li" {
			text := nodeText(node)
			if containsAny(text, checklistMarkers) {
				summary.ChecklistTotal++
				if containsAny(text, checkedMarkers) {
					summary.ChecklistDone++
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range nodes {
		walk(node)
	}
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// firstBlockText finds the first paragraph or list item text in the fragment.
func firstBlockText(nodes []*html.Node) string {
	var found string
	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if node.Type == html.ElementNode && (node.Data == "p" || node.Data == "li") {
			if text := strings.TrimSpace(nodeText(node)); text != "" {
				found = text
				return true
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}
	for _, node := range nodes {
		if walk(node) {
			break
		}
	}
	return found
}

// shortText compacts whitespace and clips to 120 runes.
func shortText(raw string) string {
	compact := strings.Join(strings.Fields(raw), " ")
	runes := []rune(compact)
	if len(runes) > 120 {
		return string(runes[:120]) + "..."
	}
	return compact
}

// OneLine flattens line breaks and clips to the board's one-line length.
// The board uses it for issue/memo values carried verbatim in block payloads.
func OneLine(raw string) string {
	return shortText(strings.ReplaceAll(raw, "\n", " "))
}
