package migration

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// relaxedPolicy mirrors the relaxed text-formatting allowlist the rest of the
// system expects in block HTML, plus <hr> which the merge separator uses.
var relaxedPolicy = newRelaxedPolicy()

func newRelaxedPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"a", "b", "blockquote", "br", "caption", "cite", "code", "col",
		"colgroup", "dd", "div", "dl", "dt", "em", "h1", "h2", "h3", "h4",
		"h5", "h6", "hr", "i", "img", "li", "ol", "p", "pre", "q", "small",
		"span", "strike", "strong", "sub", "sup", "table", "tbody", "td",
		"tfoot", "th", "thead", "tr", "u", "ul",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt", "title", "height", "width", "align").OnElements("img")
	p.AllowAttrs("cite").OnElements("blockquote", "q")
	p.AllowAttrs("span", "width").OnElements("col", "colgroup")
	p.AllowAttrs("abbr", "axis", "colspan", "rowspan", "width").OnElements("td", "th")
	p.AllowAttrs("summary", "width").OnElements("table")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(true)
	return p
}

// SanitizeHTML reduces externally authored HTML (full documents included) to
// the body markup restricted to the safe allowlist.
func SanitizeHTML(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return relaxedPolicy.Sanitize(raw)
	}

	body := findElement(doc, atom.Body)
	if body == nil {
		return relaxedPolicy.Sanitize(raw)
	}

	var buf bytes.Buffer
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		_ = html.Render(&buf, child)
	}
	return relaxedPolicy.Sanitize(buf.String())
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, a); found != nil {
			return found
		}
	}
	return nil
}

// parseBodyFragment parses already-sanitized block HTML into nodes for
// structural inspection or rewriting.
func parseBodyFragment(raw string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(raw), context)
}

func renderNodes(nodes []*html.Node) string {
	var buf bytes.Buffer
	for _, node := range nodes {
		_ = html.Render(&buf, node)
	}
	return buf.String()
}

// nodeText concatenates all text content under a node, whitespace-joined the
// way the board summary expects.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if trimmed := strings.TrimSpace(node.Data); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
