package migration

import (
	"regexp"
	"strings"
)

// The legacy export writes a restricted Markdown dialect: ATX headings up to
// level 3, dash/glyph bullets, bracket checklists, fenced code, horizontal
// rules, single-line image references, and two inline code delimiters
// (backtick and ₩). RenderMarkdown covers exactly that dialect; it is not a
// general Markdown implementation.

var (
	markdownImagePattern = regexp.MustCompile(`^!\[[^\]]*\]\(([^)]+)\)$`)
	wonCodePattern       = regexp.MustCompile(`₩([^₩]{1,200})₩`)
	backtickCodePattern  = regexp.MustCompile("`([^`]{1,300})`")
	dashRulePattern      = regexp.MustCompile(`^-{3,}$`)
)

// bulletPrefixes are the non-standard list markers seen in legacy exports, in
// addition to the plain "- " dash.
var bulletPrefixes = []string{"- ", "▪️", "🔸"}

// RenderMarkdown converts legacy-dialect Markdown to HTML. It runs a single
// pass over the lines, tracking open list and code-block state.
func RenderMarkdown(markdown string) string {
	var html strings.Builder
	inCode := false
	inList := false

	closeList := func() {
		if inList {
			html.WriteString("</ul>")
			inList = false
		}
	}
	openList := func() {
		if !inList {
			html.WriteString("<ul>")
			inList = true
		}
	}

	for _, raw := range splitLines(markdown) {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "```") {
			closeList()
			if !inCode {
				html.WriteString("<pre><code>")
			} else {
				html.WriteString("</code></pre>")
			}
			inCode = !inCode
			continue
		}
		if inCode {
			// Code lines keep their original, untrimmed content.
			html.WriteString(escapeHTML(raw))
			html.WriteString("\n")
			continue
		}
		if line == "" {
			closeList()
			continue
		}
		if dashRulePattern.MatchString(line) {
			closeList()
			html.WriteString("<hr />")
			continue
		}
		if body, ok := strings.CutPrefix(line, "# "); ok {
			closeList()
			html.WriteString("<h1>" + renderInline(strings.TrimSpace(body)) + "</h1>")
			continue
		}
		if body, ok := strings.CutPrefix(line, "## "); ok {
			closeList()
			html.WriteString("<h2>" + renderInline(strings.TrimSpace(body)) + "</h2>")
			continue
		}
		if body, ok := strings.CutPrefix(line, "### "); ok {
			closeList()
			html.WriteString("<h3>" + renderInline(strings.TrimSpace(body)) + "</h3>")
			continue
		}
		if strings.HasPrefix(line, "- [ ] ") || strings.HasPrefix(line, "- [x] ") {
			openList()
			glyph := "☐ "
			if strings.HasPrefix(line, "- [x] ") {
				glyph = "☑ "
			}
			body := strings.TrimSpace(line[len("- [x] "):])
			html.WriteString("<li>" + glyph + renderInline(body) + "</li>")
			continue
		}
		if prefix, ok := bulletPrefix(line); ok {
			openList()
			body := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			html.WriteString("<li>" + renderInline(body) + "</li>")
			continue
		}
		if m := markdownImagePattern.FindStringSubmatch(line); m != nil {
			closeList()
			src := escapeHTML(strings.TrimSpace(m[1]))
			html.WriteString(`<p><img src="` + src + `" alt="image" /></p>`)
			continue
		}
		closeList()
		html.WriteString("<p>" + renderInline(line) + "</p>")
	}

	if inList {
		html.WriteString("</ul>")
	}
	if inCode {
		html.WriteString("</code></pre>")
	}
	return html.String()
}

func bulletPrefix(line string) (string, bool) {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(line, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// renderInline escapes the line, then replaces ₩- and backtick-delimited
// spans with <code>. The span lengths are bounded to keep pathological input
// from matching across the whole document.
func renderInline(raw string) string {
	escaped := escapeHTML(raw)
	escaped = wonCodePattern.ReplaceAllString(escaped, "<code>$1</code>")
	return backtickCodePattern.ReplaceAllString(escaped, "<code>$1</code>")
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(raw string) string {
	return htmlEscaper.Replace(raw)
}

// splitLines splits on \r\n, \r, or \n, matching the flexible line-break
// handling of the legacy importer.
func splitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}
