package format

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// The deep-analysis text coming back from the intelligence endpoint is
// loosely markdown-shaped. Only a restricted subset is honoured:
// headings (levels 1-3), flat bullet lists, paragraphs, and bold or
// italic emphasis inside text. Tables, links, and nested lists render
// as plain text.

// NodeKind classifies a markdown block node.
type NodeKind int

const (
	NodeParagraph NodeKind = iota
	NodeHeading
	NodeList
)

// Span is a run of text with uniform emphasis.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
}

// Node is one block of parsed markdown.
type Node struct {
	Kind  NodeKind
	Level int    // heading level, 1-3
	Spans []Span // heading/paragraph content
	Items [][]Span
}

// ParseMarkdown converts text into a flat block tree. All content
// passes through EscapeText, so untrusted input cannot smuggle
// terminal escapes into the rendered surface.
func ParseMarkdown(text string) []Node {
	var nodes []Node
	var para []string
	var items [][]Span

	flushPara := func() {
		if len(para) > 0 {
			nodes = append(nodes, Node{Kind: NodeParagraph, Spans: parseSpans(strings.Join(para, " "))})
			para = nil
		}
	}
	flushList := func() {
		if len(items) > 0 {
			nodes = append(nodes, Node{Kind: NodeList, Items: items})
			items = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flushPara()
			flushList()
		case strings.HasPrefix(line, "#"):
			flushPara()
			flushList()
			level := 0
			for level < len(line) && line[level] == '#' && level < 3 {
				level++
			}
			body := strings.TrimSpace(strings.TrimLeft(line, "#"))
			nodes = append(nodes, Node{Kind: NodeHeading, Level: level, Spans: parseSpans(body)})
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			flushPara()
			items = append(items, parseSpans(strings.TrimSpace(line[2:])))
		default:
			flushList()
			para = append(para, line)
		}
	}
	flushPara()
	flushList()
	return nodes
}

// parseSpans splits **bold** and *italic* emphasis out of a line.
func parseSpans(s string) []Span {
	s = EscapeText(s)
	var spans []Span
	for s != "" {
		if strings.HasPrefix(s, "**") {
			if end := strings.Index(s[2:], "**"); end >= 0 {
				if end > 0 {
					spans = append(spans, Span{Text: s[2 : 2+end], Bold: true})
				}
				s = s[2+end+2:]
				continue
			}
		}
		if strings.HasPrefix(s, "*") && !strings.HasPrefix(s, "**") {
			if end := strings.Index(s[1:], "*"); end >= 0 {
				if end > 0 {
					spans = append(spans, Span{Text: s[1 : 1+end], Italic: true})
				}
				s = s[1+end+1:]
				continue
			}
		}
		next := len(s)
		if i := strings.IndexByte(s[1:], '*'); i >= 0 {
			next = i + 1
		}
		spans = append(spans, Span{Text: s[:next]})
		s = s[next:]
	}
	return spans
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	italicStyle  = lipgloss.NewStyle().Italic(true)
	bulletStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// RenderNodes renders a parsed block tree as styled terminal text,
// word-wrapped to width.
func RenderNodes(nodes []Node, width int) string {
	if width < 10 {
		width = 10
	}
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch n.Kind {
		case NodeHeading:
			b.WriteString(headingStyle.Render(wrap(plainText(n.Spans), width)))
		case NodeList:
			for j, item := range n.Items {
				if j > 0 {
					b.WriteString("\n")
				}
				b.WriteString(bulletStyle.Render("• "))
				wrapped := renderSpansWrapped(item, width-2)
				b.WriteString(strings.ReplaceAll(wrapped, "\n", "\n  "))
			}
		default:
			b.WriteString(renderSpansWrapped(n.Spans, width))
		}
	}
	return b.String()
}

func plainText(spans []Span) string {
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// renderSpansWrapped wraps the paragraph as plain text first, then
// re-applies emphasis per span. Emphasis spanning a wrap point keeps
// its style on both sides because each span is rendered whole.
func renderSpansWrapped(spans []Span, width int) string {
	var b strings.Builder
	col := 0
	for _, sp := range spans {
		for _, word := range strings.Fields(sp.Text) {
			if col > 0 && col+1+len([]rune(word)) > width {
				b.WriteString("\n")
				col = 0
			} else if col > 0 {
				b.WriteString(" ")
				col++
			}
			switch {
			case sp.Bold:
				b.WriteString(boldStyle.Render(word))
			case sp.Italic:
				b.WriteString(italicStyle.Render(word))
			default:
				b.WriteString(word)
			}
			col += len([]rune(word))
		}
	}
	return b.String()
}

// wrap breaks s into lines no longer than width.
func wrap(s string, width int) string {
	var b strings.Builder
	col := 0
	for _, word := range strings.Fields(s) {
		if col > 0 && col+1+len([]rune(word)) > width {
			b.WriteString("\n")
			col = 0
		} else if col > 0 {
			b.WriteString(" ")
			col++
		}
		b.WriteString(word)
		col += len([]rune(word))
	}
	return b.String()
}
