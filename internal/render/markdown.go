// Package render turns model replies into a small, safe subset of HTML.
package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const blockSeparator = "<br><br>"

var (
	parser = goldmark.New().Parser()
	policy = bluemonday.NewPolicy().AllowElements("strong", "em", "code", "ul", "ol", "li", "br")
)

// Markdown renders src using only strong, em, code, ul, ol, li and br.
// Every other construct (links, images, raw HTML) is emitted as escaped text.
func Markdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	source := []byte(src)
	doc := parser.Parse(text.NewReader(source))

	r := &renderer{src: source}
	out := r.blocks(doc, blockSeparator)
	return policy.Sanitize(out)
}

type renderer struct {
	src []byte
}

// blocks renders each child block and joins them with sep
func (r *renderer) blocks(node ast.Node, sep string) string {
	var parts []string
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		var b strings.Builder
		r.renderNode(&b, child)
		if s := strings.TrimSuffix(b.String(), "<br>"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func (r *renderer) renderNode(w *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.Heading:
		w.WriteString("<strong>")
		r.renderChildren(w, n)
		w.WriteString("</strong>")

	case *ast.ThematicBreak:
		w.WriteString("---")

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.WriteString("<code>")
		r.writeLines(w, n)
		w.WriteString("</code>")

	case *ast.HTMLBlock:
		r.writeLines(w, n)

	case *ast.List:
		tag := "ul"
		if n.IsOrdered() {
			tag = "ol"
		}
		w.WriteString("<" + tag + ">")
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			w.WriteString("<li>")
			w.WriteString(r.blocks(item, "<br>"))
			w.WriteString("</li>")
		}
		w.WriteString("</" + tag + ">")

	case *ast.Text:
		w.WriteString(html.EscapeString(string(n.Segment.Value(r.src))))
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.WriteString("<br>")
		}

	case *ast.String:
		w.WriteString(html.EscapeString(string(n.Value)))

	case *ast.CodeSpan:
		w.WriteString("<code>")
		r.renderPlain(w, n)
		w.WriteString("</code>")

	case *ast.Emphasis:
		tag := "em"
		if n.Level == 2 {
			tag = "strong"
		}
		w.WriteString("<" + tag + ">")
		r.renderChildren(w, n)
		w.WriteString("</" + tag + ">")

	case *ast.AutoLink:
		w.WriteString(html.EscapeString(string(n.URL(r.src))))

	case *ast.RawHTML:
		segs := n.Segments
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			w.WriteString(html.EscapeString(string(seg.Value(r.src))))
		}

	default:
		// Paragraphs, links, images and unknown nodes keep only their text
		r.renderChildren(w, node)
	}
}

func (r *renderer) renderChildren(w *strings.Builder, node ast.Node) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		r.renderNode(w, child)
	}
}

func (r *renderer) renderPlain(w *strings.Builder, node ast.Node) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			w.WriteString(html.EscapeString(string(t.Segment.Value(r.src))))
		} else {
			r.renderPlain(w, child)
		}
	}
}

func (r *renderer) writeLines(w *strings.Builder, node ast.Node) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		value := strings.TrimRight(string(line.Value(r.src)), "\n")
		if i > 0 {
			w.WriteString("<br>")
		}
		w.WriteString(html.EscapeString(value))
	}
}

// Escape renders visitor text: escaped, with line breaks kept
func Escape(src string) string {
	lines := strings.Split(strings.TrimSpace(src), "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}
	return strings.Join(lines, "<br>")
}
