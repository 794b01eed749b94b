package display

import (
	"html"
	"io"
	"strconv"
	"strings"
)

// HTML renders display nodes as an HTML fragment. All text is escaped; the
// class names are the only styling hooks.
func HTML(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case BlockParagraph:
			b.WriteString(`<p class="telemetry-line">`)
			writeInlineHTML(&b, n.Content)
			b.WriteString("</p>")
		case BlockHeading:
			lvl := strconv.Itoa(n.Level)
			b.WriteString(`<h` + lvl + ` class="telemetry-h` + lvl + `">`)
			writeInlineHTML(&b, n.Content)
			b.WriteString("</h" + lvl + ">")
		case BlockTable:
			writeTableHTML(&b, n.Table)
		}
	}
	return b.String()
}

// WriteHTML writes the HTML rendering of nodes to w.
func WriteHTML(w io.Writer, nodes []Node) error {
	_, err := io.WriteString(w, HTML(nodes))
	return err
}

func writeTableHTML(b *strings.Builder, t *Table) {
	b.WriteString(`<div class="telemetry-table"><table><thead><tr>`)
	for _, c := range t.Header {
		b.WriteString("<th>")
		writeInlineHTML(b, c.Content)
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, c := range row {
			b.WriteString(`<td class="cell-` + c.Kind.String() + `">`)
			writeInlineHTML(b, c.Content)
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></div>")
}

func writeInlineHTML(b *strings.Builder, content []Inline) {
	for _, in := range content {
		switch in.Kind {
		case InlineText:
			b.WriteString(html.EscapeString(in.Text))
		case InlineBold:
			b.WriteString("<strong>")
			writeInlineHTML(b, in.Children)
			b.WriteString("</strong>")
		case InlineBadge:
			b.WriteString(`<span class="badge badge-` + in.Severity.String() + `">`)
			b.WriteString(html.EscapeString(in.Text))
			b.WriteString("</span>")
		case InlineCurrency:
			b.WriteString(`<span class="currency">`)
			b.WriteString(html.EscapeString(in.Text))
			b.WriteString("</span>")
		}
	}
}
