package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	boldStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	currencyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#34d399"))
	paragraphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244")).Padding(0, 1)
	h2Style        = lipgloss.NewStyle().Bold(true).Italic(true).Foreground(lipgloss.Color("15")).MarginTop(1)

	h3Style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6366f1")).
		BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).
		BorderForeground(lipgloss.Color("#4f46e5")).PaddingLeft(1)

	badgeStyles = map[Severity]lipgloss.Style{
		SeverityNormal:      badgeStyle("#10b981", ""),
		SeverityDelay:       badgeStyle("#ef4444", ""),
		SeverityHighTraffic: badgeStyle("#f97316", ""),
		SeverityFlowing:     badgeStyle("#10b981", ""),
		SeverityCancelled:   badgeStyle("15", "#dc2626"),
		SeveritySlowdown:    badgeStyle("#eab308", ""),
	}

	cellStyles = map[CellKind]lipgloss.Style{
		CellPlain: lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Padding(0, 1),
		CellTime:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#818cf8")).Padding(0, 1),
		CellPrice: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#34d399")).Padding(0, 1),
		CellAlert: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fb923c")).Padding(0, 1),
	}
)

func badgeStyle(fg, bg string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(fg))
	if bg != "" {
		s = s.Background(lipgloss.Color(bg))
	}
	return s
}

// Terminal renders display nodes with ANSI styling for a terminal.
func Terminal(nodes []Node) string {
	blocks := make([]string, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind {
		case BlockParagraph:
			blocks = append(blocks, paragraphStyle.Render(inlineTerminal(n.Content)))
		case BlockHeading:
			if n.Level == 2 {
				blocks = append(blocks, h2Style.Render(strings.ToUpper(inlineTerminal(n.Content))))
			} else {
				blocks = append(blocks, h3Style.Render(strings.ToUpper(inlineTerminal(n.Content))))
			}
		case BlockTable:
			blocks = append(blocks, tableTerminal(n.Table))
		}
	}
	return strings.Join(blocks, "\n")
}

func inlineTerminal(content []Inline) string {
	var b strings.Builder
	for _, in := range content {
		switch in.Kind {
		case InlineText:
			b.WriteString(in.Text)
		case InlineBold:
			b.WriteString(boldStyle.Render(inlineTerminal(in.Children)))
		case InlineBadge:
			style, ok := badgeStyles[*in.Severity]
			if !ok {
				style = boldStyle
			}
			b.WriteString(style.Render("[" + strings.ToUpper(in.Text) + "]"))
		case InlineCurrency:
			b.WriteString(currencyStyle.Render(in.Text))
		}
	}
	return b.String()
}

func tableTerminal(t *Table) string {
	width := len(t.Header)
	for _, row := range t.Rows {
		width = max(width, len(row))
	}

	// lipgloss wants rectangular data; missing cells render empty.
	headers := make([]string, width)
	for i, c := range t.Header {
		headers[i] = inlineTerminal(c.Content)
	}
	rows := make([][]string, 0, len(t.Rows))
	kinds := make([][]CellKind, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, width)
		rowKinds := make([]CellKind, width)
		for i, c := range row {
			cells[i] = inlineTerminal(c.Content)
			rowKinds[i] = c.Kind
		}
		rows = append(rows, cells)
		kinds = append(kinds, rowKinds)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(kinds) || col >= len(kinds[row]) {
				return cellStyles[CellPlain]
			}
			return cellStyles[kinds[row][col]]
		}).
		String()
}
