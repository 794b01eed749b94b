package display

import (
	"regexp"
	"strings"
)

var (
	timeCellPattern  = regexp.MustCompile(`\b\d{2}:\d{2}\b`)
	priceCellPattern = regexp.MustCompile(`\b\d+[,.]\d{2}\b`)
	alertCellWords   = []string{"ALTO", "RITARDO", "INCIDENTE"}
)

type blockState int

const (
	outsideTable blockState = iota
	insideTable
)

// renderer is the block-level state machine. It is single use.
type renderer struct {
	state blockState
	table *Table
	nodes []Node
}

// Render converts cleaned response text into display nodes. It never fails:
// irregular input degrades to paragraphs and ragged tables.
func Render(text string) []Node {
	r := &renderer{state: outsideTable, nodes: []Node{}}
	for _, line := range strings.Split(text, "\n") {
		r.feed(strings.TrimRight(line, "\r"))
	}
	r.closeTable()
	return r.nodes
}

func (r *renderer) feed(line string) {
	if cells, ok := tableCells(line); ok {
		// A pipe line without interior cells is dropped in either state.
		if len(cells) == 0 {
			return
		}
		switch r.state {
		case outsideTable:
			r.state = insideTable
			r.table = &Table{Header: headerRow(cells), Rows: [][]Cell{}}
		case insideTable:
			if strings.Contains(line, "---") {
				return
			}
			r.table.Rows = append(r.table.Rows, bodyRow(cells))
		}
		return
	}

	r.closeTable()

	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
	case strings.HasPrefix(line, "### "):
		r.nodes = append(r.nodes, Node{Kind: BlockHeading, Level: 3, Content: ParseInline(strings.TrimSpace(line[4:]))})
	case strings.HasPrefix(line, "## "):
		r.nodes = append(r.nodes, Node{Kind: BlockHeading, Level: 2, Content: ParseInline(strings.TrimSpace(line[3:]))})
	default:
		r.nodes = append(r.nodes, Node{Kind: BlockParagraph, Content: ParseInline(trimmed)})
	}
}

func (r *renderer) closeTable() {
	if r.state != insideTable {
		return
	}
	r.nodes = append(r.nodes, Node{Kind: BlockTable, Table: r.table})
	r.table = nil
	r.state = outsideTable
}

// tableCells reports whether line is a pipe line and returns its interior
// cells, which may be none.
func tableCells(line string) ([]string, bool) {
	if !strings.Contains(line, "|") || len(strings.TrimSpace(line)) <= 1 {
		return nil, false
	}
	parts := strings.Split(line, "|")
	if len(parts) < 3 {
		return nil, true
	}
	cells := make([]string, 0, len(parts)-2)
	for _, p := range parts[1 : len(parts)-1] {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells, true
}

func headerRow(cells []string) []Cell {
	row := make([]Cell, 0, len(cells))
	for _, c := range cells {
		row = append(row, Cell{Source: c, Kind: CellPlain, Content: ParseInline(c)})
	}
	return row
}

func bodyRow(cells []string) []Cell {
	row := make([]Cell, 0, len(cells))
	for _, c := range cells {
		row = append(row, Cell{Source: c, Kind: ClassifyCell(c), Content: ParseInline(c)})
	}
	return row
}

// ClassifyCell picks the emphasis class of a body cell. Alert wins over price,
// price wins over time.
func ClassifyCell(cell string) CellKind {
	kind := CellPlain
	if timeCellPattern.MatchString(cell) {
		kind = CellTime
	}
	if strings.Contains(cell, "€") || priceCellPattern.MatchString(cell) {
		kind = CellPrice
	}
	for _, w := range alertCellWords {
		if strings.Contains(cell, w) {
			kind = CellAlert
			break
		}
	}
	return kind
}
