package display

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badge(t *testing.T, in Inline) Severity {
	t.Helper()
	require.Equal(t, InlineBadge, in.Kind)
	require.NotNil(t, in.Severity)
	return *in.Severity
}

func TestRender_StatusLineScenario(t *testing.T) {
	nodes := Render("**Stato linea**\n| Mezzo | Stato |\n|---|---|\n| Treno 501 | [RITARDO] |\n")

	require.Len(t, nodes, 2)

	assert.Equal(t, BlockParagraph, nodes[0].Kind)
	require.Len(t, nodes[0].Content, 1)
	assert.Equal(t, InlineBold, nodes[0].Content[0].Kind)
	assert.Equal(t, "Stato linea", PlainText(nodes[0].Content[0].Children))

	require.Equal(t, BlockTable, nodes[1].Kind)
	tbl := nodes[1].Table
	require.Len(t, tbl.Header, 2)
	assert.Equal(t, "Mezzo", tbl.Header[0].Source)
	assert.Equal(t, "Stato", tbl.Header[1].Source)
	require.Len(t, tbl.Rows, 1)
	require.Len(t, tbl.Rows[0], 2)
	assert.Equal(t, "Treno 501", PlainText(tbl.Rows[0][0].Content))
	require.Len(t, tbl.Rows[0][1].Content, 1)
	assert.Equal(t, SeverityDelay, badge(t, tbl.Rows[0][1].Content[0]))
}

func TestRender_WellFormedTable(t *testing.T) {
	text := `| Mezzo | Partenza | Costo |
|---|---|---|
| 🚆 FR 9512 | 14:05 | 12,50 € |
| 🚇 M1 | 14:12 | 2,20 € |`

	nodes := Render(text)

	require.Len(t, nodes, 1)
	tbl := nodes[0].Table
	require.NotNil(t, tbl)
	assert.Len(t, tbl.Header, 3)
	require.Len(t, tbl.Rows, 2)
	for _, row := range tbl.Rows {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, CellPlain, tbl.Rows[0][0].Kind)
	assert.Equal(t, CellTime, tbl.Rows[0][1].Kind)
	assert.Equal(t, CellPrice, tbl.Rows[0][2].Kind)
	assert.Equal(t, InlineCurrency, tbl.Rows[0][2].Content[0].Kind)
	assert.Equal(t, "12,50 €", tbl.Rows[0][2].Content[0].Text)
}

func TestRender_TableClosedByText(t *testing.T) {
	text := "| A | B |\n|---|---|\n| 1 | 2 |\nNota finale\n| C | D |\n| 3 | 4 |"

	nodes := Render(text)

	require.Len(t, nodes, 3)
	assert.Equal(t, BlockTable, nodes[0].Kind)
	assert.Len(t, nodes[0].Table.Rows, 1)
	assert.Equal(t, BlockParagraph, nodes[1].Kind)
	assert.Equal(t, "Nota finale", PlainText(nodes[1].Content))
	assert.Equal(t, BlockTable, nodes[2].Kind)
	assert.Equal(t, "C", nodes[2].Table.Header[0].Source)
	assert.Len(t, nodes[2].Table.Rows, 1)
}

func TestRender_UnterminatedTableAtEnd(t *testing.T) {
	nodes := Render("Intro\n| A | B |\n| 1 | 2 |")

	require.Len(t, nodes, 2)
	assert.Equal(t, BlockTable, nodes[1].Kind)
	assert.Len(t, nodes[1].Table.Rows, 1)
}

func TestRender_RaggedRows(t *testing.T) {
	nodes := Render("| A | B | C |\n|---|---|---|\n| 1 |\n| 1 | 2 | 3 | 4 |")

	require.Len(t, nodes, 1)
	tbl := nodes[0].Table
	require.Len(t, tbl.Rows, 2)
	assert.Len(t, tbl.Rows[0], 1)
	assert.Len(t, tbl.Rows[1], 4)
}

func TestRender_HeadingsAndBlankLines(t *testing.T) {
	nodes := Render("## Milano\n\n   \n### Treni regionali\ntesto **forte** qui")

	require.Len(t, nodes, 3)
	assert.Equal(t, BlockHeading, nodes[0].Kind)
	assert.Equal(t, 2, nodes[0].Level)
	assert.Equal(t, "Milano", PlainText(nodes[0].Content))
	assert.Equal(t, 3, nodes[1].Level)
	assert.Equal(t, "Treni regionali", PlainText(nodes[1].Content))
	assert.Equal(t, BlockParagraph, nodes[2].Kind)
	require.Len(t, nodes[2].Content, 3)
	assert.Equal(t, InlineBold, nodes[2].Content[1].Kind)
}

func TestRender_PipeLineWithoutInteriorCells(t *testing.T) {
	nodes := Render("| A | B |\n|---|---|\n| 1 | 2 |\n| nota\n| 3 | 4 |")

	require.Len(t, nodes, 1)
	require.Equal(t, BlockTable, nodes[0].Kind)
	table := nodes[0].Table
	require.Len(t, table.Header, 2)
	assert.Equal(t, "A", table.Header[0].Source)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1", table.Rows[0][0].Source)
	assert.Equal(t, "3", table.Rows[1][0].Source)

	assert.Empty(t, Render("A1|B2"))

	nodes = Render("Linea A1|B2\nTreni [REGOLARE]")
	require.Len(t, nodes, 1)
	assert.Equal(t, BlockParagraph, nodes[0].Kind)
}

func TestRender_BoldDoesNotSpanCells(t *testing.T) {
	nodes := Render("| Mezzo | Stato |\n| **R 2012 | 08:15** |")

	require.Len(t, nodes, 1)
	row := nodes[0].Table.Rows[0]
	require.Len(t, row, 2)
	assert.Equal(t, "**R 2012", PlainText(row[0].Content))
	assert.Equal(t, "08:15**", PlainText(row[1].Content))
	for _, c := range row {
		for _, in := range c.Content {
			assert.NotEqual(t, InlineBold, in.Kind)
		}
	}
}

func TestRender_StatusTokens(t *testing.T) {
	cases := map[string]Severity{
		"[REGOLARE]":        SeverityNormal,
		"[RITARDO]":         SeverityDelay,
		"[TRAFFICO ALTO]":   SeverityHighTraffic,
		"[INTENSO]":         SeverityHighTraffic,
		"[TRAFFICO FLUIDO]": SeverityFlowing,
		"[FLUIDO]":          SeverityFlowing,
		"[CANCELLATO]":      SeverityCancelled,
		"[RALLENTAMENTI]":   SeveritySlowdown,
	}

	for token, want := range cases {
		nodes := Render("Linea 3 " + token + " ora")
		require.Len(t, nodes, 1, token)

		var badges []Inline
		for _, in := range nodes[0].Content {
			if in.Kind == InlineBadge {
				badges = append(badges, in)
			}
		}
		require.Len(t, badges, 1, token)
		assert.Equal(t, want, badge(t, badges[0]), token)

		flat := PlainText(nodes[0].Content)
		assert.NotContains(t, flat, "[", token)
		assert.NotContains(t, flat, "]", token)
	}
}

func TestRender_UnknownBracketIsText(t *testing.T) {
	nodes := Render("Stato [SCONOSCIUTO] e [regolare]")

	require.Len(t, nodes, 1)
	require.Len(t, nodes[0].Content, 1)
	assert.Equal(t, InlineText, nodes[0].Content[0].Kind)
}

func TestParseInline_Currency(t *testing.T) {
	cases := []struct {
		in     string
		before string
		value  string
		after  string
	}{
		{"Prezzo: 9,90 €", "Prezzo: ", "9,90 €", ""},
		{"Prezzo: € 9.90", "Prezzo: ", "€ 9.90", ""},
		{"Costo 5 € totale", "Costo ", "5 €", " totale"},
	}

	for _, tc := range cases {
		content := ParseInline(tc.in)

		var currency []Inline
		for _, in := range content {
			if in.Kind == InlineCurrency {
				currency = append(currency, in)
			}
		}
		require.Len(t, currency, 1, tc.in)
		assert.Equal(t, tc.value, currency[0].Text, tc.in)
		assert.Equal(t, InlineText, content[0].Kind)
		assert.Equal(t, tc.before, content[0].Text)
		assert.Equal(t, tc.in, PlainText(content), "surrounding text unaffected")
		if tc.after != "" {
			assert.Equal(t, tc.after, content[len(content)-1].Text)
		}
	}
}

func TestParseInline_BoldWithBadge(t *testing.T) {
	content := ParseInline("**Linea S5 [RITARDO]** aggiornata")

	require.Len(t, content, 2)
	assert.Equal(t, InlineBold, content[0].Kind)
	require.Len(t, content[0].Children, 2)
	assert.Equal(t, SeverityDelay, badge(t, content[0].Children[1]))
	assert.Equal(t, " aggiornata", content[1].Text)
}

func TestClassifyCell(t *testing.T) {
	cases := map[string]CellKind{
		"14:05":           CellTime,
		"12,50 €":         CellPrice,
		"€ 3":             CellPrice,
		"4.20":            CellPrice,
		"TRAFFICO ALTO":   CellAlert,
		"INCIDENTE km 12": CellAlert,
		"14:05 RITARDO":   CellAlert,
		"14:05 - 9,90":    CellPrice,
		"Milano Centrale": CellPlain,
		"1405":            CellPlain,
		"":                CellPlain,
	}

	for cell, want := range cases {
		assert.Equal(t, want, ClassifyCell(cell), cell)
	}
}

func TestRender_JSONShape(t *testing.T) {
	nodes := Render("| A |\n|---|\n| 10:00 [REGOLARE] |")

	data, err := json.Marshal(nodes)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.Contains(s, `"kind":"table"`), s)
	assert.Contains(t, s, `"kind":"time"`)
	assert.Contains(t, s, `"severity":"normal"`)

	var decoded []Node
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, nodes, decoded)
}
