package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML(t *testing.T) {
	nodes := Render("## Roma\n| Mezzo | Stato | Costo |\n|---|---|---|\n| Bus 64 | [TRAFFICO ALTO] | 1,50 € |\n<script>x</script>")

	out := HTML(nodes)

	assert.Contains(t, out, `<h2 class="telemetry-h2">Roma</h2>`)
	assert.Contains(t, out, `<th>Mezzo</th>`)
	assert.Contains(t, out, `<td class="cell-alert"><span class="badge badge-high-traffic">Traffico Alto</span></td>`)
	assert.Contains(t, out, `<td class="cell-price"><span class="currency">1,50 €</span></td>`)
	assert.Contains(t, out, `&lt;script&gt;x&lt;/script&gt;`)
	assert.NotContains(t, out, "<script>")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, Render("**Attenzione** [CANCELLATO]")))

	assert.Equal(t, `<p class="telemetry-line"><strong>Attenzione</strong> <span class="badge badge-cancelled">Cancellato</span></p>`, buf.String())
}

func TestTerminal(t *testing.T) {
	out := Terminal(Render("### Partenze\n| Treno | Ora |\n|---|---|\n| R 2045 | 08:15 |\n| IC 590 |"))

	assert.Contains(t, out, "PARTENZE")
	assert.Contains(t, out, "R 2045")
	assert.Contains(t, out, "08:15")
	assert.Contains(t, out, "IC 590")
}

func TestHasAlert(t *testing.T) {
	assert.True(t, HasAlert("Linea [RITARDO] 10 min"))
	assert.True(t, HasAlert("A1 [TRAFFICO ALTO]"))
	assert.True(t, HasAlert("Incidente in tangenziale"))
	assert.True(t, HasAlert("volo CANCELLATO"))
	assert.False(t, HasAlert("Tutto [REGOLARE]"))
	assert.False(t, HasAlert(""))
}

func TestVocabulary(t *testing.T) {
	canonical := CanonicalTokens()
	assert.Len(t, canonical, 6)
	for _, tok := range canonical {
		assert.False(t, tok.Synonym)
		assert.NotEmpty(t, tok.Severity.ColorName())
	}

	tok, ok := LookupToken("[INTENSO]")
	require.True(t, ok)
	assert.Equal(t, SeverityHighTraffic, tok.Severity)

	_, ok = LookupToken("[intenso]")
	assert.False(t, ok)
	assert.Equal(t, "severity(42)", Severity(42).String())
}
