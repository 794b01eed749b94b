package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maxsviluppo/Aitraffic/internal/lib/display"
	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
)

// NearbyQuery is sent when the user enables GPS without typing anything.
const NearbyQuery = "Trasporti e traffico vicino a me"

const preamble = `Sei l'AI Core di un sistema di navigazione automobilistico avanzato chiamato TRANSITO. Rispondi in ITALIANO.
Analisi richiesta: %s. `

const rules = `
REGOLE DI RISPOSTA (DASHBOARD FORMAT):
1. TABELLA TELEMETRICA: Genera una tabella Markdown rigorosa.
   Colonne: | Mezzo | Partenza | Arrivo | Stato | Costo/Traffico | Note |
   Esempi Mezzo: 🚆 (Treno), ✈️ (Volo), 🚢 (Nave), 🚇 (Metro), 🚌 (Bus), 🚗 (Auto/Strada).
2. TRAFFICO STRADALE: Includi dati su congestione, incidenti e tempi di percorrenza stimati per tratti urbani.
3. PRECISIONE ORARIA: Orari in formato HH:mm. Evidenzia ritardi o "code a tratti".
4. STATO: %s.
5. MODULO COSTI: Includi prezzi biglietti/abbonamenti in euro (es. 12,50 €). Per il traffico stradale, indica se ci sono pedaggi o ZTL attive.
6. INFO AGGIUNTIVE: Menziona scioperi, lavori stradali, chiusure di svincoli o gate aeroportuali.
7. SORGENTI: Verifica dati su Google Search tramite siti ufficiali (Trenitalia, ATM, Google Maps News, Autostrade per l'Italia, ecc.).
8. STILE: Tecnico, asciutto, dashboard-ready.
9. MAPPA: Alla fine della risposta aggiungi UNA SOLA direttiva nel formato esatto
   [GEO_DATA: [{"lat": 45.4642, "lng": 9.19, "label": "Nome punto", "type": "TRAIN", "status": "REGOLARE"}]]
   con un elemento per ogni stazione, aeroporto, porto o tratto stradale citato.
   "type" deve essere uno tra: %s. "status" è facoltativo.`

// Build assembles the dashboard prompt for one query. The category filter is
// omitted for ALL and the GPS clause only appears when loc is set.
func Build(query string, t telemetry.TransportType, loc *telemetry.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, preamble, query)

	if t != telemetry.ALL && t != "" {
		fmt.Fprintf(&b, "Filtro hardware attivo su categoria: %s. ", t)
	}

	if loc != nil {
		fmt.Fprintf(&b, "Coordinate GPS: %s, %s. Calcola percorsi partendo da qui o zone limitrofe. ",
			formatCoord(loc.Lat), formatCoord(loc.Lng))
	}

	fmt.Fprintf(&b, rules, statusRule(), pointTypes())
	return b.String()
}

func statusRule() string {
	tokens := display.CanonicalTokens()
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, fmt.Sprintf("%s (%s)", tok.Token, tok.Severity.ColorName()))
	}
	return strings.Join(parts, ", ")
}

func pointTypes() string {
	types := make([]string, 0, len(telemetry.TransportTypes))
	for _, t := range telemetry.TransportTypes {
		if t == telemetry.ALL {
			continue
		}
		types = append(types, string(t))
	}
	return strings.Join(types, ", ")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
