package display

import "strings"

var (
	alertTokens = []string{"[RITARDO]", "[TRAFFICO ALTO]"}
	alertWords  = []string{"ritardo", "incidente", "cancellato"}
)

// HasAlert reports whether a response mentions a delay, an incident, a
// cancellation or heavy traffic. It drives the result card warning banner and
// the saved search delay flag.
func HasAlert(text string) bool {
	for _, tok := range alertTokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	lower := strings.ToLower(text)
	for _, w := range alertWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// AlertBanner is shown above a result that HasAlert flags.
const AlertBanner = "CRITICITÀ RILEVATA - POSSIBILI RALLENTAMENTI O CONGESTIONE STRADALE"
