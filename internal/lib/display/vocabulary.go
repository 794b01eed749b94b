package display

import (
	"regexp"
	"strings"
)

// VocabularyVersion identifies the status token set below. Bump it whenever a
// token is added, removed or regrouped.
const VocabularyVersion = "3"

// StatusToken maps a bracketed token to its badge.
type StatusToken struct {
	Token    string   `json:"token"`
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
	// Synonym tokens are recognized but never requested from the model.
	Synonym bool `json:"synonym,omitempty"`
}

// Vocabulary is the union of every status token the dashboard has used.
var Vocabulary = []StatusToken{
	{Token: "[REGOLARE]", Label: "Regolare", Severity: SeverityNormal},
	{Token: "[RITARDO]", Label: "Ritardo", Severity: SeverityDelay},
	{Token: "[TRAFFICO ALTO]", Label: "Traffico Alto", Severity: SeverityHighTraffic},
	{Token: "[TRAFFICO FLUIDO]", Label: "Traffico Fluido", Severity: SeverityFlowing},
	{Token: "[CANCELLATO]", Label: "Cancellato", Severity: SeverityCancelled},
	{Token: "[RALLENTAMENTI]", Label: "Rallentamenti", Severity: SeveritySlowdown},
	{Token: "[FLUIDO]", Label: "Fluido", Severity: SeverityFlowing, Synonym: true},
	{Token: "[INTENSO]", Label: "Intenso", Severity: SeverityHighTraffic, Synonym: true},
}

var severityColorNames = map[Severity]string{
	SeverityNormal:      "verde",
	SeverityDelay:       "rosso",
	SeverityHighTraffic: "arancione",
	SeverityFlowing:     "verde smeraldo",
	SeverityCancelled:   "rosso pieno",
	SeveritySlowdown:    "giallo",
}

// ColorName is the Italian color word used when describing the badge to the model.
func (s Severity) ColorName() string {
	return severityColorNames[s]
}

var (
	tokenIndex   = map[string]StatusToken{}
	tokenPattern *regexp.Regexp
)

func init() {
	alts := make([]string, 0, len(Vocabulary))
	for _, tok := range Vocabulary {
		tokenIndex[tok.Token] = tok
		alts = append(alts, regexp.QuoteMeta(tok.Token))
	}
	tokenPattern = regexp.MustCompile(strings.Join(alts, "|"))
}

// LookupToken returns the badge for an exact bracketed token.
func LookupToken(token string) (StatusToken, bool) {
	tok, ok := tokenIndex[token]
	return tok, ok
}

// CanonicalTokens returns the tokens the model is asked to emit.
func CanonicalTokens() []StatusToken {
	out := make([]StatusToken, 0, len(Vocabulary))
	for _, tok := range Vocabulary {
		if !tok.Synonym {
			out = append(out, tok)
		}
	}
	return out
}
