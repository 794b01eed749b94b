package display

import "regexp"

var (
	boldPattern     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	currencyPattern = regexp.MustCompile(`\d+[,.]\d{2}\s*€|€\s*\d+[,.]\d{2}|\d+\s*€`)
)

// ParseInline applies the inline transforms to a single line: bold first, then
// status tokens, then currency amounts.
func ParseInline(s string) []Inline {
	out := []Inline{}
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, parseTokens(s[last:m[0]])...)
		out = append(out, Inline{Kind: InlineBold, Children: parseTokens(s[m[2]:m[3]])})
		last = m[1]
	}
	return append(out, parseTokens(s[last:])...)
}

func parseTokens(s string) []Inline {
	var out []Inline
	last := 0
	for _, m := range tokenPattern.FindAllStringIndex(s, -1) {
		out = append(out, parseCurrency(s[last:m[0]])...)
		tok, _ := LookupToken(s[m[0]:m[1]])
		sev := tok.Severity
		out = append(out, Inline{Kind: InlineBadge, Text: tok.Label, Severity: &sev})
		last = m[1]
	}
	return append(out, parseCurrency(s[last:])...)
}

func parseCurrency(s string) []Inline {
	var out []Inline
	last := 0
	for _, m := range currencyPattern.FindAllStringIndex(s, -1) {
		if m[0] > last {
			out = append(out, Inline{Kind: InlineText, Text: s[last:m[0]]})
		}
		out = append(out, Inline{Kind: InlineCurrency, Text: s[m[0]:m[1]]})
		last = m[1]
	}
	if last < len(s) {
		out = append(out, Inline{Kind: InlineText, Text: s[last:]})
	}
	return out
}
