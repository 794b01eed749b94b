package telemetry

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// EmptyFeedText replaces a response that carries no text at all.
const EmptyFeedText = "FEED TELEMETRICO ASSENTE. RICONNESSIONE..."

// geoDataPattern matches one `[GEO_DATA: [...]]` directive. The array capture is
// non-greedy so it stops at the first `]` followed by the wrapper's `]`.
var geoDataPattern = regexp.MustCompile(`(?s)\[GEO_DATA:\s*(\[.*?\])\s*\]`)

// Parse separates a raw model response into display text and map points.
// Only the first directive is decoded; every directive is removed from the
// text. Parse never fails: a malformed directive yields zero points.
func Parse(raw string) ParsedResult {
	if strings.TrimSpace(raw) == "" {
		return ParsedResult{CleanedText: EmptyFeedText, Points: []MapPoint{}}
	}

	result := ParsedResult{Points: []MapPoint{}}

	if m := geoDataPattern.FindStringSubmatch(raw); m != nil {
		points, err := decodePoints(m[1])
		if err != nil {
			result.DirectiveErr = err
		} else {
			result.Points = points
		}
	}

	cleaned := strings.TrimSpace(geoDataPattern.ReplaceAllString(raw, ""))
	if cleaned == "" {
		// A response made only of directives has nothing to show.
		cleaned = EmptyFeedText
	}
	result.CleanedText = cleaned

	return result
}

// HasDirective reports whether text still contains a GEO_DATA directive.
func HasDirective(text string) bool {
	return geoDataPattern.MatchString(text)
}

func decodePoints(array string) ([]MapPoint, error) {
	var points []MapPoint
	if err := json.Unmarshal([]byte(array), &points); err != nil {
		return nil, fmt.Errorf("invalid GEO_DATA JSON: %w", err)
	}
	if points == nil {
		points = []MapPoint{}
	}
	return points, nil
}
