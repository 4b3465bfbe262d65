package postgres

import (
	"fmt"
	"strconv"
	"strings"
)

// The weekly column stores an ordered, comma-delimited list of decimal
// values. An empty sequence serializes to the empty string; the round trip
// is exact up to floating-point representation.

// encodeWeekly serializes weekly scores for storage.
func encodeWeekly(scores []float64) string {
	if len(scores) == 0 {
		return ""
	}

	parts := make([]string, len(scores))
	for i, v := range scores {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// decodeWeekly parses a stored weekly column back into scores.
func decodeWeekly(s string) ([]float64, error) {
	if s == "" {
		return []float64{}, nil
	}

	parts := strings.Split(s, ",")
	scores := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("weekly value %q: %w", p, err)
		}
		scores[i] = v
	}
	return scores, nil
}
