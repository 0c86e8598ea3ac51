// Package extract finds weight-bearing substrings in page or reply text.
package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var ErrNoMatch = errors.New("no weight match in text")

// Pattern is one matcher in a prioritized set. The first capture group must
// be the numeric value. Unit-specific patterns carry a fixed Unit; otherwise
// the second capture group is the unit token.
type Pattern struct {
	Re    *regexp.Regexp
	Unit  string
	Label string
}

// Candidate is an unvalidated (value, unit) pair plus the label it came
// from. It is consumed immediately by units.Normalize.
type Candidate struct {
	Value float64
	Unit  string
	Label string
}

// unitAliases folds long-form unit spellings onto the tokens the converter
// table knows about.
var unitAliases = map[string]string{
	"gram":      "g",
	"grams":     "g",
	"kilogram":  "kg",
	"kilograms": "kg",
}

func canonicalUnit(token string) string {
	t := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(token)), ".")
	if alias, ok := unitAliases[t]; ok {
		return alias
	}
	return t
}

// First scans text with each pattern in priority order and returns the
// first occurrence whose value parses. An earlier pattern always wins over
// a later one, regardless of match position in the text.
func First(text string, patterns []Pattern) (Candidate, error) {
	for _, p := range patterns {
		for _, m := range p.Re.FindAllStringSubmatch(text, -1) {
			value, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			unit := p.Unit
			if unit == "" && len(m) > 2 {
				unit = canonicalUnit(m[2])
			}
			if unit == "" {
				continue
			}
			return Candidate{Value: value, Unit: unit, Label: p.Label}, nil
		}
	}
	return Candidate{}, ErrNoMatch
}
