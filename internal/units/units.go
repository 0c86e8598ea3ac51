// Package units converts raw (value, unit) weight readings into grams.
package units

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownUnit = errors.New("unknown weight unit")

// gramsPerUnit covers the unit spellings observed across marketplace
// listings and vendor spec pages. Tokens are matched lowercase with any
// trailing period stripped.
var gramsPerUnit = map[string]float64{
	"kg":     1000,
	"g":      1,
	"lb":     453.592,
	"lbs":    453.592,
	"pound":  453.592,
	"pounds": 453.592,
	"oz":     28.3495,
	"ounce":  28.3495,
	"ounces": 28.3495,
}

// Normalize converts value expressed in unit to grams. Callers treat
// ErrUnknownUnit as "no match for this candidate", not a row failure.
func Normalize(value float64, unit string) (float64, error) {
	token := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), ".")
	factor, ok := gramsPerUnit[token]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return value * factor, nil
}

// Known reports whether unit would be accepted by Normalize.
func Known(unit string) bool {
	token := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), ".")
	_, ok := gramsPerUnit[token]
	return ok
}
