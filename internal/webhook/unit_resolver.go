package webhook

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var digitsRe = regexp.MustCompile(`\d+`)

// UnitResolver maps the business display number that received a message to a
// clinic unit name. Matching is by digit-substring so the map keys can be the
// memorable local part of the number instead of the full E.164 form.
type UnitResolver struct {
	fragments map[string]string
	fallback  string
}

// NewUnitResolver parses the JSON fragment->unit map. An empty mapJSON yields
// a resolver that always answers the fallback unit.
func NewUnitResolver(mapJSON, fallback string) (*UnitResolver, error) {
	fragments := map[string]string{}
	if strings.TrimSpace(mapJSON) != "" {
		raw := map[string]string{}
		if err := json.Unmarshal([]byte(mapJSON), &raw); err != nil {
			return nil, fmt.Errorf("webhook: parse unit map: %w", err)
		}
		for fragment, unit := range raw {
			clean := sanitizeDigits(fragment)
			if clean == "" || unit == "" {
				continue
			}
			fragments[clean] = unit
		}
	}
	return &UnitResolver{fragments: fragments, fallback: fallback}, nil
}

// Resolve returns the unit for a display number, or the fallback when no
// fragment matches.
func (r *UnitResolver) Resolve(displayNumber string) string {
	if r == nil {
		return ""
	}
	digits := sanitizeDigits(displayNumber)
	if digits != "" {
		for fragment, unit := range r.fragments {
			if strings.Contains(digits, fragment) {
				return unit
			}
		}
	}
	return r.fallback
}

func sanitizeDigits(value string) string {
	if value == "" {
		return ""
	}
	return strings.Join(digitsRe.FindAllString(value, -1), "")
}
