// Package normalize provides pure best-effort coercion of raw upstream
// payload fields into canonical values. Nothing here returns an error:
// unparsable input yields nil.
package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"serp-market-lab/internal/domain"
)

// decimalPattern matches the first decimal-number substring in a
// display string. Both '.' and ',' are accepted as the decimal
// separator ("$19.99", "19,99 EUR").
var decimalPattern = regexp.MustCompile(`[-+]?[0-9]+(?:[.,][0-9]+)?`)

// Price converts a heterogeneous raw price payload into a best-effort
// (amount, currency, display) triple.
//
// If a value is present it is coerced to float; coercion failure means
// a nil amount, the display string is not consulted. If there is no
// value but a display string exists, the first decimal-number substring
// is extracted and parsed. Currency is passed through as observed; the
// "USD" fallback belongs to the persistence layer, not here.
func Price(p *domain.RawPrice) (amount *float64, currency *string, display *string) {
	if p == nil {
		return nil, nil, nil
	}

	if p.Currency != "" {
		c := p.Currency
		currency = &c
	}
	if p.Display != "" {
		d := p.Display
		display = &d
	}

	if p.Value != nil {
		amount = Float(p.Value)
	} else if p.Display != "" {
		amount = AmountFromDisplay(p.Display)
	}

	return amount, currency, display
}

// AmountFromDisplay extracts and parses the first decimal-number
// substring from a human-readable price string. A comma decimal
// separator is normalized to a point. Returns nil for unparsable text.
func AmountFromDisplay(display string) *float64 {
	match := decimalPattern.FindString(display)
	if match == "" {
		return nil
	}

	match = strings.ReplaceAll(match, ",", ".")
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Float coerces a dynamically typed numeric field to float64.
// Returns nil when the value is absent or not numeric.
func Float(v any) *float64 {
	var f float64

	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	return &f
}

// Int coerces a dynamically typed numeric field to int via
// float-then-truncate. Returns nil when coercion fails.
func Int(v any) *int {
	f := Float(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}
