// Package validation parses and validates primitive inputs into domain
// values. Every failure is a core.Error with KindInvalidArgument naming the
// offending field.
package validation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ragnarsss/auction-ms/core"
)

// Amount parses a raw monetary string as an exact fixed-point decimal.
// Empty and non-numeric input fail with InvalidArgument naming field.
func Amount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, core.InvalidArgumentf("%s cannot be empty", field)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, core.InvalidArgumentf("%s must be a valid number, got %q", field, raw)
	}
	return d, nil
}

// TimeRange validates an auction's bidding window at creation time: the
// start must precede the end and must not already be in the past.
func TimeRange(start, end, now time.Time) error {
	if !start.Before(end) {
		return core.InvalidArgumentf("start time must be before end time")
	}
	if start.Before(now) {
		return core.InvalidArgumentf("start time cannot be in the past")
	}
	return nil
}

// RequireID validates that a required identifier string is present.
func RequireID(value, field string) error {
	if value == "" {
		return core.InvalidArgumentf("%s cannot be empty", field)
	}
	return nil
}

// RequireText validates free text that must carry content: empty and
// whitespace-only values are rejected.
func RequireText(value, field string) error {
	if value == "" {
		return core.InvalidArgumentf("%s cannot be empty", field)
	}
	if strings.TrimSpace(value) == "" {
		return core.InvalidArgumentf("%s cannot be only whitespace", field)
	}
	return nil
}
