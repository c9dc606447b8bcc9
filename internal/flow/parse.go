package flow

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evanko/ledgerbot/internal/common"
	"github.com/evanko/ledgerbot/internal/period"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	datePattern   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	rangeSplit    = regexp.MustCompile(`\s+-\s+|\s+`)
)

// ParseAmount turns user input into a positive amount rounded half-up to two
// decimal places. Whitespace is stripped and a comma decimal separator is
// accepted.
func ParseAmount(input string) (decimal.Decimal, error) {
	normalized := whitespaceRun.ReplaceAllString(input, "")
	normalized = strings.Replace(normalized, ",", ".", 1)

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", common.ErrBadAmount, input)
	}

	// Round first: an input like "0.004" is zero once stored and must be
	// rejected, not saved as 0.00.
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", common.ErrBadAmount, input)
	}

	return amount, nil
}

// ParseCustomRange parses a "<date> <date>" pair of strict YYYY-MM-DD dates
// into an inclusive period. The pair may be separated by whitespace or a
// spaced dash. Fails when either token is malformed, names an impossible
// calendar day, or the end precedes the start.
func ParseCustomRange(input string) (period.Range, error) {
	parts := rangeSplit.Split(strings.TrimSpace(input), -1)
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	if len(tokens) != 2 {
		return period.Range{}, fmt.Errorf("%w: expected two dates", common.ErrBadPeriod)
	}

	start, err := parseDate(tokens[0])
	if err != nil {
		return period.Range{}, err
	}
	end, err := parseDate(tokens[1])
	if err != nil {
		return period.Range{}, err
	}

	rng, err := period.Custom(start, end)
	if err != nil {
		return period.Range{}, fmt.Errorf("%w: end before start", common.ErrBadPeriod)
	}
	return rng, nil
}

// parseDate validates a strict YYYY-MM-DD token by round-tripping it through
// time.Date: an overflowing day like 2025-02-30 normalizes to a different
// date and is rejected.
func parseDate(token string) (time.Time, error) {
	m := datePattern.FindStringSubmatch(token)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", common.ErrBadPeriod, token)
	}

	var year, month, day int
	_, _ = fmt.Sscanf(token, "%d-%d-%d", &year, &month, &day)

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", common.ErrBadPeriod, token)
	}
	return date, nil
}
