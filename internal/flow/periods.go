package flow

import "github.com/evanko/ledgerbot/internal/period"

// resolvePreset maps a period-select payload to its range. The second result
// is false for the custom key and for unknown payloads; callers distinguish
// the two by checking the key themselves.
func resolvePreset(payload string) (period.Range, bool) {
	switch payload {
	case periodToday:
		return period.Today(), true
	case periodLast7:
		return period.Last7(), true
	case periodMonth:
		return period.CurrentMonth(), true
	default:
		return period.Range{}, false
	}
}
