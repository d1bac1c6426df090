package domain

import "time"

// ReportingWindow is the half-open-in-spirit date range sent upstream:
// inclusive start of day 29 days back, inclusive end of today at
// 23:59:59.999, both evaluated in the merchant's business timezone and
// expressed in UTC.
type ReportingWindow struct {
	From time.Time
	To   time.Time
}

// Last30Days builds the rolling window covering today and the 29 days
// before it, relative to now in the given location.
func Last30Days(now time.Time, loc *time.Location) ReportingWindow {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -29)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999000000, loc)
	return ReportingWindow{
		From: start.UTC(),
		To:   end.UTC(),
	}
}

// isoMillis matches toISOString-style timestamps with fixed millisecond
// precision, which Shopify accepts for created_at filters.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// FromDate returns the window start formatted for the Shopify query.
func (w ReportingWindow) FromDate() string {
	return w.From.Format(isoMillis)
}

// ToDate returns the window end formatted for the Shopify query.
func (w ReportingWindow) ToDate() string {
	return w.To.Format(isoMillis)
}
