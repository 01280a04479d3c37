package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ridopark/closebt/pkg/logging"
)

// ISO8601UTC is the canonical timestamp layout of every report field
const ISO8601UTC = "2006-01-02T15:04:05+00:00"

// DailyCloseHourUTC is 16:00 America/New_York expressed in UTC. Date-only
// inputs are pinned to it.
const DailyCloseHourUTC = 21

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05 -0700 MST",
}

var naiveLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02",
	"20060102",
}

// SafeISO8601UTC renders value as an ISO8601 UTC string, or nil when it
// cannot be interpreted as a point in time. Accepted values are time.Time,
// *time.Time, strings and anything whose fmt form parses.
//
// A time.Time at exactly UTC midnight is treated as a bare date, as are
// strings without a zone. Both are pinned to the daily close.
func SafeISO8601UTC(value any) *string {
	logger := logging.GetLogger("report")

	switch v := value.(type) {
	case nil:
		logger.Warn().Msg("Timestamp is nil, emitting null")
		return nil
	case *time.Time:
		if v == nil {
			logger.Warn().Msg("Timestamp is nil, emitting null")
			return nil
		}
		return SafeISO8601UTC(*v)
	case time.Time:
		if v.IsZero() {
			logger.Warn().Msg("Timestamp is zero, emitting null")
			return nil
		}
		if isBareDate(v) {
			return formatDailyClose(v)
		}
		s := v.UTC().Format(ISO8601UTC)
		return &s
	case string:
		return parseTimestamp(v)
	case fmt.Stringer:
		return parseTimestamp(v.String())
	default:
		return parseTimestamp(fmt.Sprint(v))
	}
}

func parseTimestamp(raw string) *string {
	logger := logging.GetLogger("report")

	s := strings.TrimSpace(raw)
	if s == "" {
		logger.Warn().Msg("Timestamp is empty, emitting null")
		return nil
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			out := t.UTC().Format(ISO8601UTC)
			return &out
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return formatDailyClose(t)
		}
	}

	logger.Warn().Str("value", raw).Msg("Unparseable timestamp, emitting null")
	return nil
}

// isBareDate reports a midnight at zero offset, whatever the zone's name
func isBareDate(t time.Time) bool {
	if _, offset := t.Zone(); offset != 0 {
		return false
	}
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

func formatDailyClose(t time.Time) *string {
	y, mo, d := t.Date()
	s := time.Date(y, mo, d, DailyCloseHourUTC, 0, 0, 0, time.UTC).Format(ISO8601UTC)
	return &s
}

// dateKey formats the calendar date a curve point belongs to
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
