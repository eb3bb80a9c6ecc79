package processors

import (
	"time"

	"github.com/username/sellfolio/backend/src/models"
	"github.com/username/sellfolio/backend/src/utils"
)

// InRange reports whether a record falls inside the optional [start, end]
// date range. Bounds are inclusive of their whole calendar day. A record
// with no determinable date is always in range: it must not silently vanish
// from totals just because its date cell was malformed.
func InRange(rec models.NormalizedRecord, start, end *time.Time) bool {
	if rec.Date == nil {
		return true
	}
	if start != nil && rec.Date.Before(utils.DayStart(*start)) {
		return false
	}
	if end != nil && rec.Date.After(utils.DayEnd(*end)) {
		return false
	}
	return true
}

// FilterByRange returns the records that satisfy InRange, preserving order.
func FilterByRange(records []models.NormalizedRecord, start, end *time.Time) []models.NormalizedRecord {
	if start == nil && end == nil {
		return records
	}
	filtered := make([]models.NormalizedRecord, 0, len(records))
	for _, rec := range records {
		if InRange(rec, start, end) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// PeriodBounds returns the earliest and latest parseable record dates,
// used to seed the default range picker. Records without a date do not
// participate here even though they pass every range filter.
func PeriodBounds(records []models.NormalizedRecord) (min, max *time.Time) {
	for _, rec := range records {
		if rec.Date == nil {
			continue
		}
		d := *rec.Date
		if min == nil || d.Before(*min) {
			min = &d
		}
		if max == nil || d.After(*max) {
			max = &d
		}
	}
	return min, max
}
