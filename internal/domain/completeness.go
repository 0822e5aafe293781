package domain

// DropReason explains why a station was excluded from modeling.
type DropReason string

const (
	DropIncomplete   DropReason = "incomplete"
	DropActiveSeason DropReason = "active_season"
)

// FilterReport lists the stations excluded by FilterComplete.
type FilterReport struct {
	MaxRows      int
	Incomplete   []string
	ActiveSeason []string
}

// FilterComplete keeps the stations whose row count equals the longest
// series and which have no missing temperature strictly inside the active
// season, then fills every remaining missing numeric field with zero.
// Input order is preserved. The report lists are never nil.
func FilterComplete(series []StationSeries, startMonth, endMonth int) ([]StationSeries, FilterReport) {
	report := FilterReport{
		MaxRows:      MaxRows(series),
		Incomplete:   []string{},
		ActiveSeason: []string{},
	}

	kept := make([]StationSeries, 0, len(series))
	for _, s := range series {
		if s.Len() != report.MaxRows {
			report.Incomplete = append(report.Incomplete, s.Name)
			continue
		}
		if HasSeasonGap(s, startMonth, endMonth) {
			report.ActiveSeason = append(report.ActiveSeason, s.Name)
			continue
		}
		kept = append(kept, FillMissing(s))
	}
	return kept, report
}

// MaxRows returns the longest series length.
func MaxRows(series []StationSeries) int {
	maxRows := 0
	for _, s := range series {
		maxRows = max(maxRows, s.Len())
	}
	return maxRows
}

// HasSeasonGap reports whether any row with a missing temperature has a
// valid date whose month is strictly between startMonth and endMonth.
func HasSeasonGap(s StationSeries, startMonth, endMonth int) bool {
	for _, rec := range s.Records {
		if rec.Temp.Valid {
			continue
		}
		month, ok := rec.Date.Month()
		if !ok {
			continue
		}
		if int(month) > startMonth && int(month) < endMonth {
			return true
		}
	}
	return false
}

// FillMissing returns a copy of the series with every missing numeric field
// set to zero. Dates are left untouched.
func FillMissing(s StationSeries) StationSeries {
	out := StationSeries{Name: s.Name, Records: make([]DailyRecord, len(s.Records))}
	for i, rec := range s.Records {
		rec.StationID = fillZero(rec.StationID)
		rec.Year = fillZero(rec.Year)
		rec.Month = fillZero(rec.Month)
		rec.Day = fillZero(rec.Day)
		rec.TMin = fillZero(rec.TMin)
		rec.Temp = fillZero(rec.Temp)
		rec.TMax = fillZero(rec.TMax)
		rec.Precipitation = fillZero(rec.Precipitation)
		out.Records[i] = rec
	}
	return out
}

func fillZero(v Value) Value {
	if v.Valid {
		return v
	}
	return Some(0)
}
