package domain

import (
	"slices"
	"time"
)

type yearAccumulator struct {
	first time.Time
	last  time.Time
	idSum float64
	days  int
}

// ReduceYears groups a station's qualifying rows by the calendar year of
// their date. Rows with an invalid date are left out of the date grouping.
//
// TotalHDU sums the unwindowed heat units of the qualifying rows keyed by
// each row's year field, and is matched to a summary by the year of its
// first qualifying date; a year without a matching sum gets 0.
// Summaries are returned in ascending year order.
func ReduceYears(station string, qualifying []HeatRecord, requiredDD float64) []YearSummary {
	byYear := make(map[int]*yearAccumulator)
	hduByYear := make(map[float64]float64)

	for _, r := range qualifying {
		hduByYear[r.Year.Or(0)] += r.HDU

		year, ok := r.Date.Year()
		if !ok {
			continue
		}
		acc, ok := byYear[year]
		if !ok {
			acc = &yearAccumulator{first: r.Date.Time, last: r.Date.Time}
			byYear[year] = acc
		}
		if r.Date.Time.Before(acc.first) {
			acc.first = r.Date.Time
		}
		if r.Date.Time.After(acc.last) {
			acc.last = r.Date.Time
		}
		acc.idSum += r.StationID.Or(0)
		acc.days++
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	slices.Sort(years)

	out := make([]YearSummary, 0, len(years))
	for _, y := range years {
		acc := byYear[y]
		firstYear := acc.first.Year()
		total := hduByYear[float64(firstYear)]
		out = append(out, YearSummary{
			Station:             station,
			StationID:           acc.idSum / float64(acc.days),
			Year:                firstYear,
			FirstQualifyingDate: acc.first,
			LastQualifyingDate:  acc.last,
			TotalHDU:            total,
			Generations:         total / requiredDD,
		})
	}
	return out
}
