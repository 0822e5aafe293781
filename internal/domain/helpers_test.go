package domain

import (
	"io"
	"log/slog"
	"time"
)

const testStation = "22854"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// makeSeries builds a station series of consecutive days starting at start,
// one record per temperature, all with station id 22854.
func makeSeries(name string, start time.Time, temps ...float64) StationSeries {
	s := StationSeries{Name: name, Records: make([]DailyRecord, len(temps))}
	for i, temp := range temps {
		d := start.AddDate(0, 0, i)
		s.Records[i] = DailyRecord{
			StationID:     Some(22854),
			Year:          Some(float64(d.Year())),
			Month:         Some(float64(d.Month())),
			Day:           Some(float64(d.Day())),
			TMin:          Some(temp - 5),
			Temp:          Some(temp),
			TMax:          Some(temp + 5),
			Precipitation: Some(0),
			Date:          Date{Time: d, Valid: true},
			Line:          i + 1,
		}
	}
	return s
}

func hduValues(recs []HeatRecord) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.HDU
	}
	return out
}
