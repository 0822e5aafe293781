package domain

import (
	"math"
	"time"
)

// Value is a numeric field that may be missing.
type Value struct {
	Float float64
	Valid bool
}

// Some returns a present value.
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Missing returns an absent value.
func Missing() Value {
	return Value{}
}

// Or returns the value, or def when it is missing.
func (v Value) Or(def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.Float
}

// integral reports the value as an int when it is present and has no
// fractional part.
func (v Value) integral() (int, bool) {
	if !v.Valid || math.IsInf(v.Float, 0) || v.Float != math.Trunc(v.Float) {
		return 0, false
	}
	if v.Float > math.MaxInt32 || v.Float < math.MinInt32 {
		return 0, false
	}
	return int(v.Float), true
}

// Date is a calendar day that may be invalid when the source row's year,
// month and day do not form a real date.
type Date struct {
	Time  time.Time
	Valid bool
}

// Year returns the calendar year, ok=false for an invalid date.
func (d Date) Year() (int, bool) {
	if !d.Valid {
		return 0, false
	}
	return d.Time.Year(), true
}

// Month returns the calendar month, ok=false for an invalid date.
func (d Date) Month() (time.Month, bool) {
	if !d.Valid {
		return 0, false
	}
	return d.Time.Month(), true
}

func (d Date) String() string {
	if !d.Valid {
		return "invalid"
	}
	return d.Time.Format(DateLayout)
}

// DateLayout is the calendar-date format used for parsing and output.
const DateLayout = "2006-01-02"

// DailyRecord is one parsed row of a station file.
type DailyRecord struct {
	StationID     Value
	Year          Value
	Month         Value
	Day           Value
	TMin          Value
	Temp          Value
	TMax          Value
	Precipitation Value
	Date          Date

	// Line is the 1-based line number in the source file.
	Line int
}

// StationFile is the raw content of one uploaded station file.
type StationFile struct {
	Name string
	Data []byte
}

// StationSeries is a station's records in file order.
type StationSeries struct {
	Name    string
	Records []DailyRecord
}

// Len returns the number of rows in the series.
func (s StationSeries) Len() int { return len(s.Records) }

// HeatRecord is a DailyRecord with its heat units and, once the series has
// enough history, the trailing window accumulation.
type HeatRecord struct {
	DailyRecord
	HDU       float64
	WindowSum float64
	HasWindow bool
}

// YearSummary is the reduction of one station's qualifying days in one year.
type YearSummary struct {
	Station             string
	StationID           float64 // mean of the id field over qualifying days
	Year                int
	FirstQualifyingDate time.Time
	LastQualifyingDate  time.Time
	TotalHDU            float64
	Generations         float64
}

// StationCoordinate is one row of the coordinate file with a numeric id.
type StationCoordinate struct {
	StationID float64
	Lat       float64
	Lon       float64
}

// JoinedRow is a YearSummary matched to a station coordinate. Its field
// order is the column order of the per-year output tables.
type JoinedRow struct {
	FirstQualifyingDate time.Time `json:"first_qualifying_date"`
	LastQualifyingDate  time.Time `json:"last_qualifying_date"`
	MeanStationID       float64   `json:"mean_station_id"`
	TotalHDU            float64   `json:"total_hdu"`
	Generations         float64   `json:"generations"`
	StationID           float64   `json:"station_id"`
	Lat                 float64   `json:"lat"`
	Lon                 float64   `json:"lon"`
	Year                int       `json:"year"`

	Station   string `json:"station"`
	PlaceName string `json:"place_name,omitempty"`
}
