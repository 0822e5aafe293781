package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
)

const coordinateFieldCount = 3

// CoordinateReport counts the rows read from a coordinate file.
type CoordinateReport struct {
	Rows       int
	InvalidIDs int
}

// ParseCoordinates reads ';'-delimited id;lat;lon rows. Rows whose id is not
// numeric are skipped and counted; an unparseable lat or lon becomes NaN.
// A leading byte order mark is ignored.
func ParseCoordinates(r io.Reader) ([]StationCoordinate, CoordinateReport, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.Comma = fieldDelimiter
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		coords []StationCoordinate
		report CoordinateReport
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("%w: coordinates: %w", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)

		fields, err := trimFields(record, coordinateFieldCount)
		if err != nil {
			return nil, report, fmt.Errorf("coordinates line %d: %w", line, err)
		}
		report.Rows++

		id := parseValue(fields[0])
		if !id.Valid {
			report.InvalidIDs++
			continue
		}
		coords = append(coords, StationCoordinate{
			StationID: id.Float,
			Lat:       parseValue(fields[1]).Or(math.NaN()),
			Lon:       parseValue(fields[2]).Or(math.NaN()),
		})
	}

	if report.Rows == 0 {
		return nil, report, ErrEmptyCoordinates
	}
	return coords, report, nil
}

// JoinCoordinates inner-joins summaries to coordinates on exact equality of
// station id. A summary matching several coordinate rows yields one row per
// match, in coordinate file order. Unmatched summaries are dropped and
// counted.
func JoinCoordinates(summaries []YearSummary, coords []StationCoordinate) ([]JoinedRow, int) {
	byID := make(map[float64][]StationCoordinate, len(coords))
	for _, c := range coords {
		byID[c.StationID] = append(byID[c.StationID], c)
	}

	var (
		rows      []JoinedRow
		unmatched int
	)
	for _, s := range summaries {
		matches := byID[s.StationID]
		if len(matches) == 0 {
			unmatched++
			continue
		}
		for _, c := range matches {
			rows = append(rows, JoinedRow{
				FirstQualifyingDate: s.FirstQualifyingDate,
				LastQualifyingDate:  s.LastQualifyingDate,
				MeanStationID:       s.StationID,
				TotalHDU:            s.TotalHDU,
				Generations:         s.Generations,
				StationID:           c.StationID,
				Lat:                 c.Lat,
				Lon:                 c.Lon,
				Year:                s.FirstQualifyingDate.Year(),
				Station:             s.Station,
			})
		}
	}
	return rows, unmatched
}
