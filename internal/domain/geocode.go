package domain

import (
	"context"
	"log/slog"
	"math"
)

type coordKey struct{ lat, lon float64 }

// EnrichWithPlaceNames looks up a place name for each distinct station
// coordinate and attaches it to the rows. A nil geocoder returns the rows
// unchanged; lookup failures leave PlaceName empty (graceful degradation).
func EnrichWithPlaceNames(ctx context.Context, rows []JoinedRow, geocoder Geocoder, logger *slog.Logger) []JoinedRow {
	if geocoder == nil || len(rows) == 0 {
		return rows
	}

	names := make(map[coordKey]string)
	out := make([]JoinedRow, len(rows))
	for i, row := range rows {
		out[i] = row
		if math.IsNaN(row.Lat) || math.IsNaN(row.Lon) {
			continue
		}
		key := coordKey{row.Lat, row.Lon}
		name, seen := names[key]
		if !seen {
			name = reverseLookup(ctx, geocoder, row, logger)
			names[key] = name
		}
		out[i].PlaceName = name
	}
	return out
}

func reverseLookup(ctx context.Context, geocoder Geocoder, row JoinedRow, logger *slog.Logger) string {
	result, err := geocoder.ReverseGeocode(ctx, row.Lat, row.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"station", row.Station,
			"lat", row.Lat,
			"lon", row.Lon,
			"error", err,
		)
		return ""
	}
	if result.PlaceName != "" {
		return result.PlaceName
	}
	return result.FormattedAddress
}
