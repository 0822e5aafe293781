package pipeline

import (
	"github.com/couchcryptid/degree-day-etl/internal/domain"
)

// stationOutcome is what modeling one retained station yields.
type stationOutcome struct {
	qualifying int
	summaries  []domain.YearSummary
}

// modelStation runs the heat, qualifying and yearly reduction stages for a
// single zero-filled station series. A series whose valid dates do not
// strictly increase is rejected.
func modelStation(s domain.StationSeries, params domain.Params) (stationOutcome, error) {
	if err := domain.CheckChronological(s); err != nil {
		return stationOutcome{}, err
	}

	threshold := float64(params.Threshold)
	required := float64(params.RequiredDD)

	heat := domain.ComputeHeat(s, threshold, params.MosquitoLife)
	qualifying := domain.Qualifying(heat, required)

	return stationOutcome{
		qualifying: len(qualifying),
		summaries:  domain.ReduceYears(s.Name, qualifying, required),
	}, nil
}
