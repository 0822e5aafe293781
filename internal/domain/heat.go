package domain

// ColdDayLimit is the number of zero-heat days a window tolerates. A window
// with more zero days than this resets the life cycle and accumulates 0.
const ColdDayLimit = 4

// HeatUnits returns max(temp - threshold, 0).
func HeatUnits(temp, threshold float64) float64 {
	return max(temp-threshold, 0)
}

// ComputeHeat derives daily heat units for a zero-filled series and the
// trailing accumulation over window rows, inclusive of the current row.
// Rows before the window is full have HasWindow=false.
func ComputeHeat(s StationSeries, threshold float64, window int) []HeatRecord {
	out := make([]HeatRecord, len(s.Records))
	for i, rec := range s.Records {
		out[i] = HeatRecord{
			DailyRecord: rec,
			HDU:         HeatUnits(rec.Temp.Or(0), threshold),
		}
	}
	if window < 1 {
		return out
	}

	zeros := 0
	for i := range out {
		if out[i].HDU == 0 {
			zeros++
		}
		if i >= window && out[i-window].HDU == 0 {
			zeros--
		}
		if i < window-1 {
			continue
		}
		out[i].HasWindow = true
		if zeros > ColdDayLimit {
			out[i].WindowSum = 0
			continue
		}
		out[i].WindowSum = windowSum(out[i-window+1 : i+1])
	}
	return out
}

// windowSum adds the window left to right so every row's sum is computed
// independently of its neighbors.
func windowSum(recs []HeatRecord) float64 {
	sum := 0.0
	for _, r := range recs {
		sum += r.HDU
	}
	return sum
}

// Qualifying keeps the rows whose window accumulation strictly exceeds
// requiredDD.
func Qualifying(recs []HeatRecord, requiredDD float64) []HeatRecord {
	var out []HeatRecord
	for _, r := range recs {
		if r.HasWindow && r.WindowSum > requiredDD {
			out = append(out, r)
		}
	}
	return out
}
