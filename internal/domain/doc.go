// Package domain models daily weather-station records and the degree-day
// model that turns them into per-year generation estimates.
//
// # Data Source
//
// Each station is one text file of daily observations, one row per day, with
// no header row and eight positional ';'-delimited fields:
//
//	id; year; month; day; Tmin; temp; Tmax; precipitation
//	22854; 2017; 4; 12; 3.1; 9.8; 15.2; 0
//
// A backslash escapes the following character, so "\;" is a literal ';'
// inside a field. Whitespace following a delimiter is ignored. Fields that
// are empty or not numeric are missing values, never parse failures; a
// station's row count is preserved exactly because completeness is judged
// by comparing row counts across stations.
//
// Station coordinates come from a separate ';'-delimited file with three
// fields per row: id; lat; lon.
//
// # Degree-Day Model
//
// Heat degree units (HDU) measure how much a day's mean temperature exceeds
// the development threshold of the organism:
//
//	hdu = max(temp - threshold, 0)
//
// A trailing window of W days (the organism's life span) accumulates HDU.
// When more than [ColdDayLimit] of the W days contributed no heat at all, the
// life cycle is considered reset and the window sum is forced to 0. A day
// qualifies when its window sum strictly exceeds the degree-day requirement
// for one full generation (requiredDD).
//
// # Yearly Reduction
//
// Qualifying days are grouped per station and calendar year into a
// [YearSummary]: first and last qualifying date, the mean station id over
// those days, the total unwindowed HDU and the fractional generation count
// totalHdu / requiredDD.
//
// # Station Filtering
//
// Only stations whose series is as long as the longest uploaded series are
// modeled. Among those, a station with a missing temperature strictly inside
// the active season (start month < month < end month) is dropped; remaining
// gaps are filled with zero.
package domain
