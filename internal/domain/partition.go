package domain

import (
	"maps"
	"slices"
)

// YearlyOutputSet maps a calendar year to the joined rows whose first
// qualifying date falls in that year.
type YearlyOutputSet map[int][]JoinedRow

// PartitionByYear splits joined rows by their Year field, keeping the input
// order within each year.
func PartitionByYear(rows []JoinedRow) YearlyOutputSet {
	set := make(YearlyOutputSet)
	for _, r := range rows {
		set[r.Year] = append(set[r.Year], r)
	}
	return set
}

// Years returns the years in ascending order.
func (s YearlyOutputSet) Years() []int {
	return slices.Sorted(maps.Keys(s))
}

// RowCount returns the number of rows across all years.
func (s YearlyOutputSet) RowCount() int {
	n := 0
	for _, rows := range s {
		n += len(rows)
	}
	return n
}
