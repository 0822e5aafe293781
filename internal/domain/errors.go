package domain

import "errors"

// Input-shape errors reject a run before any output is produced.
var (
	ErrMalformedRow     = errors.New("malformed row")
	ErrUnorderedSeries  = errors.New("station series is not in chronological order")
	ErrNoStations       = errors.New("no station files found")
	ErrInvalidArchive   = errors.New("invalid station archive")
	ErrInvalidParams    = errors.New("invalid run parameters")
	ErrEmptyCoordinates = errors.New("coordinate file has no rows")
)

var inputErrors = []error{
	ErrMalformedRow,
	ErrUnorderedSeries,
	ErrNoStations,
	ErrInvalidArchive,
	ErrInvalidParams,
	ErrEmptyCoordinates,
}

// IsInputError reports whether err was caused by the caller's input rather
// than by the service.
func IsInputError(err error) bool {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
