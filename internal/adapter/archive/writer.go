package archive

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/degree-day-etl/internal/domain"
)

// Header is the column row of every yearly table.
var Header = []string{
	"firstQualifyingDate",
	"lastQualifyingDate",
	"meanStationId",
	"totalHdu",
	"generations",
	"stationId",
	"lat",
	"lon",
	"year",
}

// YearFileName is the name of the table for year inside archives and
// output directories.
func YearFileName(year int) string {
	return fmt.Sprintf("generations_%d.csv", year)
}

// WriteYearTable writes rows as a ';'-delimited table with a header row.
func WriteYearTable(w io.Writer, rows []domain.JoinedRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.FirstQualifyingDate.Format(domain.DateLayout),
			r.LastQualifyingDate.Format(domain.DateLayout),
			formatFloat(r.MeanStationID),
			formatFloat(r.TotalHDU),
			formatFloat(r.Generations),
			formatFloat(r.StationID),
			formatFloat(r.Lat),
			formatFloat(r.Lon),
			strconv.Itoa(r.Year),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYearlyArchive writes one table per year into a zip archive, years
// ascending.
func WriteYearlyArchive(w io.Writer, set domain.YearlyOutputSet) error {
	zw := zip.NewWriter(w)
	for _, year := range set.Years() {
		fw, err := zw.Create(YearFileName(year))
		if err != nil {
			return fmt.Errorf("create %s: %w", YearFileName(year), err)
		}
		if err := WriteYearTable(fw, set[year]); err != nil {
			return fmt.Errorf("write %s: %w", YearFileName(year), err)
		}
	}
	return zw.Close()
}

// WriteYearlyFiles writes one table per year into dir, creating it when
// needed, and returns the paths written.
func WriteYearlyFiles(dir string, set domain.YearlyOutputSet) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(set))
	for _, year := range set.Years() {
		p := filepath.Join(dir, YearFileName(year))
		if err := writeFile(p, set[year]); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeFile(p string, rows []domain.JoinedRow) (err error) {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteYearTable(f, rows)
}

// formatFloat renders the shortest representation that round-trips. NaN
// coordinates become empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
