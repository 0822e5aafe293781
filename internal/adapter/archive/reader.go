// Package archive reads uploaded station archives and writes the per-year
// generation tables.
package archive

import (
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/degree-day-etl/internal/domain"
)

// DefaultStationDir is the archive folder that holds the station files.
const DefaultStationDir = "meteo_data_24"

// DefaultMaxExtractedBytes caps the decompressed size of all station
// entries read from one archive.
const DefaultMaxExtractedBytes int64 = 1 << 30

const stationExt = ".txt"

var errTooLarge = errors.New("decompressed station data exceeds limit")

// ReadStations returns the .txt entries whose parent folder is named dir,
// sorted by station name. The station name is the file name without its
// extension. Station entries may decompress to at most maxBytes in total;
// a non-positive maxBytes applies DefaultMaxExtractedBytes.
func ReadStations(r io.ReaderAt, size int64, dir string, maxBytes int64) ([]domain.StationFile, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArchive, err)
	}
	if dir == "" {
		dir = DefaultStationDir
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxExtractedBytes
	}
	remaining := maxBytes

	seen := make(map[string]string)
	var files []domain.StationFile
	for _, f := range zr.File {
		if !isStationEntry(f, dir) {
			continue
		}
		name := strings.TrimSuffix(path.Base(f.Name), stationExt)
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: station %s appears as %s and %s", domain.ErrInvalidArchive, name, prev, f.Name)
		}
		seen[name] = f.Name

		data, err := readEntry(f, remaining)
		if errors.Is(err, errTooLarge) {
			return nil, fmt.Errorf("%w: %w (%d bytes)", domain.ErrInvalidArchive, err, maxBytes)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidArchive, f.Name, err)
		}
		remaining -= int64(len(data))
		files = append(files, domain.StationFile{Name: name, Data: data})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in folder %s", domain.ErrNoStations, dir)
	}
	slices.SortFunc(files, func(a, b domain.StationFile) int {
		return strings.Compare(a.Name, b.Name)
	})
	return files, nil
}

func isStationEntry(f *zip.File, dir string) bool {
	if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, stationExt) {
		return false
	}
	if strings.HasPrefix(f.Name, "__MACOSX/") {
		return false
	}
	return path.Base(path.Dir(f.Name)) == dir
}

// readEntry reads at most limit bytes of f. The declared size is not
// trusted; the limit applies to the bytes actually inflated.
func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, errTooLarge
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}
