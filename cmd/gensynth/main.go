// Command gensynth writes a deterministic synthetic dataset: one daily
// weather file per station plus a coordinate file. Some stations can be cut
// short or given an in-season gap so every filtering path is exercised.
//
// Usage:
//
//	go run ./cmd/gensynth -out data -stations 20 -years 3 -zip
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/degree-day-etl/internal/adapter/archive"
)

const firstStationID = 22850

type options struct {
	stations  int
	startYear int
	years     int
	seed      uint64
	short     int // stations missing their final week
	gaps      int // stations with a missing summer temperature
}

type dataset struct {
	stations map[string][]byte // station name -> file body
	coords   []byte
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	out := flag.String("out", "data", "output folder")
	writeZip := flag.Bool("zip", false, "also write stations.zip for uploading")
	flag.IntVar(&opts.stations, "stations", 10, "number of stations")
	flag.IntVar(&opts.startYear, "start-year", 2017, "first calendar year")
	flag.IntVar(&opts.years, "years", 2, "number of calendar years")
	flag.Uint64Var(&opts.seed, "seed", 1, "random seed")
	flag.IntVar(&opts.short, "short", 1, "stations with truncated series")
	flag.IntVar(&opts.gaps, "gaps", 1, "stations with an active-season gap")
	flag.Parse()

	if opts.stations < 1 || opts.years < 1 {
		return fmt.Errorf("-stations and -years must be positive")
	}

	ds := generate(opts)

	stationDir := filepath.Join(*out, archive.DefaultStationDir)
	if err := os.MkdirAll(stationDir, 0o755); err != nil {
		return err
	}
	for name, body := range ds.stations {
		if err := os.WriteFile(filepath.Join(stationDir, name+".txt"), body, 0o600); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(*out, "coords.csv"), ds.coords, 0o600); err != nil {
		return err
	}
	log.Printf("wrote %d stations to %s", len(ds.stations), stationDir)

	if *writeZip {
		zipPath := filepath.Join(*out, "stations.zip")
		f, err := os.Create(zipPath)
		if err != nil {
			return err
		}
		if err := writeStationZip(f, ds); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Printf("wrote %s", zipPath)
	}
	return nil
}

// generate builds the dataset. The same options always yield the same bytes.
func generate(opts options) dataset {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	start := time.Date(opts.startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(opts.startYear+opts.years, time.January, 1, 0, 0, 0, 0, time.UTC)

	ds := dataset{stations: make(map[string][]byte, opts.stations)}
	var coords bytes.Buffer
	coords.WriteString("id;lat;lon\n")

	for i := range opts.stations {
		id := firstStationID + i
		offset := rng.NormFloat64() * 1.5
		lastDay := end
		if i < opts.short {
			lastDay = end.AddDate(0, 0, -7)
		}
		gapDay := time.Time{}
		if i >= opts.short && i < opts.short+opts.gaps {
			gapDay = time.Date(opts.startYear, time.July, 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)
		}

		var b bytes.Buffer
		for d := start; d.Before(lastDay); d = d.AddDate(0, 0, 1) {
			temp := seasonal(d) + offset + rng.NormFloat64()*2
			tmin := temp - 4 - rng.Float64()*3
			tmax := temp + 4 + rng.Float64()*3
			precip := math.Max(0, rng.NormFloat64()*3)

			tempField := fmt1(temp)
			if d.Equal(gapDay) {
				tempField = ""
			}
			fmt.Fprintf(&b, "%d;%d;%d;%d;%s;%s;%s;%s\n",
				id, d.Year(), int(d.Month()), d.Day(), fmt1(tmin), tempField, fmt1(tmax), fmt1(precip))
		}
		ds.stations[strconv.Itoa(id)] = b.Bytes()

		lat := 44 + rng.Float64()*2
		lon := 19 + rng.Float64()*2
		fmt.Fprintf(&coords, "%d; %s; %s\n", id, strconv.FormatFloat(lat, 'f', 4, 64), strconv.FormatFloat(lon, 'f', 4, 64))
	}
	ds.coords = coords.Bytes()
	return ds
}

// seasonal is a continental mean daily temperature curve peaking in late July.
func seasonal(d time.Time) float64 {
	phase := 2 * math.Pi * float64(d.YearDay()-200) / 365
	return 11 + 12*math.Cos(phase)
}

func fmt1(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

func writeStationZip(w io.Writer, ds dataset) error {
	zw := zip.NewWriter(w)
	for _, name := range slices.Sorted(maps.Keys(ds.stations)) {
		fw, err := zw.Create(archive.DefaultStationDir + "/" + name + ".txt")
		if err != nil {
			return err
		}
		if _, err := fw.Write(ds.stations[name]); err != nil {
			return err
		}
	}
	return zw.Close()
}
