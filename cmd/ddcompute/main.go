// Command ddcompute runs the degree-day model over a local folder of
// station files and writes one generations table per year.
//
// Usage:
//
//	go run ./cmd/ddcompute \
//	  -station-dir data/meteo_data_24 \
//	  -coords data/coords.csv \
//	  -out out/ \
//	  -mosquito-life 30 -threshold 10 -required-dd 250 \
//	  -start-month 4 -end-month 10
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"

	"github.com/couchcryptid/degree-day-etl/internal/adapter/archive"
	"github.com/couchcryptid/degree-day-etl/internal/domain"
	"github.com/couchcryptid/degree-day-etl/internal/observability"
	"github.com/couchcryptid/degree-day-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	stationDir := flag.String("station-dir", archive.DefaultStationDir, "folder of <station>.txt files")
	coordsPath := flag.String("coords", "", "';'-delimited id;lat;lon coordinate file")
	out := flag.String("out", "generations", "output folder, or a .zip file")
	workers := flag.Int("workers", 4, "stations processed in parallel")
	logLevel := flag.String("log-level", "warn", "debug, info, warn or error")

	var params domain.Params
	flag.IntVar(&params.MosquitoLife, "mosquito-life", 30, "window size in days")
	flag.IntVar(&params.Threshold, "threshold", 10, "development threshold temperature")
	flag.IntVar(&params.RequiredDD, "required-dd", 250, "degree-days per generation")
	flag.IntVar(&params.StartMonth, "start-month", 4, "active season start month (exclusive)")
	flag.IntVar(&params.EndMonth, "end-month", 10, "active season end month (exclusive)")
	flag.Parse()

	if *coordsPath == "" {
		flag.Usage()
		return errors.New("missing required flag: -coords")
	}

	stations, err := readStationDir(*stationDir)
	if err != nil {
		return err
	}
	coords, err := os.ReadFile(*coordsPath)
	if err != nil {
		return fmt.Errorf("read coordinates: %w", err)
	}

	logger := observability.NewLoggerTo(os.Stderr, "text", observability.ParseLevel(*logLevel))
	bar := progressbar.Default(int64(len(stations)), "parsing stations")
	p := pipeline.New(logger, observability.NewMetrics(),
		pipeline.WithWorkers(*workers),
		pipeline.WithStationHook(func(string) { _ = bar.Add(1) }),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx, pipeline.Input{Stations: stations, Coordinates: coords, Params: params})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if err := writeOutput(*out, res.Output); err != nil {
		return err
	}
	printReport(os.Stdout, res)
	return nil
}

func readStationDir(dir string) ([]domain.StationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read station folder: %w", err)
	}
	var files []domain.StationFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, domain.StationFile{Name: strings.TrimSuffix(e.Name(), ".txt"), Data: data})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", domain.ErrNoStations, dir)
	}
	return files, nil
}

func writeOutput(out string, set domain.YearlyOutputSet) (err error) {
	if !strings.HasSuffix(strings.ToLower(out), ".zip") {
		paths, werr := archive.WriteYearlyFiles(out, set)
		for _, p := range paths {
			fmt.Println("wrote", p)
		}
		return werr
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := archive.WriteYearlyArchive(f, set); err != nil {
		return err
	}
	fmt.Println("wrote", out)
	return nil
}

func printReport(w io.Writer, res *pipeline.Result) {
	r := res.Report
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", res.RunID)
	fmt.Fprintf(tw, "duration\t%s\n", res.Duration)
	fmt.Fprintf(tw, "stations read\t%d\n", r.StationsRead)
	fmt.Fprintf(tw, "dropped (incomplete)\t%d\t%s\n", len(r.DroppedIncomplete), strings.Join(r.DroppedIncomplete, " "))
	fmt.Fprintf(tw, "dropped (active season gap)\t%d\t%s\n", len(r.DroppedActiveSeason), strings.Join(r.DroppedActiveSeason, " "))
	fmt.Fprintf(tw, "invalid dates\t%d\n", r.InvalidDates)
	fmt.Fprintf(tw, "qualifying rows\t%d\n", r.QualifyingRows)
	fmt.Fprintf(tw, "year summaries\t%d\n", r.YearSummaries)
	fmt.Fprintf(tw, "coordinate ids invalid\t%d\n", r.CoordinatesInvalid)
	fmt.Fprintf(tw, "summaries without coordinates\t%d\n", r.SummariesUnmatched)
	fmt.Fprintf(tw, "rows written\t%d\n", r.JoinedRows)
	fmt.Fprintf(tw, "years\t%v\n", res.Output.Years())
	_ = tw.Flush()
}
