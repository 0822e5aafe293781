package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/degree-day-etl/internal/domain"
	"github.com/couchcryptid/degree-day-etl/internal/observability"
)

const defaultWorkers = 4

// Publisher forwards the joined rows of a run to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, runID string, rows []domain.JoinedRow) error
}

// Input is everything one run needs.
type Input struct {
	Stations    []domain.StationFile
	Coordinates []byte
	Params      domain.Params
}

// Report counts what every stage kept and dropped.
type Report struct {
	StationsRead        int      `json:"stations_read"`
	MaxRows             int      `json:"max_rows"`
	DroppedIncomplete   []string `json:"dropped_incomplete"`
	DroppedActiveSeason []string `json:"dropped_active_season"`
	StationsModeled     int      `json:"stations_modeled"`
	InvalidDates        int      `json:"invalid_dates"`
	QualifyingRows      int      `json:"qualifying_rows"`
	YearSummaries       int      `json:"year_summaries"`
	CoordinateRows      int      `json:"coordinate_rows"`
	CoordinatesInvalid  int      `json:"coordinates_invalid"`
	SummariesUnmatched  int      `json:"summaries_unmatched"`
	JoinedRows          int      `json:"joined_rows"`
	Years               int      `json:"years"`
	Published           bool     `json:"published"`
}

// Result is the outcome of a successful run.
type Result struct {
	RunID     string                 `json:"run_id"`
	CreatedAt time.Time              `json:"created_at"`
	Duration  time.Duration          `json:"duration"`
	Params    domain.Params          `json:"params"`
	Report    Report                 `json:"report"`
	Output    domain.YearlyOutputSet `json:"-"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithGeocoder enables place-name enrichment of joined rows.
func WithGeocoder(g domain.Geocoder) Option {
	return func(p *Pipeline) { p.geocoder = g }
}

// WithPublisher sends the joined rows of every run to pub.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithClock overrides the clock used for run timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithWorkers bounds the per-station fan-out. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n >= 1 {
			p.workers = n
		}
	}
}

// WithStationHook registers a callback invoked once per station after it is
// parsed. It may be called concurrently.
func WithStationHook(fn func(station string)) Option {
	return func(p *Pipeline) { p.onStation = fn }
}

// Pipeline runs the degree-day model over a set of station files.
type Pipeline struct {
	logger    *slog.Logger
	metrics   *observability.Metrics
	geocoder  domain.Geocoder
	publisher Publisher
	clock     clockwork.Clock
	workers   int
	onStation func(string)
	ready     atomic.Bool
}

// New creates a Pipeline.
func New(logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetReady marks the pipeline as able to accept runs.
func (p *Pipeline) SetReady(ready bool) {
	p.ready.Store(ready)
}

// CheckReadiness returns nil once the service has finished starting up.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline is not ready")
	}
	return nil
}

// Run executes every stage over in and returns the per-year output. Input
// shape problems are returned as errors matching domain.IsInputError.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	start := p.clock.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	logger.Info("run started",
		"stations", len(in.Stations),
		"mosquito_life", in.Params.MosquitoLife,
		"threshold", in.Params.Threshold,
		"required_dd", in.Params.RequiredDD,
		"start_month", in.Params.StartMonth,
		"end_month", in.Params.EndMonth,
	)

	report, output, err := p.run(ctx, logger, runID, in)
	elapsed := p.clock.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())

	if err != nil {
		outcome := observability.OutcomeError
		if domain.IsInputError(err) {
			outcome = observability.OutcomeRejected
		}
		p.metrics.RunsTotal.WithLabelValues(outcome).Inc()
		logger.Warn("run failed", "outcome", outcome, "error", err)
		return nil, err
	}

	p.metrics.RunsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
	logger.Info("run finished",
		"duration", elapsed,
		"stations_modeled", report.StationsModeled,
		"joined_rows", report.JoinedRows,
		"years", report.Years,
	)

	return &Result{
		RunID:     runID,
		CreatedAt: start,
		Duration:  elapsed,
		Params:    in.Params,
		Report:    report,
		Output:    output,
	}, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, runID string, in Input) (Report, domain.YearlyOutputSet, error) {
	var report Report

	if err := in.Params.Validate(); err != nil {
		return report, nil, err
	}
	if len(in.Stations) == 0 {
		return report, nil, domain.ErrNoStations
	}

	coords, coordReport, err := domain.ParseCoordinates(bytes.NewReader(in.Coordinates))
	if err != nil {
		return report, nil, fmt.Errorf("coordinates: %w", err)
	}
	report.CoordinateRows = coordReport.Rows
	report.CoordinatesInvalid = coordReport.InvalidIDs
	p.metrics.CoordinatesInvalid.Add(float64(coordReport.InvalidIDs))
	if coordReport.InvalidIDs > 0 {
		logger.Warn("coordinate rows without numeric station id dropped", "count", coordReport.InvalidIDs)
	}

	series, err := p.parseStations(ctx, in.Stations)
	if err != nil {
		return report, nil, err
	}
	report.StationsRead = len(series)
	p.metrics.StationsRead.Add(float64(len(series)))
	for _, s := range series {
		report.InvalidDates += domain.CountInvalidDates(s)
	}
	p.metrics.InvalidDates.Add(float64(report.InvalidDates))

	retained, filter := domain.FilterComplete(series, in.Params.StartMonth, in.Params.EndMonth)
	report.MaxRows = filter.MaxRows
	report.DroppedIncomplete = filter.Incomplete
	report.DroppedActiveSeason = filter.ActiveSeason
	report.StationsModeled = len(retained)
	p.recordDrops(logger, domain.DropIncomplete, filter.Incomplete)
	p.recordDrops(logger, domain.DropActiveSeason, filter.ActiveSeason)

	summaries, qualifying, err := p.modelStations(ctx, retained, in.Params)
	if err != nil {
		return report, nil, err
	}
	report.QualifyingRows = qualifying
	report.YearSummaries = len(summaries)
	p.metrics.QualifyingRows.Add(float64(qualifying))

	rows, unmatched := domain.JoinCoordinates(summaries, coords)
	report.SummariesUnmatched = unmatched
	report.JoinedRows = len(rows)
	p.metrics.SummariesUnmatched.Add(float64(unmatched))
	if unmatched > 0 {
		logger.Warn("year summaries without coordinates dropped", "count", unmatched)
	}

	rows = domain.EnrichWithPlaceNames(ctx, rows, p.geocoder, logger)

	output := domain.PartitionByYear(rows)
	report.Years = len(output)
	p.metrics.YearsProduced.Add(float64(len(output)))

	report.Published = p.publish(ctx, logger, runID, rows)

	return report, output, nil
}

// parseStations parses every station file concurrently.
// Results are placed by name order regardless of scheduling.
func (p *Pipeline) parseStations(ctx context.Context, files []domain.StationFile) ([]domain.StationSeries, error) {
	files = slices.Clone(files)
	slices.SortStableFunc(files, func(a, b domain.StationFile) int {
		return strings.Compare(a.Name, b.Name)
	})

	series := make([]domain.StationSeries, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := domain.ParseStationSeries(f.Name, f.Data)
			if err != nil {
				return err
			}
			series[i] = s
			if p.onStation != nil {
				p.onStation(f.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}

// modelStations fans the per-station model out over the worker pool and
// concatenates the summaries in station order. Only retained stations are
// order-checked, so a station dropped by the filter never fails the run.
func (p *Pipeline) modelStations(ctx context.Context, retained []domain.StationSeries, params domain.Params) ([]domain.YearSummary, int, error) {
	outcomes := make([]stationOutcome, len(retained))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, s := range retained {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o, err := modelStation(s, params)
			if err != nil {
				return err
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var (
		summaries  []domain.YearSummary
		qualifying int
	)
	for _, o := range outcomes {
		summaries = append(summaries, o.summaries...)
		qualifying += o.qualifying
	}
	return summaries, qualifying, nil
}

func (p *Pipeline) recordDrops(logger *slog.Logger, reason domain.DropReason, stations []string) {
	if len(stations) == 0 {
		return
	}
	p.metrics.StationsDropped.WithLabelValues(string(reason)).Add(float64(len(stations)))
	for _, name := range stations {
		logger.Info("station dropped", "station", name, "reason", reason)
	}
}

// publish is best effort: a failing sink is logged and counted but never
// fails the run.
func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, runID string, rows []domain.JoinedRow) bool {
	if p.publisher == nil || len(rows) == 0 {
		return false
	}
	if err := p.publisher.Publish(ctx, runID, rows); err != nil {
		p.metrics.PublishErrors.Inc()
		logger.Error("publish rows failed", "error", err, "rows", len(rows))
		return false
	}
	p.metrics.RowsPublished.Add(float64(len(rows)))
	return true
}
