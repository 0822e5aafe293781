package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/degree-day-etl/internal/config"
	"github.com/couchcryptid/degree-day-etl/internal/domain"
)

// GenerationMessage is the JSON value published for each joined row.
// Unknown coordinates are null.
type GenerationMessage struct {
	RunID               string   `json:"run_id"`
	Station             string   `json:"station"`
	Year                int      `json:"year"`
	FirstQualifyingDate string   `json:"first_qualifying_date"`
	LastQualifyingDate  string   `json:"last_qualifying_date"`
	MeanStationID       float64  `json:"mean_station_id"`
	TotalHDU            float64  `json:"total_hdu"`
	Generations         float64  `json:"generations"`
	StationID           float64  `json:"station_id"`
	Lat                 *float64 `json:"lat"`
	Lon                 *float64 `json:"lon"`
	PlaceName           string   `json:"place_name,omitempty"`
}

// Writer publishes joined rows to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes rows and writes them in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, runID string, rows []domain.JoinedRow) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(runID, rows[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("published generations", "run_id", runID, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a joined row into a message keyed by station
// and year, so reruns for the same station-year land on one partition.
func serializeToMessage(runID string, row domain.JoinedRow) (kafkago.Message, error) {
	year := strconv.Itoa(row.Year)
	data, err := json.Marshal(GenerationMessage{
		RunID:               runID,
		Station:             row.Station,
		Year:                row.Year,
		FirstQualifyingDate: row.FirstQualifyingDate.Format(domain.DateLayout),
		LastQualifyingDate:  row.LastQualifyingDate.Format(domain.DateLayout),
		MeanStationID:       row.MeanStationID,
		TotalHDU:            row.TotalHDU,
		Generations:         row.Generations,
		StationID:           row.StationID,
		Lat:                 finite(row.Lat),
		Lon:                 finite(row.Lon),
		PlaceName:           row.PlaceName,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize generation row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.Station + "-" + year),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "year", Value: []byte(year)},
		},
	}, nil
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
