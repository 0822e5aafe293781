package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	// Upload handling.
	MaxUploadBytes    int64  `envconfig:"MAX_UPLOAD_BYTES" default:"268435456" validate:"gt=0"`
	MaxExtractedBytes int64  `envconfig:"MAX_EXTRACTED_BYTES" default:"1073741824" validate:"gt=0"`
	StationDir        string `envconfig:"STATION_DIR" default:"meteo_data_24" validate:"required"`
	Workers           int    `envconfig:"WORKERS" default:"4" validate:"min=1,max=64"`

	// Kafka publishing of joined rows; disabled when no brokers are set.
	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS"`
	KafkaSinkTopic string   `envconfig:"KAFKA_SINK_TOPIC" default:"degree-day-generations" validate:"required_with=KafkaBrokers"`
	KafkaEnabled   bool     `ignored:"true"`

	// Mapbox geocoding configuration. MapboxEnabled follows MAPBOX_ENABLED
	// when set and otherwise whether a token is present.
	MapboxToken     string        `envconfig:"MAPBOX_TOKEN"`
	MapboxSwitch    *bool         `envconfig:"MAPBOX_ENABLED"`
	MapboxEnabled   bool          `ignored:"true"`
	MapboxTimeout   time.Duration `envconfig:"MAPBOX_TIMEOUT" default:"5s" validate:"gt=0"`
	MapboxCacheSize int           `envconfig:"MAPBOX_CACHE_SIZE" default:"1000" validate:"gt=0"`
}

// Load reads configuration from environment variables (and a .env file when
// present), applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0

	cfg.MapboxEnabled = cfg.MapboxToken != ""
	if cfg.MapboxSwitch != nil {
		cfg.MapboxEnabled = *cfg.MapboxSwitch
	}

	if err := newValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return &cfg, nil
}

// newValidator reports failing fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("envconfig"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}
