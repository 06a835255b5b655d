package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"monthly-ohlcv/internal/pipeline"
)

const (
	dateLayout     = "2006-01-02"
	defaultWorkers = 4
)

// Config holds application configuration from flags and env
type Config struct {
	Source         string   `validate:"oneof=csv packets polygon"`
	InputCSV       string   `validate:"required_if=Source csv"`
	PacketsDir     string   `validate:"required_if=Source packets"`
	TickersFile    string   `validate:"required_if=Source polygon"`
	PolygonAPIKeys []string `validate:"required_if=Source polygon"`
	From           string   `validate:"omitempty,datetime=2006-01-02"`
	To             string   `validate:"omitempty,datetime=2006-01-02"`
	OutputDir      string   `validate:"required"`
	SaveFormat     string   `validate:"oneof=csv json parquet sqlite"`
	Workers        int      `validate:"min=1,max=256"`
	ExpectMonths   int      `validate:"min=0"`
	MetricsFile    string
	LogLevel       string `validate:"oneof=debug info warn warning error"` // debug | info | warn | error
	LogFormat      string `validate:"oneof=text json"`
	DailyAt        string `validate:"omitempty,datetime=15:04"` // HH:MM UTC, empty = run once
}

// DefaultConfig returns the configuration used when no flag or env overrides it.
func DefaultConfig() *Config {
	return &Config{
		Source:     getEnv("SOURCE", "csv"),
		InputCSV:   getEnv("INPUT_CSV", "data/input.csv"),
		PacketsDir: getEnv("PACKETS_DIR", filepath.Join("data", "Polygon")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join("data", "output")),
		SaveFormat: getSaveFormat(),
		Workers:    defaultWorkers,
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks the configuration before any work starts.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	from, to, err := c.Period()
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return fmt.Errorf("invalid config: from %s is after to %s", c.From, c.To)
	}
	return nil
}

// Period parses From/To; an empty value is the zero time.
func (c *Config) Period() (from, to time.Time, err error) {
	if c.From != "" {
		if from, err = time.ParseInLocation(dateLayout, c.From, time.UTC); err != nil {
			return from, to, fmt.Errorf("invalid from date %q: %w", c.From, err)
		}
	}
	if c.To != "" {
		if to, err = time.ParseInLocation(dateLayout, c.To, time.UTC); err != nil {
			return from, to, fmt.Errorf("invalid to date %q: %w", c.To, err)
		}
	}
	return from, to, nil
}

// PipelineOptions maps the config onto one pipeline run.
func (c *Config) PipelineOptions(instruments []string) pipeline.Options {
	return pipeline.Options{
		OutputDir:    c.OutputDir,
		Workers:      c.Workers,
		ExpectMonths: c.ExpectMonths,
		Instruments:  instruments,
		MetricsPath:  c.MetricsFile,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getSaveFormat() string {
	if v := os.Getenv("SAVE_FORMAT"); v != "" {
		return v
	}
	switch strings.ToLower(os.Getenv("PROFILE")) {
	case "prod", "production":
		return "parquet"
	default:
		return "csv"
	}
}

// ParseAPIKeys splits a comma separated key list, dropping blanks.
func ParseAPIKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
