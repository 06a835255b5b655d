package app

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"monthly-ohlcv/internal/saver"
)

// Flags returns the command flags; every flag can also be set from env.
// Defaults come from DefaultConfig so SAVE_FORMAT still follows PROFILE.
func Flags() []cli.Flag {
	def := DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Usage:   "Input source (csv, packets, polygon)",
			Value:   def.Source,
			Sources: cli.EnvVars("SOURCE"),
		},
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Daily bars CSV file (source=csv)",
			Value:   def.InputCSV,
			Sources: cli.EnvVars("INPUT_CSV"),
		},
		&cli.StringFlag{
			Name:    "packets-dir",
			Usage:   "Crawler packet directory {dir}/{TICKER}/*.parquet|json (source=packets)",
			Value:   def.PacketsDir,
			Sources: cli.EnvVars("PACKETS_DIR"),
		},
		&cli.StringFlag{
			Name:    "tickers-file",
			Aliases: []string{"t"},
			Usage:   "Restrict to tickers listed in `FILE` (.txt or .json); required for polygon",
			Sources: cli.EnvVars("TICKERS_FILE"),
		},
		&cli.StringFlag{
			Name:    "polygon-keys",
			Usage:   "Comma separated Polygon API keys (source=polygon)",
			Sources: cli.EnvVars("POLYGON_API_KEYS", "POLYGON_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "from",
			Usage:   "First day to request in `YYYY-MM-DD` format (source=polygon)",
			Sources: cli.EnvVars("FROM"),
		},
		&cli.StringFlag{
			Name:    "to",
			Usage:   "Last day to request in `YYYY-MM-DD` format (source=polygon). Defaults to today.",
			Sources: cli.EnvVars("TO"),
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output directory",
			Value:   def.OutputDir,
			Sources: cli.EnvVars("OUTPUT_DIR"),
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   fmt.Sprintf("Output format (%s)", strings.Join(saver.Formats, ", ")),
			Value:   def.SaveFormat,
			Sources: cli.EnvVars("SAVE_FORMAT"),
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Instruments processed in parallel",
			Value:   defaultWorkers,
			Sources: cli.EnvVars("WORKERS"),
		},
		&cli.IntFlag{
			Name:    "expect-months",
			Usage:   "Abort the run unless every instrument has exactly this many months (0 = off)",
			Sources: cli.EnvVars("EXPECT_MONTHS"),
		},
		&cli.StringFlag{
			Name:    "metrics-file",
			Usage:   "Write Prometheus text metrics to `FILE` after each run",
			Sources: cli.EnvVars("METRICS_FILE"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			Value:   def.LogLevel,
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "text or json",
			Value:   def.LogFormat,
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
		&cli.StringFlag{
			Name:    "daily-at",
			Usage:   "Repeat the run every day at `HH:MM` UTC until interrupted",
			Sources: cli.EnvVars("DAILY_AT"),
		},
	}
}

// ConfigFromCommand reads the parsed flags into a Config.
func ConfigFromCommand(cmd *cli.Command) *Config {
	return &Config{
		Source:         strings.ToLower(strings.TrimSpace(cmd.String("source"))),
		InputCSV:       cmd.String("input"),
		PacketsDir:     cmd.String("packets-dir"),
		TickersFile:    cmd.String("tickers-file"),
		PolygonAPIKeys: ParseAPIKeys(cmd.String("polygon-keys")),
		From:           cmd.String("from"),
		To:             cmd.String("to"),
		OutputDir:      cmd.String("out"),
		SaveFormat:     strings.ToLower(strings.TrimSpace(cmd.String("format"))),
		Workers:        int(cmd.Int("workers")),
		ExpectMonths:   int(cmd.Int("expect-months")),
		MetricsFile:    cmd.String("metrics-file"),
		LogLevel:       strings.ToLower(cmd.String("log-level")),
		LogFormat:      strings.ToLower(cmd.String("log-format")),
		DailyAt:        cmd.String("daily-at"),
	}
}
