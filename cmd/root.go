package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cafesales-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/cafesales-cli/internal/config"
	"github.com/KaramelBytes/cafesales-cli/internal/logger"
	"github.com/KaramelBytes/cafesales-cli/internal/telemetry"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logLevel  string
	logFormat string
	traceOut  bool

	// Data flags shared by every command that loads a dataset
	flagStart     string
	flagEnd       string
	flagDelimiter string
	flagDecimal   string
	flagThousands string
	flagSheet     string

	// Loaded configuration
	cfg *cfgpkg.Global

	shutdownTracing telemetry.ShutdownFunc
)

// Version is stamped at build time.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "cafesales",
	Short: "Cafe Sales CLI: clean, validate and summarize cafe transaction data",
	Long: `cafesales loads cafe transaction exports (CSV/TSV/XLSX), cleans dirty values,
flags outliers and prints summaries and aggregate views. It can also serve the
same results as a read-only JSON API.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPostRunE: teardown,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.cafesales/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console|json (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&traceOut, "trace", false, "print OpenTelemetry spans to stderr")
}

// addDataFlags registers the flags that shape how a dataset is loaded.
func addDataFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flagStart, "start", "", "only include transactions on or after this date (YYYY-MM-DD)")
	f.StringVar(&flagEnd, "end", "", "only include transactions on or before this date (YYYY-MM-DD)")
	f.StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default by extension)")
	f.StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	f.StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	f.StringVar(&flagSheet, "sheet", "", "XLSX: sheet name or 1-based index")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Out: cmd.ErrOrStderr()})

	shutdownTracing = nil
	if traceOut {
		shutdown, err := telemetry.Setup(telemetry.Config{
			Exporter:       "stdout",
			Out:            cmd.ErrOrStderr(),
			PrettyPrint:    true,
			ServiceVersion: Version,
		})
		if err != nil {
			return err
		}
		shutdownTracing = shutdown
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, log))
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if shutdownTracing == nil {
		return nil
	}
	defer func() { shutdownTracing = nil }()
	return shutdownTracing(cmd.Context())
}

// loadOptions merges config values with command flags. A positional path
// overrides source_path.
func loadOptions(cmd *cobra.Command, args []string) (analysis.Options, error) {
	if cfg == nil {
		return analysis.Options{}, fmt.Errorf("no config loaded")
	}
	eff := *cfg
	if len(args) > 0 {
		eff.SourcePath = args[0]
	}
	fl := cmd.Flags()
	if fl.Changed("start") {
		eff.StartDate = flagStart
	}
	if fl.Changed("end") {
		eff.EndDate = flagEnd
	}
	if fl.Changed("sheet") {
		eff.Sheet = flagSheet
	}
	if fl.Changed("delimiter") {
		d, err := parseDelimiter(flagDelimiter)
		if err != nil {
			return analysis.Options{}, err
		}
		eff.Delimiter = d
	}
	if fl.Changed("decimal") {
		d, err := parseDecimal(flagDecimal)
		if err != nil {
			return analysis.Options{}, err
		}
		eff.DecimalSeparator = d
	}
	if fl.Changed("thousands") {
		t, err := parseThousands(flagThousands)
		if err != nil {
			return analysis.Options{}, err
		}
		eff.ThousandsSeparator = t
	}
	if err := eff.Validate(); err != nil {
		return analysis.Options{}, err
	}

	opt := analysis.DefaultOptions()
	opt.SourcePath = eff.SourcePath
	rng, err := analysis.ParseDateRange(eff.StartDate, eff.EndDate)
	if err != nil {
		return analysis.Options{}, err
	}
	opt.Range = rng
	opt.Source.Delimiter = cfgpkg.Rune(eff.Delimiter)
	if r := cfgpkg.Rune(eff.DecimalSeparator); r != 0 {
		opt.DecimalSeparator = r
	}
	opt.ThousandsSeparator = cfgpkg.Rune(eff.ThousandsSeparator)
	if eff.Sheet != "" {
		if idx, err := strconv.Atoi(eff.Sheet); err == nil {
			opt.Source.SheetIndex = idx
		} else {
			opt.Source.Sheet = eff.Sheet
		}
	}
	return opt, nil
}

func parseDelimiter(s string) (string, error) {
	switch strings.ToLower(s) {
	case ",", "comma":
		return ",", nil
	case "\t", "tab", `\t`:
		return "\t", nil
	case ";", "semicolon":
		return ";", nil
	case "|", "pipe":
		return "|", nil
	}
	return "", fmt.Errorf("unsupported --delimiter: %s", s)
}

func parseDecimal(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return ",", nil
	case ".", "dot":
		return ".", nil
	}
	return "", fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", s)
}

func parseThousands(s string) (string, error) {
	switch strings.ToLower(s) {
	case ",":
		return ",", nil
	case ".":
		return ".", nil
	case "space", " ":
		return " ", nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", s)
}

func logFrom(cmd *cobra.Command) zerolog.Logger {
	return logger.FromContext(cmd.Context())
}
