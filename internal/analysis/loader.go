package analysis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/KaramelBytes/cafesales-cli/internal/logger"
	"github.com/KaramelBytes/cafesales-cli/internal/source"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/KaramelBytes/cafesales-cli/internal/analysis")

// Options controls loading. It is passed explicitly by the caller; the core
// keeps no process-wide configuration.
type Options struct {
	SourcePath string
	// Range optionally narrows the cleaned dataset to a closed date interval.
	Range DateRange
	// Source controls decoding (delimiter, XLSX sheet).
	Source source.Options
	// DecimalSeparator defaults to '.'; ThousandsSeparator is stripped when set.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns the options for a plain comma-separated file.
func DefaultOptions() Options {
	return Options{DecimalSeparator: '.'}
}

// LoadResult carries a load's outputs together with its diagnostics.
type LoadResult struct {
	Dataset  *Dataset
	Summary  Summary
	Stats    CleanStats
	Outliers []OutlierReport
	Elapsed  time.Duration
}

// Load reads, validates and cleans the source, applies the optional date
// range and summarizes the result. Structural failures return no dataset.
func Load(ctx context.Context, opt Options) (*Dataset, Summary, error) {
	res, err := LoadDetailed(ctx, opt)
	if err != nil {
		return nil, Summary{}, err
	}
	return res.Dataset, res.Summary, nil
}

// LoadDetailed is Load plus coercion statistics and outlier diagnostics.
func LoadDetailed(ctx context.Context, opt Options) (res *LoadResult, err error) {
	ctx, span := tracer.Start(ctx, "analysis.Load", trace.WithAttributes(attribute.String("source.path", opt.SourcePath)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	log := logger.FromContext(ctx)
	start := time.Now()

	tbl, err := readSource(ctx, opt)
	if err != nil {
		log.Error().Err(err).Str("path", opt.SourcePath).Msg("error loading data")
		return nil, err
	}
	log.Debug().Str("file", tbl.Name).Int("rows", len(tbl.Rows)).Strs("columns", tbl.Header).Msg("raw data")

	_, cleanSpan := tracer.Start(ctx, "analysis.Clean")
	ds, stats, err := Clean(tbl, opt)
	cleanSpan.End()
	if err != nil {
		log.Error().Err(err).Str("path", opt.SourcePath).Msg("error validating data")
		return nil, err
	}
	if stats.DroppedRows > 0 {
		log.Warn().Int("dropped", stats.DroppedRows).Int("kept", stats.Kept).Msg("removed rows with unparseable transaction date")
	}
	for f, n := range stats.Invalid {
		log.Debug().Str("field", string(f)).Int("count", n).Msg("coerced invalid values to missing")
	}

	if !opt.Range.IsZero() {
		before := ds.Len()
		ds = Filter(ds, opt.Range)
		log.Info().Str("range", opt.Range.String()).Int("before", before).Int("after", ds.Len()).Msg("filtered by date")
	}

	// Indices refer to the returned (filtered) dataset.
	outliers := DetectAllOutliers(ds)
	for _, o := range outliers {
		if o.Count() > 0 {
			log.Warn().Str("field", string(o.Field)).Int("count", o.Count()).
				Msgf("Found %d outliers in %s: range [%.2f, %.2f]", o.Count(), o.Field, o.Min, o.Max)
		}
	}

	sum, err := Summarize(ds)
	if err != nil {
		return nil, err
	}
	res = &LoadResult{Dataset: ds, Summary: sum, Stats: stats, Outliers: outliers, Elapsed: time.Since(start)}
	span.SetAttributes(attribute.Int("records.kept", ds.Len()), attribute.Int("records.dropped", stats.DroppedRows))
	log.Info().Int("records", ds.Len()).Dur("elapsed", res.Elapsed).Msgf("Successfully loaded %d records", ds.Len())
	return res, nil
}

func readSource(ctx context.Context, opt Options) (*source.Table, error) {
	_, span := tracer.Start(ctx, "analysis.readSource")
	defer span.End()
	if opt.SourcePath == "" {
		return nil, &NotFoundError{Path: opt.SourcePath}
	}
	info, err := os.Stat(opt.SourcePath)
	if err != nil {
		return nil, &NotFoundError{Path: opt.SourcePath, Err: err}
	}
	if info.IsDir() {
		return nil, &NotFoundError{Path: opt.SourcePath, Err: fmt.Errorf("is a directory: %w", fs.ErrNotExist)}
	}
	tbl, err := source.Read(opt.SourcePath, opt.Source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, &NotFoundError{Path: opt.SourcePath, Err: err}
		}
		return nil, fmt.Errorf("read source: %w", err)
	}
	return tbl, nil
}
