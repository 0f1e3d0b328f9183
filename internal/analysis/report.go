package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Report bundles every consumer of one snapshot: summary, insights, outlier
// diagnostics and all aggregate views.
type Report struct {
	Summary  Summary
	Insights Insights
	Outliers []OutlierReport
	Views    map[ViewName]View
}

// BuildReport computes the summary, outliers and views concurrently. The
// consumers only read ds, so no coordination beyond the wait is needed.
func BuildReport(ctx context.Context, ds *Dataset) (*Report, error) {
	_, span := tracer.Start(ctx, "analysis.BuildReport")
	defer span.End()

	rep := &Report{Views: make(map[ViewName]View, len(ViewNames))}
	views := make([]View, len(ViewNames))

	var g errgroup.Group
	g.Go(func() error {
		s, err := Summarize(ds)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		rep.Summary = s
		return nil
	})
	g.Go(func() error {
		rep.Outliers = DetectAllOutliers(ds)
		return nil
	})
	for i, name := range ViewNames {
		i, name := i, name
		g.Go(func() error {
			v, err := Aggregate(string(name), ds)
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, name := range ViewNames {
		rep.Views[name] = views[i]
	}
	daily, _ := rep.Views[ViewDailySales].(DailySalesView)
	heat, _ := rep.Views[ViewTimeHeatmap].(HeatmapView)
	items, _ := rep.Views[ViewItemPerformance].(ItemView)
	locs, _ := rep.Views[ViewLocationPerformance].(LocationView)
	rep.Insights = deriveInsights(ds.ID(), daily, heat, items, locs, rep.Summary.PaymentMethods)
	return rep, nil
}

// Markdown renders the summary in the compact sectioned format used by the CLI.
func (s Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[SALES SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Total records: %d\n", s.TotalRecords))
	b.WriteString(fmt.Sprintf("Total revenue: $%s\n", s.TotalSales.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Unique items: %d\n", s.UniqueItems))
	b.WriteString(fmt.Sprintf("Unique locations: %d\n", s.UniqueLocations))

	b.WriteString("\n[DATE RANGE]\n")
	if span, ok := s.DateRange.Get(); ok {
		b.WriteString(fmt.Sprintf("Start: %s\n", span.Start.Format("2006-01-02")))
		b.WriteString(fmt.Sprintf("End: %s\n", span.End.Format("2006-01-02")))
	} else {
		b.WriteString("(no dated records)\n")
	}

	if len(s.PaymentMethods) > 0 {
		b.WriteString("\n[PAYMENT METHODS]\n")
		for _, row := range sortedCounts(s.PaymentMethods) {
			b.WriteString(fmt.Sprintf("- %s: %d transactions\n", safeVal(row.key), row.n))
		}
	}

	b.WriteString("\n[DATA QUALITY]\n")
	missing := s.MissingFields()
	if len(missing) == 0 {
		b.WriteString("- No missing values found\n")
	}
	for _, f := range missing {
		b.WriteString(fmt.Sprintf("- %s: %d missing values\n", f, s.MissingValues[f]))
	}
	return b.String()
}

// Markdown renders the summary, insights, outliers and the top rows of each
// view.
func (r *Report) Markdown(topN int) string {
	var b strings.Builder
	b.WriteString(r.Summary.Markdown())
	b.WriteString("\n")
	b.WriteString(r.Insights.Markdown())

	b.WriteString("\n[OUTLIERS]\n")
	for _, o := range r.Outliers {
		if o.N == 0 {
			b.WriteString(fmt.Sprintf("- %s: no values\n", o.Field))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %d outside [%.2f, %.2f] (Q1 %.2f, Q3 %.2f)", o.Field, o.Count(), o.Lower, o.Upper, o.Q1, o.Q3))
		if o.Count() > 0 {
			b.WriteString(fmt.Sprintf("; observed [%.2f, %.2f]", o.Min, o.Max))
		}
		b.WriteString("\n")
	}

	for _, name := range ViewNames {
		v, ok := r.Views[name]
		if !ok || name == ViewTimeHeatmap {
			continue
		}
		b.WriteString(fmt.Sprintf("\n[%s]\n", strings.ToUpper(string(name))))
		writeTable(&b, v.Columns(), TopBySum(v, topN).Rows())
	}
	return b.String()
}

// TopBySum orders sparse views by revenue and keeps at most n rows (n <= 0
// keeps all). The heatmap is returned unchanged.
func TopBySum(v View, n int) View {
	switch t := v.(type) {
	case DailySalesView:
		return truncate(t.SortBySum(), n)
	case ItemView:
		return truncate(t.SortBySum(), n)
	case LocationView:
		return truncate(t.SortBySum(), n)
	case PaymentView:
		return truncate(t.SortBySum(), n)
	}
	return v
}

// Head keeps at most the first n rows of v in its natural order (n <= 0 keeps
// all).
func Head(v View, n int) View {
	switch t := v.(type) {
	case DailySalesView:
		return truncate(t, n)
	case HeatmapView:
		return truncate(t, n)
	case ItemView:
		return truncate(t, n)
	case LocationView:
		return truncate(t, n)
	case PaymentView:
		return truncate(t, n)
	}
	return v
}

func truncate[S ~[]E, E any](s S, n int) S {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

func writeTable(b *strings.Builder, cols []string, rows [][]string) {
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	sep := make([]string, len(cols))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = safeVal(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

type keyCount struct {
	key string
	n   int
}

func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, n := range m {
		out = append(out, keyCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n == out[j].n {
			return out[i].key < out[j].key
		}
		return out[i].n > out[j].n
	})
	return out
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
