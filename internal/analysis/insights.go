package analysis

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Ranked names the leader of a grouping together with its revenue.
type Ranked struct {
	Name string          `json:"name"`
	Sum  decimal.Decimal `json:"sum"`
}

// Insights are the headline facts of one snapshot. Each one is missing when
// the dataset has nothing to rank.
type Insights struct {
	DatasetID        string               `json:"dataset_id"`
	AvgDailyRevenue  Opt[decimal.Decimal] `json:"avg_daily_revenue"`
	AvgTransaction   Opt[decimal.Decimal] `json:"avg_transaction"`
	TopProduct       Opt[Ranked]          `json:"top_product"`
	PeakHour         Opt[int]             `json:"peak_hour"`
	TopLocation      Opt[Ranked]          `json:"top_location"`
	PreferredPayment Opt[string]          `json:"preferred_payment"`
}

// DeriveInsights computes the insights of ds.
func DeriveInsights(ds *Dataset) Insights {
	if ds == nil {
		ds = NewDataset(nil)
	}
	payments := map[string]int{}
	for _, rec := range ds.rows() {
		if m, ok := rec.PaymentMethod.Get(); ok {
			payments[m]++
		}
	}
	return deriveInsights(ds.ID(), DailySales(ds), TimeHeatmap(ds), ItemPerformance(ds), LocationPerformance(ds), payments)
}

// deriveInsights works from already computed views so BuildReport does not
// aggregate twice. Ties go to the alphabetically first name and the earliest
// hour.
func deriveInsights(id string, daily DailySalesView, heat HeatmapView, items ItemView, locs LocationView, payments map[string]int) Insights {
	in := Insights{DatasetID: id}

	if len(daily) > 0 {
		sum := decimal.Zero
		for _, d := range daily {
			sum = sum.Add(d.Sum)
		}
		in.AvgDailyRevenue = Some(sum.Div(decimal.NewFromInt(int64(len(daily)))).Round(2))
	}

	// Every record with an amount lands in exactly one item group, the
	// missing-item group included.
	total, n := decimal.Zero, 0
	for _, it := range items {
		total = total.Add(it.Sum)
		n += it.Count
	}
	if n > 0 {
		in.AvgTransaction = Some(total.Div(decimal.NewFromInt(int64(n))).Round(2))
	}

	for _, it := range items.SortBySum() {
		if it.Item != MissingKey && it.Count > 0 {
			in.TopProduct = Some(Ranked{Name: it.Item, Sum: it.Sum})
			break
		}
	}
	for _, l := range locs.SortBySum() {
		if l.Location != MissingKey && l.Count > 0 {
			in.TopLocation = Some(Ranked{Name: l.Location, Sum: l.Sum})
			break
		}
	}

	if n > 0 && len(heat) == 7*24 {
		var byHour [24]decimal.Decimal
		for _, c := range heat {
			byHour[c.Hour] = byHour[c.Hour].Add(c.Sum)
		}
		peak := 0
		for h := 1; h < 24; h++ {
			if byHour[h].GreaterThan(byHour[peak]) {
				peak = h
			}
		}
		in.PeakHour = Some(peak)
	}

	if counts := sortedCounts(payments); len(counts) > 0 {
		in.PreferredPayment = Some(counts[0].key)
	}
	return in
}

// Markdown renders the insights as short sentences.
func (in Insights) Markdown() string {
	var b strings.Builder
	b.WriteString("[INSIGHTS]\n")
	wrote := false
	line := func(format string, args ...any) {
		b.WriteString("- " + fmt.Sprintf(format, args...) + "\n")
		wrote = true
	}
	if v, ok := in.AvgDailyRevenue.Get(); ok {
		line("Average daily revenue is $%s", v.StringFixed(2))
	}
	if v, ok := in.AvgTransaction.Get(); ok {
		line("Average transaction value is $%s", v.StringFixed(2))
	}
	if p, ok := in.TopProduct.Get(); ok {
		line("'%s' is the highest-grossing product with $%s in sales", safeVal(p.Name), p.Sum.StringFixed(2))
	}
	if h, ok := in.PeakHour.Get(); ok {
		line("Peak sales hour is %d:00 with highest revenue generation", h)
	}
	if l, ok := in.TopLocation.Get(); ok {
		line("'%s' is the best-performing location with $%s in revenue", safeVal(l.Name), l.Sum.StringFixed(2))
	}
	if m, ok := in.PreferredPayment.Get(); ok {
		line("'%s' is the most preferred payment method among customers", safeVal(m))
	}
	if !wrote {
		b.WriteString("- no sales\n")
	}
	return b.String()
}
